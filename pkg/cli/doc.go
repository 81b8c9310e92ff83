/*
Package cli provides command-line interface utilities for Conduit.

The cli package includes output formatters, a streaming fragment printer,
exit code mapping and signal handling used by the conduit command.

Output Formatting:

Commands render results as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	table := cli.Table{Headers: []string{"provider", "model"}, Rows: rows}
	if err := formatter.FormatTo(os.Stdout, table); err != nil {
		return err
	}

Streaming Output:

	printer := cli.NewFragmentPrinter(os.Stdout, n)
	for frag, err := range stream.All() {
		...
		printer.Print(frag)
	}
	printer.Finish()

Exit Codes:

ExitCode maps provider and configuration errors to distinct process exit
codes so scripts can tell a bad flag from a rate limit or a network failure.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
