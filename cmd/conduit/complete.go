package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/conduit/pkg/cli"
	"mercator-hq/conduit/pkg/providers"
	"mercator-hq/conduit/pkg/telemetry/logging"
)

var completeFlags struct {
	provider string
	model    string
	system   string
	stream   bool
	n        int
	stop     []string
	params   []string
	user     string
}

var completeCmd = &cobra.Command{
	Use:   "complete [prompt]",
	Short: "Send a prompt to a provider",
	Long: `Send a prompt to a provider and print the generated text.

The prompt is taken from the arguments, or read from stdin when none are
given. Passthrough generation parameters are given as key=value pairs; values
that parse as JSON (numbers, booleans, arrays) are sent typed.

Examples:
  # Ask the default provider
  conduit complete "What is the capital of France?"

  # Stream from Anthropic with a system prompt
  conduit complete -p anthropic --stream --system "Be terse." "Explain TCP"

  # Three generations with sampling parameters
  conduit complete --n 3 --param temperature=0.9 --param max_tokens=64 "Name a color"

  # JSON output for scripts
  echo "hello" | conduit complete --format json`,
	RunE: runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)

	completeCmd.Flags().StringVarP(&completeFlags.provider, "provider", "p", "", "provider tag (default: configured default provider)")
	completeCmd.Flags().StringVarP(&completeFlags.model, "model", "m", "", "abstract model id (used by providers without a configured model)")
	completeCmd.Flags().StringVar(&completeFlags.system, "system", "", "system message sent before the prompt")
	completeCmd.Flags().BoolVarP(&completeFlags.stream, "stream", "s", false, "stream the response as it is generated")
	completeCmd.Flags().IntVarP(&completeFlags.n, "n", "n", 1, "number of generations")
	completeCmd.Flags().StringArrayVar(&completeFlags.stop, "stop", nil, "stop sequence (repeatable)")
	completeCmd.Flags().StringArrayVar(&completeFlags.params, "param", nil, "passthrough parameter key=value (repeatable)")
	completeCmd.Flags().StringVar(&completeFlags.user, "user", "", "user identifier forwarded to the provider")
}

// completionOutput is the JSON shape of a completion.
type completionOutput struct {
	RequestID   string   `json:"request_id"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Cached      bool     `json:"cached"`
	Generations []string `json:"generations"`
}

func runComplete(cmd *cobra.Command, args []string) error {
	fmtr, outFormat, err := formatter()
	if err != nil {
		return err
	}
	if completeFlags.n < 1 {
		return cli.NewUsageError("n", fmt.Sprintf("must be at least 1, got %d", completeFlags.n))
	}

	prompt, err := readPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	params, err := parseParams(completeFlags.params)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	var adapter providers.Adapter
	if completeFlags.provider != "" {
		adapter, err = a.adapters.Get(completeFlags.provider)
	} else {
		adapter, err = a.adapters.Default()
	}
	if err != nil {
		return err
	}

	req := &providers.RequestOptions{
		ModelID:        completeFlags.model,
		Prompt:         prompt,
		StopSequences:  completeFlags.stop,
		NumGenerations: completeFlags.n,
		Stream:         completeFlags.stream && outFormat == cli.FormatText,
		Params:         params,
	}
	if completeFlags.system != "" {
		req.Messages = []providers.Message{{Role: providers.RoleSystem, Content: completeFlags.system}}
	}
	meta := providers.RequestMeta{
		UserIdentifier: completeFlags.user,
		Timestamp:      time.Now(),
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()
	requestID := uuid.New().String()
	ctx = logging.WithRequestID(ctx, requestID)

	res, err := a.pipeline.Run(ctx, adapter, req, meta)
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "completion started",
		"provider", adapter.Config().ModelProvider,
		"cached", res.Cached,
		"streaming", res.Stream != nil,
	)

	out := cmd.OutOrStdout()
	if res.Stream != nil {
		defer res.Stream.Close()
		printer := cli.NewFragmentPrinter(out, req.Generations())
		for frag, err := range res.Stream.All() {
			if err != nil {
				printer.Finish()
				return err
			}
			if err := printer.Print(frag); err != nil {
				return err
			}
		}
		return printer.Finish()
	}

	if outFormat == cli.FormatJSON {
		return fmtr.FormatTo(out, completionOutput{
			RequestID:   requestID,
			Provider:    adapter.Config().ModelProvider,
			Model:       adapter.ModelID(req),
			Cached:      res.Cached,
			Generations: res.Generations,
		})
	}
	return cli.PrintGenerations(out, res.Generations)
}

// readPrompt joins the arguments, or reads stdin when there are none.
func readPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", cli.NewUsageError("prompt", "no prompt given (pass it as an argument or on stdin)")
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", cli.NewUsageError("prompt", "prompt is empty")
	}
	return prompt, nil
}

// parseParams parses key=value pairs. Values are decoded as JSON when they
// parse, and kept as strings otherwise.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, cli.NewUsageError("param", fmt.Sprintf("%q (want key=value)", pair))
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		params[key] = v
	}
	return params, nil
}
