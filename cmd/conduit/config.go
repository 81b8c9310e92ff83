package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/conduit/pkg/cli"
	"mercator-hq/conduit/pkg/config"
	"mercator-hq/conduit/pkg/secrets"
	"mercator-hq/conduit/pkg/telemetry/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage provider configuration",
	Long: `Inspect and edit the per-provider configuration file.

Records are keyed by provider tag. Known tags (openai, openai-completion,
anthropic, local) get their type and base URL filled in automatically; any
other tag needs --type on first use.

Examples:
  conduit config show
  conduit config set-key openai sk-...
  conduit config set-url local http://localhost:11434
  conduit config set-default anthropic`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configured providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmtr, _, err := formatter()
		if err != nil {
			return err
		}
		cfg := configs.Config()
		table := cli.Table{Headers: []string{"default", "provider", "type", "base_url", "quality", "model", "api_key", "debug", "saved"}}
		for _, tag := range configs.Tags() {
			p, saved := configs.Get(tag)
			if !saved {
				p = configs.Init(tag)
			}
			marker := ""
			if tag == cfg.DefaultProvider {
				marker = "*"
			}
			table.Rows = append(table.Rows, []string{
				marker,
				tag,
				p.Type,
				p.BaseURL,
				p.Quality,
				p.Model,
				logging.RedactAPIKey(p.APIKey),
				strconv.FormatBool(p.Debug),
				strconv.FormatBool(saved),
			})
		}
		return fmtr.FormatTo(cmd.OutOrStdout(), table)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configs.Path())
		return nil
	},
}

var configInitType string

var configInitCmd = &cobra.Command{
	Use:   "init <provider>",
	Short: "Save a provider record with defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProvider(cmd, args[0], func(p *config.ProviderConfig) error {
			if configInitType != "" {
				p.Type = configInitType
			}
			return nil
		})
	},
}

var configSetDefaultCmd = &cobra.Command{
	Use:   "set-default <provider>",
	Short: "Set the default provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.SetDefault(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Default provider set to %s\n", args[0])
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <provider> <api-key>",
	Short: "Set a provider's API key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProvider(cmd, args[0], func(p *config.ProviderConfig) error {
			p.APIKey = args[1]
			return nil
		})
	},
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <provider> <base-url>",
	Short: "Set a provider's base URL (use a proxy or local server)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProvider(cmd, args[0], func(p *config.ProviderConfig) error {
			p.BaseURL = args[1]
			return nil
		})
	},
}

var configSetQualityCmd = &cobra.Command{
	Use:       "set-quality <provider> <low|high>",
	Short:     "Set a provider's model tier",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"low", "high"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProvider(cmd, args[0], func(p *config.ProviderConfig) error {
			p.Quality = args[1]
			return nil
		})
	},
}

var configSetModelCmd = &cobra.Command{
	Use:   "set-model <provider> <model>",
	Short: "Override the model a provider resolves to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProvider(cmd, args[0], func(p *config.ProviderConfig) error {
			p.Model = args[1]
			return nil
		})
	},
}

var configSetDebugCmd = &cobra.Command{
	Use:   "set-debug <provider> <true|false>",
	Short: "Enable or disable raw traffic capture for a provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := strconv.ParseBool(args[1])
		if err != nil {
			return cli.NewUsageError("debug", fmt.Sprintf("%q is not a boolean", args[1]))
		}
		return updateProvider(cmd, args[0], func(p *config.ProviderConfig) error {
			p.Debug = on
			return nil
		})
	},
}

var configSecretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "List secret names available for ${secret:name} references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := secrets.Open(configs.Config().Secrets)
		if err != nil {
			return err
		}
		defer m.Close()

		out := cmd.OutOrStdout()
		for _, name := range m.ListSecrets(cmd.Context()) {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Delete a saved provider record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := configs.Get(args[0]); !ok {
			return fmt.Errorf("%w: %q", config.ErrUnknownProvider, args[0])
		}
		if err := configs.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted provider %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(
		configShowCmd,
		configPathCmd,
		configInitCmd,
		configSetDefaultCmd,
		configSetKeyCmd,
		configSetURLCmd,
		configSetQualityCmd,
		configSetModelCmd,
		configSetDebugCmd,
		configSecretsCmd,
		configDeleteCmd,
	)

	configInitCmd.Flags().StringVar(&configInitType, "type", "", "adapter type (openai, openai-completion, anthropic, generic)")
}

// updateProvider loads the saved record for tag (or a fresh one), applies
// fn and saves the result.
func updateProvider(cmd *cobra.Command, tag string, fn func(*config.ProviderConfig) error) error {
	p, ok := configs.Get(tag)
	if !ok {
		p = configs.Init(tag)
	}
	if err := fn(&p); err != nil {
		return err
	}
	if err := configs.Save(p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved provider %s to %s\n", tag, configs.Path())
	return nil
}
