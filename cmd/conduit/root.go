package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/conduit/pkg/cli"
	"mercator-hq/conduit/pkg/config"
	"mercator-hq/conduit/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	format  string

	// configs is loaded before every command runs.
	configs *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "conduit",
	Short: "Conduit - one pipeline for many LLM providers",
	Long: `Conduit sends prompts to LLM providers through a single normalized
request/response pipeline.

Supported providers:
  - openai             OpenAI chat completions
  - openai-completion  OpenAI legacy completions
  - anthropic          Anthropic Messages API
  - local              any OpenAI-compatible server (Ollama, LM Studio, vLLM)

Responses can be streamed, cached (memory or SQLite) and captured raw for
debugging.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return loadConfig()
	},
}

// Execute runs the root command and exits with a code derived from the
// error class.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
}

// loadConfig opens the configuration manager and installs the logger.
func loadConfig() error {
	m, err := config.NewManager(cfgFile)
	if err != nil {
		return err
	}
	configs = m

	logCfg := m.Config().Telemetry.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	if _, err := logging.Setup(logCfg, os.Stderr); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.Debug("configuration loaded", "path", cfgFile, "exists", m.Exists())
	return nil
}

// defaultConfigPath returns $XDG_CONFIG_HOME/conduit/config.yaml or the
// platform equivalent, falling back to ./conduit.yaml.
func defaultConfigPath() string {
	if env := os.Getenv("CONDUIT_CONFIG"); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "conduit.yaml"
	}
	return filepath.Join(dir, "conduit", "config.yaml")
}

// formatter returns the formatter selected by --format.
func formatter() (cli.Formatter, cli.OutputFormat, error) {
	f, err := cli.ParseFormat(format)
	if err != nil {
		return nil, "", err
	}
	return cli.NewFormatter(f), f, nil
}
