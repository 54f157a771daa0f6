package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	outFormat  string
	verbose    bool

	cfg    *Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "namevet",
	Short: "Validate candidate business names against registries and directories",
	Long: "Checks whether candidate business names have a registrable domain and no\n" +
		"similarly named business, ranks them, and asks for new candidates when none survive.",
	Version:           fmt.Sprintf("%s (built %s)", Version, BuildTime),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if verbose {
		c.Log.Level = "debug"
	}
	switch outFormat {
	case "text", "json", "html":
	default:
		return fmt.Errorf("unknown --format %q (text, json or html)", outFormat)
	}

	cfg = c
	logger = SetupLogger(c, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&outFormat, "format", "f", "text", "output format: text, json or html")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.SetErr(os.Stderr)

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(convergeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(historyCmd)
}
