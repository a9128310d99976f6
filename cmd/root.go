// Package cmd implements the storyloom CLI using cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/storyloom/storyloom/internal/config"
)

const version = "0.1.0"
const logo = "📖"

var (
	cfgFile  string
	showLogs bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "storyloom",
	Short: logo + " storyloom: an AI writing assistant for your book",
	Long:  logo + " storyloom: chat with an LLM that can read and edit your book's binder, characters, locations and plot threads",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		setupLogging(showLogs)
		return config.LoadEnv()
	},
	SilenceUsage: true,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.storyloom/config.json)")
	rootCmd.PersistentFlags().BoolVar(&showLogs, "logs", false, "Show runtime logs")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(toolsCmd)
}

// setupLogging installs a text handler on stderr: Warn by default, Info with --logs.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the config file selected by --config and overlays API
// keys from the environment.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}
