// Package cli defines Cobra command definitions for the parley CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/console"
	"github.com/parley-dev/parley/internal/log"
	"github.com/parley-dev/parley/internal/tui"
)

var (
	verbose bool
	version = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Chat console for a remote transcript-analysis agent",
	Long: `Parley is a session console for an AI agent that analyzes call
transcripts. It tracks service connectivity, caches the agent's reported
capabilities, and keeps an ordered record of the conversation.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Without a subcommand, launch the TUI if on a TTY, show help otherwise.
		if !tui.IsTTY() {
			return cmd.Help()
		}
		c, err := newConsole()
		if err != nil {
			return err
		}
		return tui.Run(tui.NewModel(c))
	},
}

// newConsole builds a Console from the working directory's config. The
// event logger is best-effort: a failure to create it disables logging
// rather than blocking the session.
func newConsole() (*console.Console, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	cfg := config.Load(cwd)

	logger, err := log.NewLogger(cwd)
	if err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "parley: event log disabled: %v\n", err)
		}
		logger = nil
	}
	return console.New(cfg, logger), nil
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print diagnostics for config and logging setup")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
}
