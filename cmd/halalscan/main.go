package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/franckalain/halalscan/internal/app"
	"github.com/franckalain/halalscan/internal/config"
)

type rootOptions struct {
	configPath string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "halalscan",
		Short: "Classify product ingredient lists as halal, suspicious or haram",
		Long: `halalscan reads the ingredient list printed on a product label and
classifies it against a reference table of halal, suspicious and haram
ingredients. Every scan is kept in a local history.

Run "halalscan serve" to expose scanning over WebSocket and HTTP.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.GetConfigPath(), "path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newScanCmd(opts),
		newAnalyzeCmd(opts),
		newHistoryCmd(opts),
	)
	return rootCmd
}

// withApp wires the application for the duration of one command
func withApp(opts *rootOptions, run func(cmd *cobra.Command, args []string, a *app.App) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), opts.configPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				a.Logger.WithError(err).Warn("error closing application")
			}
		}()
		return run(cmd, args, a)
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
