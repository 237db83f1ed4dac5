package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/franckalain/halalscan/internal/app"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <text>...",
		Short: "Classify an ingredient list given as text",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app.App) error {
			result := a.Scanner.Analyze(strings.Join(args, " "))
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		}),
	}
}
