package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franckalain/halalscan/internal/app"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the scan history",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List past scans, most recent first",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app.App) error {
			store := a.Scanner.History()
			records := store.List(cmd.Context())
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), historyOutput{
					Items: records,
					Stats: store.Stats(cmd.Context()),
				})
			}
			printHistory(cmd.OutOrStdout(), records, store.Stats(cmd.Context()))
			return nil
		}),
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one past scan",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app.App) error {
			record, found := a.Scanner.History().Get(cmd.Context(), args[0])
			if !found {
				return fmt.Errorf("scan %q not found", args[0])
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), record)
			}
			printRecord(cmd.OutOrStdout(), record)
			return nil
		}),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one past scan",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app.App) error {
			if err := a.Scanner.History().DeleteByID(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete scan: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every past scan",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app.App) error {
			if err := a.Scanner.History().Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		}),
	}

	cmd.AddCommand(listCmd, showCmd, deleteCmd, clearCmd)
	return cmd
}
