package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franckalain/halalscan/internal/app"
	"github.com/franckalain/halalscan/internal/capture"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	var sourceName string

	cmd := &cobra.Command{
		Use:   "scan [image]",
		Short: "Scan a product label image",
		Long: `Scan reads an image of an ingredient list, classifies it and stores the
result in the history. With --source camera and no image, the newest shot
in the configured capture directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app.App) error {
			source, err := capture.ParseSource(sourceName)
			if err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			record, err := a.Scanner.Scan(cmd.Context(), source, path)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), record)
			}
			printRecord(cmd.OutOrStdout(), record)
			return nil
		}),
	}

	cmd.Flags().StringVar(&sourceName, "source", string(capture.SourceGallery), "image source: camera or gallery")
	return cmd
}
