package main

import (
	"github.com/spf13/cobra"

	"github.com/franckalain/halalscan/internal/app"
	"github.com/franckalain/halalscan/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the scanner over WebSocket and HTTP",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app.App) error {
			srv := server.New(a.Scanner, a.Logger, server.Options{
				StaticDir: a.Config.Server.StaticDir,
				Debug:     a.Config.Server.Debug,
			})
			return srv.Start(cmd.Context(), a.Config.Server.Port)
		}),
	}
}
