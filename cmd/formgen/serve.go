package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/formforge/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, server.FromConfig(a.cfg, a.log))
		},
	}
	cmd.Flags().Int("port", 8080, "listen port override")
	return cmd
}
