package main

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/generate"
	"github.com/gogpu/labelkit/internal/metrics"
	"github.com/gogpu/labelkit/server"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP preview service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := generate.NewLoader(a.settings.ServerLoaderConfig())
			opts := []server.Option{
				server.WithImageSource(export.NewImageSource(export.ImageSourceFunc(loader.Load))),
			}
			if a.settings.Server.Metrics {
				m, err := metrics.New(nil)
				if err != nil {
					return err
				}
				opts = append(opts, server.WithMetrics(m))
			}
			return server.New(*a.settings, opts...).Run(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.StringP("listen", "l", "", "listen address (default :8080)")
	f.Bool("metrics", true, "serve prometheus metrics on /metrics")
	_ = a.v.BindPFlag("server.listen", f.Lookup("listen"))
	_ = a.v.BindPFlag("server.metrics", f.Lookup("metrics"))
	return cmd
}
