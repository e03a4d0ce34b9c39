package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/internal/server"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and render API over HTTP",
		Long: `Serve the layout and render API over HTTP.

  GET  /healthz
  POST /v1/layout   dataset in, layout JSON out
  POST /v1/render   dataset in, ?format=svg|txt|dot|json|png|pdf out

Request defaults come from the layout and render sections of the
configuration. The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			cfg := c.Config.Server
			if addr != "" {
				cfg.Addr = addr
			}
			return server.New(runner, cfg, c.options(nil, nil), c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
