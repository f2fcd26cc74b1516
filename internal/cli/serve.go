package cli

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patchplan/pkg/api"
	"github.com/matzehuels/patchplan/pkg/observability/prom"
)

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		timeout   time.Duration
		noMetrics bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner over HTTP",
		Long: `Serve the planner over HTTP.

Routes:
  GET  /healthz      liveness and build info
  GET  /v1/catalog   active prototype catalog
  POST /v1/plan      plan a scenario (JSON body)
  GET  /metrics      Prometheus metrics (unless --no-metrics)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg := api.Config{Runner: runner, Logger: c.Logger, Timeout: timeout}
			if !noMetrics {
				prom.New(prometheus.DefaultRegisterer).Install()
				cfg.Metrics = prom.Handler(nil)
			}

			printInfo("Serving on %s", StyleHighlight.Render(addr))
			printNextStep("Try", "curl -s localhost"+addr+"/healthz")
			return api.New(cfg).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", api.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics route")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the plan cache")

	return cmd
}
