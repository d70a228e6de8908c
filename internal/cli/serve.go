package cli

import (
	"cmp"
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/artistgraph/internal/metrics"
	"github.com/matzehuels/artistgraph/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		storeMode string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graphs over HTTP",
		Long: `Run the HTTP API:

  GET /api/graph?artist=NAME[&depth=N][&mode=degraded][&threshold=F][&resolve=true]
  GET /api/search?q=QUERY
  GET /healthz
  GET /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, storeMode, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&storeMode, "store", storeAuto, "persistent store: auto, mongo, memory or none")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the metadata response cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, storeMode string, noCache bool) error {
	a, err := c.newApp(ctx, storeMode, noCache)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.New(reg).Install()

	addr = cmp.Or(addr, a.cfg.Server.Addr)
	printKeyValue("Listening", addr)
	printKeyValue("Store", storeLabel(storeMode, a.cfg.Mongo.URI))

	srv := server.New(a.builder, server.Options{
		DefaultDepth: a.cfg.Graph.DefaultDepth,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:       c.Logger,
		RateLimit:    a.cfg.Server.RateLimit,
		CORSOrigins:  a.cfg.Server.CORSOrigins,
	})
	return srv.ListenAndServe(withLogger(ctx, c.Logger), addr)
}

func storeLabel(mode, uri string) string {
	switch {
	case mode == storeMemory, mode == storeNone:
		return mode
	case uri != "":
		return storeMongo
	default:
		return storeNone + " (degraded builds)"
	}
}
