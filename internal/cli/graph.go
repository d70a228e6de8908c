package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/graph"
	"github.com/matzehuels/artistgraph/pkg/similarity"
)

// graphOptions holds the flags shared by commands that build a graph.
type graphOptions struct {
	depth     int
	degraded  bool
	threshold float64
	resolve   bool
	output    string
	storeMode string
	noCache   bool

	hasDepth     bool
	hasThreshold bool
}

func (o *graphOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&o.depth, "depth", "d", 0, "hop depth around the seed (default from config)")
	f.BoolVar(&o.degraded, "degraded", false, "skip the store and query the API only")
	f.Float64VarP(&o.threshold, "threshold", "t", 0, "drop edges below this weight and output the display graph")
	f.BoolVar(&o.resolve, "resolve", false, "output links as node indices (implies the display graph)")
	f.StringVarP(&o.output, "output", "o", "", "write JSON to a file instead of stdout")
	f.StringVar(&o.storeMode, "store", storeAuto, "persistent store: auto, mongo, memory or none")
	f.BoolVar(&o.noCache, "no-cache", false, "disable the metadata response cache")
}

// capture records which optional flags were set explicitly.
func (o *graphOptions) capture(cmd *cobra.Command) {
	o.hasDepth = cmd.Flags().Changed("depth")
	o.hasThreshold = cmd.Flags().Changed("threshold")
}

func (o *graphOptions) validate() error {
	if o.hasDepth && o.depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative")
	}
	if o.threshold < 0 || o.threshold > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "threshold must be in [0, 1]")
	}
	return nil
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:   "graph <artist>",
		Short: "Build the similarity graph around an artist",
		Long: `Build the similarity graph around a seed artist and write it as JSON.

With a configured MongoDB store, resolved artists and similarity edges are
persisted and reused by later builds (depth up to 3). Without a store, or
when the store fails, the graph is built from the API alone (depth up to 2).`,
		Example: `  artistgraph graph "Radiohead"
  artistgraph graph "Radiohead" --depth 3 -o radiohead.json
  artistgraph graph "Radiohead" --threshold 0.3 --resolve`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.capture(cmd)
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.register(cmd)
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, stdout io.Writer, name string, opts *graphOptions) error {
	seed, err := errors.ValidateArtistName(name)
	if err != nil {
		return err
	}
	if err := opts.validate(); err != nil {
		return err
	}

	a, err := c.newApp(ctx, opts.storeMode, opts.noCache)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	depth := a.cfg.Graph.DefaultDepth
	if opts.hasDepth {
		depth = opts.depth
	}

	ctx = withLogger(ctx, c.Logger)
	g, err := buildGraph(ctx, a.builder, seed, depth, opts)
	if err != nil {
		return err
	}
	return writeResult(stdout, g, opts)
}

// buildGraph runs the build with a spinner when the result goes to a file.
func buildGraph(ctx context.Context, b *similarity.Builder, seed string, depth int, opts *graphOptions) (*artist.GraphData, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	build := b.Build
	if opts.degraded {
		build = b.BuildDegraded
	}

	var spinner *Spinner
	if opts.output != "" {
		spinner = newSpinner(ctx, os.Stderr, fmt.Sprintf("Building graph for %s...", seed))
		ctx = spinner.trackBuild(ctx)
		spinner.Start()
	}

	g, err := build(ctx, seed, depth)

	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return nil, err
	}
	prog.done("Built graph", "seed", seed, "artists", len(g.Nodes), "links", len(g.Edges))
	return g, nil
}

// writeResult writes the raw graph, or the display graph when a threshold or
// --resolve was requested.
func writeResult(stdout io.Writer, g *artist.GraphData, opts *graphOptions) error {
	var v any = g
	switch {
	case opts.resolve:
		v = graph.ProcessAndResolve(*g, opts.threshold)
	case opts.hasThreshold:
		v = graph.Process(*g, opts.threshold)
	}

	if opts.output == "" {
		return graph.WriteJSON(v, stdout)
	}

	if err := graph.WriteJSONFile(v, opts.output); err != nil {
		return err
	}
	printSuccess("Graph built")
	printStats(g)
	printFile(opts.output)
	return nil
}
