package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/errors"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	opts := &graphOptions{}
	var pick bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search artists by name",
		Long: `Search the metadata source for artists matching a name.

With --pick, choose one result interactively and build its graph. The graph
flags apply to that build.`,
		Example: `  artistgraph search "radio"
  artistgraph search "radio" --pick -o graph.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.capture(cmd)
			return c.runSearch(cmd.Context(), cmd.OutOrStdout(), args[0], pick, opts)
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "pick a result interactively and build its graph")
	opts.register(cmd)
	return cmd
}

func (c *CLI) runSearch(ctx context.Context, stdout io.Writer, query string, pick bool, opts *graphOptions) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New(errors.ErrCodeInvalidInput, "query cannot be empty")
	}
	if err := opts.validate(); err != nil {
		return err
	}

	a, err := c.newApp(ctx, opts.storeMode, opts.noCache)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Searching %q...", query))
	spinner.Start()
	results, err := a.builder.Search(ctx, query)
	spinner.Stop()
	if err != nil {
		return err
	}

	if len(results) == 0 {
		printWarning("No artists found for %q", query)
		return nil
	}

	if !pick {
		printResults(stdout, results)
		printNextStep("Build a graph", fmt.Sprintf("%s graph %q", appName, results[0].Name))
		return nil
	}

	chosen, err := pickArtist(ctx, results)
	if err != nil || chosen == nil {
		return err
	}

	depth := a.cfg.Graph.DefaultDepth
	if opts.hasDepth {
		depth = opts.depth
	}
	ctx = withLogger(ctx, c.Logger)
	g, err := buildGraph(ctx, a.builder, chosen.Name, depth, opts)
	if err != nil {
		return err
	}
	return writeResult(stdout, g, opts)
}

func printResults(w io.Writer, results []artist.Artist) {
	for _, a := range results {
		line := StyleHighlight.Render(a.Name)
		if a.Listeners > 0 {
			line += "  " + StyleNumber.Render(formatCount(a.Listeners)) + StyleDim.Render(" listeners")
		}
		fmt.Fprintln(w, line)
		if a.URL != "" {
			fmt.Fprintln(w, "  "+StyleLink.Render(a.URL))
		}
	}
}

// pickArtist runs the interactive picker. It returns nil when the user quits
// without choosing.
func pickArtist(ctx context.Context, results []artist.Artist) (*artist.Artist, error) {
	p := tea.NewProgram(NewArtistListModel(results), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("artist picker: %w", err)
	}
	m, ok := final.(ArtistListModel)
	if !ok {
		return nil, nil
	}
	return m.Selected, nil
}
