package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/artistgraph/pkg/buildinfo"
	"github.com/matzehuels/artistgraph/pkg/cache"
	"github.com/matzehuels/artistgraph/pkg/config"
	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/integrations/deezer"
	"github.com/matzehuels/artistgraph/pkg/integrations/lastfm"
	"github.com/matzehuels/artistgraph/pkg/similarity"
	"github.com/matzehuels/artistgraph/pkg/store"
	"github.com/matzehuels/artistgraph/pkg/store/mongo"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "artistgraph"

// Store selection values for --store.
const (
	storeAuto   = "auto"
	storeMongo  = "mongo"
	storeMemory = "memory"
	storeNone   = "none"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Artistgraph maps musical artists by similarity",
		Long:         `Artistgraph builds weighted similarity graphs around a seed artist from Last.fm data, optionally persisting what it learns to MongoDB so later builds are served from the store.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/artistgraph/config.toml)")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Builder Factory
// =============================================================================

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// app bundles what a graph command needs and releases it on close.
type app struct {
	cfg     *config.Config
	builder *similarity.Builder
	closers []func(context.Context) error
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i](ctx)
	}
}

// newApp wires the metadata source, response cache and store into a builder.
func (c *CLI) newApp(ctx context.Context, storeMode string, noCache bool) (*app, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	backend, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return backend.Close() })

	source, err := newSource(cfg, backend)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	provider, closeStore, err := newProvider(cfg, storeMode)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	opts := cfg.BuilderOptions()
	opts.Logger = c.Logger
	a.builder = similarity.NewBuilder(source, provider, opts)
	return a, nil
}

func newSource(cfg *config.Config, backend cache.Cache) (*lastfm.Client, error) {
	opts := lastfm.Options{
		BaseURL:       cfg.LastFM.BaseURL,
		RatePerSecond: cfg.LastFM.RatePerSecond,
		SimilarLimit:  cfg.LastFM.SimilarLimit,
	}
	if cfg.Deezer.Enabled {
		opts.Images = deezer.NewClient(backend, cfg.Cache.TTL, cfg.Deezer.BaseURL)
	}
	return lastfm.NewClient(cfg.LastFM.APIKey, backend, cfg.Cache.TTL, opts)
}

// newProvider selects the persistent store. With "auto" MongoDB is used when
// a URI is configured and builds run degraded otherwise.
func newProvider(cfg *config.Config, mode string) (store.Provider, func(context.Context) error, error) {
	switch mode {
	case storeAuto, "":
		if cfg.Mongo.URI == "" {
			return nil, nil, nil
		}
		fallthrough
	case storeMongo:
		if cfg.Mongo.URI == "" {
			return nil, nil, errors.New(errors.ErrCodeInvalidConfig,
				"mongo store selected but no uri configured (set %s or mongo.uri)", config.EnvMongoURI)
		}
		p := mongo.NewProvider(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
		return p, p.Close, nil
	case storeMemory:
		return store.NewMemory(), nil, nil
	case storeNone:
		return nil, nil, nil
	default:
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown store %q (want %s)", mode, strings.Join([]string{storeAuto, storeMongo, storeMemory, storeNone}, ", "))
	}
}

// newCache returns the response cache: none with --no-cache, Redis when a
// URL is configured, otherwise files under the cache directory.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Redis.URL != "" {
		return cache.NewRedisCache(ctx, cfg.Redis.URL)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/artistgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
