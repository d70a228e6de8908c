package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/integrations/deezer"
	"github.com/matzehuels/artistgraph/pkg/integrations/lastfm"
	"github.com/matzehuels/artistgraph/pkg/similarity"
	"github.com/matzehuels/artistgraph/pkg/store/mongo"
)

// Environment variables that override file settings.
const (
	EnvLastFMAPIKey  = "LASTFM_API_KEY"
	EnvMongoURI      = "ARTISTGRAPH_MONGO_URI"
	EnvMongoDatabase = "ARTISTGRAPH_MONGO_DATABASE"
	EnvRedisURL      = "ARTISTGRAPH_REDIS_URL"
	EnvAddr          = "ARTISTGRAPH_ADDR"
)

const (
	// DefaultCacheTTL is how long metadata responses stay cached.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultDepth is the hop depth used when a request does not name one.
	DefaultDepth = 2

	// DefaultAddr is the listen address of the HTTP server.
	DefaultAddr = ":8080"

	// DefaultRateLimit is the number of API requests per client and minute.
	DefaultRateLimit = 120
)

// Config is the complete artistgraph configuration.
type Config struct {
	LastFM LastFM `toml:"lastfm"`
	Deezer Deezer `toml:"deezer"`
	Mongo  Mongo  `toml:"mongo"`
	Redis  Redis  `toml:"redis"`
	Cache  Cache  `toml:"cache"`
	Graph  Graph  `toml:"graph"`
	Server Server `toml:"server"`
}

// LastFM configures the metadata source.
type LastFM struct {
	APIKey        string  `toml:"api_key"`
	BaseURL       string  `toml:"base_url"`
	RatePerSecond float64 `toml:"rate_per_second"`
	SimilarLimit  int     `toml:"similar_limit"`
}

// Deezer configures the fallback image lookup.
type Deezer struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// Mongo configures the persistent graph store. An empty URI disables it.
type Mongo struct {
	URI            string        `toml:"uri"`
	Database       string        `toml:"database"`
	ConnectTimeout time.Duration `toml:"connect_timeout"`
}

// Redis configures a shared response cache. An empty URL selects the file
// cache instead.
type Redis struct {
	URL string `toml:"url"`
}

// Cache configures the metadata response cache.
type Cache struct {
	TTL      time.Duration `toml:"ttl"`
	Dir      string        `toml:"dir"`
	Disabled bool          `toml:"disabled"`
}

// Graph configures graph builds.
type Graph struct {
	Concurrency          int  `toml:"concurrency"`
	DefaultDepth         int  `toml:"default_depth"`
	PruneDanglingEdges   bool `toml:"prune_dangling_edges"`
	DegradedSimilarLimit int  `toml:"degraded_similar_limit"`
}

// Server configures the HTTP server.
type Server struct {
	Addr        string   `toml:"addr"`
	RateLimit   int      `toml:"rate_limit"` // per client IP and minute, 0 disables
	CORSOrigins []string `toml:"cors_origins"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		LastFM: LastFM{
			BaseURL:       lastfm.DefaultBaseURL,
			RatePerSecond: lastfm.DefaultRatePerSecond,
			SimilarLimit:  lastfm.DefaultSimilarLimit,
		},
		Deezer: Deezer{
			Enabled: true,
			BaseURL: deezer.DefaultBaseURL,
		},
		Mongo: Mongo{
			Database:       mongo.DefaultDatabase,
			ConnectTimeout: mongo.DefaultConnectTimeout,
		},
		Cache: Cache{TTL: DefaultCacheTTL},
		Graph: Graph{
			Concurrency:          similarity.DefaultConcurrency,
			DefaultDepth:         DefaultDepth,
			DegradedSimilarLimit: similarity.DefaultDegradedSimilarLimit,
		},
		Server: Server{Addr: DefaultAddr, RateLimit: DefaultRateLimit},
	}
}

// DefaultPath returns the config file location: artistgraph/config.toml
// under $XDG_CONFIG_HOME, or under ~/.config when that is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "artistgraph", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "artistgraph", "config.toml"), nil
}

// Load reads the configuration. An empty path selects [DefaultPath], which
// may be missing. An explicit path must exist.
//
// Load does not validate the result; call [Config.Validate] before use.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			cfg.applyEnv(os.LookupEnv)
			return cfg, nil
		}
		path = p
	}

	if err := cfg.decodeFile(path); err != nil {
		if explicit || !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load config %s", path)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, name string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	set(&c.LastFM.APIKey, EnvLastFMAPIKey)
	set(&c.Mongo.URI, EnvMongoURI)
	set(&c.Mongo.Database, EnvMongoDatabase)
	set(&c.Redis.URL, EnvRedisURL)
	set(&c.Server.Addr, EnvAddr)
}

// Validate reports settings the application cannot run with. A missing
// Last.fm API key is the common case.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LastFM.APIKey) == "" {
		return errors.New(errors.ErrCodeInvalidConfig,
			"lastfm api key is not set (set %s or lastfm.api_key)", EnvLastFMAPIKey)
	}
	if c.Graph.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "graph.concurrency must not be negative")
	}
	if c.Graph.DefaultDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "graph.default_depth must not be negative")
	}
	if c.Server.RateLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.rate_limit must not be negative")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// BuilderOptions returns the graph builder options described by c.
func (c *Config) BuilderOptions() similarity.Options {
	return similarity.Options{
		Concurrency:          c.Graph.Concurrency,
		DegradedSimilarLimit: c.Graph.DegradedSimilarLimit,
		PruneDanglingEdges:   c.Graph.PruneDanglingEdges,
	}
}
