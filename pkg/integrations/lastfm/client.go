package lastfm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/buildinfo"
	"github.com/matzehuels/artistgraph/pkg/cache"
	apperrors "github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/integrations"
)

const (
	// DefaultBaseURL is the Last.fm web service endpoint.
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// DefaultSimilarLimit is how many similar artists are requested per lookup.
	DefaultSimilarLimit = 50

	// DefaultRatePerSecond keeps well below the Last.fm limit of 5 requests
	// per second averaged over five minutes.
	DefaultRatePerSecond = 5

	// PlaceholderImage is the hash in the URL of the image Last.fm serves
	// for artists without a picture.
	PlaceholderImage = "2a96cbd8b46e442fc41c2b86b821562f"

	searchLimit = 10
)

// Last.fm error numbers.
const (
	errInvalidParameters = 6
	errOperationFailed   = 8
	errInvalidAPIKey     = 10
	errServiceOffline    = 11
	errTemporary         = 16
	errSuspendedAPIKey   = 26
	errRateLimited       = 29
)

// ImageFinder looks up an artist picture from a secondary source.
type ImageFinder interface {
	FindImage(ctx context.Context, name string) (string, error)
}

// Options configures a [Client]. Zero values select the defaults.
type Options struct {
	BaseURL       string
	RatePerSecond float64 // negative disables rate limiting
	SimilarLimit  int
	Images        ImageFinder  // optional fallback for missing pictures
	HTTPClient    *http.Client // optional, used by tests
}

// Client queries the Last.fm API.
//
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL      string
	apiKey       string
	similarLimit int
	images       ImageFinder
}

// NewClient creates a Last.fm client. Responses are cached in backend for ttl.
// An empty apiKey is a configuration error.
func NewClient(apiKey string, backend cache.Cache, ttl time.Duration, opts Options) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "last.fm API key is not set")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RatePerSecond == 0 {
		opts.RatePerSecond = DefaultRatePerSecond
	}
	if opts.SimilarLimit <= 0 {
		opts.SimilarLimit = DefaultSimilarLimit
	}

	base := integrations.NewClient(backend, "lastfm:", ttl, map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	}).
		WithHTTPClient(opts.HTTPClient).
		WithRateLimit(opts.RatePerSecond, int(max(opts.RatePerSecond, 1))).
		WithCircuitBreaker("lastfm").
		WithErrorDecoder(decodeError)

	return &Client{
		Client:       base,
		baseURL:      opts.BaseURL,
		apiKey:       apiKey,
		similarLimit: opts.SimilarLimit,
		images:       opts.Images,
	}, nil
}

// SearchArtists returns up to 10 artists matching query.
func (c *Client) SearchArtists(ctx context.Context, query string) ([]artist.Artist, error) {
	key := cache.Key("search", query)

	var result []artist.Artist
	err := c.Cached(ctx, key, false, &result, func() error {
		var data searchResponse
		if err := c.call(ctx, "artist.search", url.Values{
			"artist": {query},
			"limit":  {strconv.Itoa(searchLimit)},
		}, &data); err != nil {
			return err
		}
		result = result[:0]
		for _, a := range data.Results.Matches.Artist {
			if a.Name == "" {
				continue
			}
			result = append(result, artist.Artist{
				Name:      a.Name,
				MBID:      a.MBID,
				LastFMURL: a.URL,
				ImageURL:  pickImage(a.Image),
				Listeners: int64(a.Listeners),
			})
		}
		return nil
	})
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(result) > searchLimit {
		result = result[:searchLimit]
	}
	return result, nil
}

// GetArtistInfo returns the artist's metadata, or nil if Last.fm does not
// know the artist. Missing pictures are filled from the image finder when
// one is configured.
func (c *Client) GetArtistInfo(ctx context.Context, name string) (*artist.Artist, error) {
	key := cache.Key("info", name)

	var info artist.Artist
	err := c.Cached(ctx, key, false, &info, func() error {
		return c.fetchInfo(ctx, name, &info)
	})
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetchInfo(ctx context.Context, name string, info *artist.Artist) error {
	var data infoResponse
	if err := c.call(ctx, "artist.getinfo", url.Values{
		"artist":      {name},
		"autocorrect": {"1"},
	}, &data); err != nil {
		return err
	}
	a := data.Artist
	if a.Name == "" {
		return fmt.Errorf("%w: last.fm artist %s", integrations.ErrNotFound, name)
	}

	*info = artist.Artist{
		Name:      a.Name,
		MBID:      a.MBID,
		LastFMURL: a.URL,
		ImageURL:  pickImage(a.Image),
		Listeners: int64(a.Stats.Listeners),
		Playcount: int64(a.Stats.Playcount),
	}
	for _, t := range a.Tags.Tag {
		if t.Name != "" {
			info.Tags = append(info.Tags, t.Name)
		}
	}
	if info.ImageURL == "" && c.images != nil {
		if img, err := c.images.FindImage(ctx, a.Name); err == nil {
			info.ImageURL = img
		}
	}
	return nil
}

// GetSimilarArtists returns artists similar to name with their match score.
// Unknown artists yield an empty result.
func (c *Client) GetSimilarArtists(ctx context.Context, name string) ([]artist.Similar, error) {
	key := cache.Key("similar", name, strconv.Itoa(c.similarLimit))

	var result []artist.Similar
	err := c.Cached(ctx, key, false, &result, func() error {
		var data similarResponse
		if err := c.call(ctx, "artist.getsimilar", url.Values{
			"artist":      {name},
			"autocorrect": {"1"},
			"limit":       {strconv.Itoa(c.similarLimit)},
		}, &data); err != nil {
			return err
		}
		result = result[:0]
		for _, s := range data.SimilarArtists.Artist {
			if s.Name == "" {
				continue
			}
			result = append(result, artist.Similar{Name: s.Name, Match: artist.ClampScore(float64(s.Match))})
		}
		return nil
	})
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// call performs one API method call. Errors reported in a 200 body are
// mapped the same way as errors in non-2xx responses.
func (c *Client) call(ctx context.Context, method string, params url.Values, v errorReporter) error {
	params.Set("method", method)
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	if err := c.Get(ctx, c.baseURL+"?"+params.Encode(), v); err != nil {
		return err
	}
	if s := v.status(); s.Error != 0 {
		return s.err(http.StatusOK)
	}
	return nil
}

// pickImage returns the largest non-placeholder image URL.
func pickImage(images []image) string {
	best, bestRank := "", -1
	for _, img := range images {
		if img.URL == "" || strings.Contains(img.URL, PlaceholderImage) {
			continue
		}
		if r := imageRank(img.Size); r > bestRank {
			best, bestRank = img.URL, r
		}
	}
	return best
}

func imageRank(size string) int {
	switch size {
	case "small":
		return 1
	case "medium":
		return 2
	case "large":
		return 3
	case "extralarge":
		return 4
	case "mega":
		return 5
	default:
		return 0
	}
}
