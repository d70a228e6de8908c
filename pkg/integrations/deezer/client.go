package deezer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/buildinfo"
	"github.com/matzehuels/artistgraph/pkg/cache"
	apperrors "github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/httputil"
	"github.com/matzehuels/artistgraph/pkg/integrations"
)

// DefaultBaseURL is the public Deezer API endpoint.
const DefaultBaseURL = "https://api.deezer.com"

// quotaExceeded is the error code Deezer reports in a 200 body when the
// caller is throttled.
const quotaExceeded = 4

// Client looks up artist pictures on Deezer.
//
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Deezer client. An empty baseURL selects [DefaultBaseURL].
func NewClient(backend cache.Cache, ttl time.Duration, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(backend, "deezer:", ttl, map[string]string{"User-Agent": buildinfo.UserAgent()}).WithCircuitBreaker("deezer"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FindImage returns the picture_xl URL of the best Deezer match for name.
// It returns an empty string without error when Deezer has no match or the
// match has no picture.
func (c *Client) FindImage(ctx context.Context, name string) (string, error) {
	key := cache.Key("image", name)

	var image string
	err := c.Cached(ctx, key, false, &image, func() error {
		return c.fetchImage(ctx, name, &image)
	})
	if err != nil {
		return "", err
	}
	return image, nil
}

func (c *Client) fetchImage(ctx context.Context, name string, image *string) error {
	var data searchResponse
	url := fmt.Sprintf("%s/search/artist?limit=1&q=%s", c.baseURL, integrations.URLEncode(name))
	if err := c.Get(ctx, url, &data); err != nil {
		return err
	}
	if data.Error != nil {
		return data.Error.err()
	}

	*image = ""
	for _, a := range data.Data {
		if artist.Key(a.Name) == artist.Key(name) && a.PictureXL != "" {
			*image = a.PictureXL
			return nil
		}
	}
	if len(data.Data) > 0 {
		*image = data.Data[0].PictureXL
	}
	return nil
}

type searchResponse struct {
	Data []struct {
		Name      string `json:"name"`
		PictureXL string `json:"picture_xl"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *apiError) err() error {
	if e.Code == quotaExceeded {
		return httputil.Retryable(&apperrors.RateLimitedError{Message: e.Message})
	}
	return apperrors.Wrap(apperrors.ErrCodeAPI,
		&apperrors.APIError{Status: 200, Number: e.Code, Message: e.Message}, "deezer %s", e.Type)
}
