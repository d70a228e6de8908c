package similarity

import (
	"context"

	"github.com/matzehuels/artistgraph/pkg/artist"
)

// MetadataSource queries an external music metadata service.
//
// Implementations own retries, timeouts and response caching. They must be
// safe for concurrent use, since full-mode builds resolve several candidates
// at once. The Last.fm client in pkg/integrations/lastfm is the standard
// implementation.
type MetadataSource interface {
	// SearchArtists returns up to 10 artists matching query.
	SearchArtists(ctx context.Context, query string) ([]artist.Artist, error)

	// GetArtistInfo returns the artist's metadata. A nil artist with a nil
	// error means the source does not know the artist.
	GetArtistInfo(ctx context.Context, name string) (*artist.Artist, error)

	// GetSimilarArtists returns candidates similar to name with a match
	// score in [0, 1]. The order is source-defined.
	GetSimilarArtists(ctx context.Context, name string) ([]artist.Similar, error)
}
