package artist

import (
	"math"
	"strings"
)

// Artist holds the metadata resolved for one artist.
//
// Only Name is required. ID is assigned by the persistent store and is empty
// for artists that never went through one (degraded builds). An Artist is
// replaced wholesale when re-fetched; fields are never merged.
type Artist struct {
	ID        string   `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string   `json:"name" bson:"name"`
	MBID      string   `json:"lastfm_mbid,omitempty" bson:"mbid,omitempty"`
	URL       string   `json:"url,omitempty" bson:"url,omitempty"`
	ImageURL  string   `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Listeners int64    `json:"listeners,omitempty" bson:"listeners,omitempty"`
	Playcount int64    `json:"playcount,omitempty" bson:"playcount,omitempty"`
	Tags      []string `json:"tags,omitempty" bson:"tags,omitempty"`
	LastFMURL string   `json:"lastfm_url,omitempty" bson:"lastfm_url,omitempty"`
}

// Key returns the lookup key for the artist name.
func (a Artist) Key() string { return Key(a.Name) }

// Similar is a candidate returned by a metadata source for a similarity
// query. Match is the source's similarity score in [0, 1].
type Similar struct {
	Name  string  `json:"name"`
	Match float64 `json:"match"`
}

// Edge is a weighted similarity edge, directed as it was discovered.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// GraphData is the result of one graph build.
//
// Edges may reference a target whose resolution failed after the edge was
// recorded; see graph.PruneDangling.
type GraphData struct {
	Nodes  []Artist `json:"nodes"`
	Edges  []Edge   `json:"edges"`
	Center *Artist  `json:"center"`
}

// Key normalizes an artist name for case-insensitive comparison. Whitespace is
// significant; callers trim user input before it reaches Key.
func Key(name string) string {
	return strings.ToLower(name)
}

// Blank reports whether name has no visible characters.
func Blank(name string) bool {
	return strings.TrimSpace(name) == ""
}

// ClampScore limits a similarity score to [0, 1].
func ClampScore(s float64) float64 {
	switch {
	case s < 0 || math.IsNaN(s):
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}
