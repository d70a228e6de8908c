package lastfm

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type searchResponse struct {
	apiStatus
	Results struct {
		Matches struct {
			Artist list[artistEntry] `json:"artist"`
		} `json:"artistmatches"`
	} `json:"results"`
}

type infoResponse struct {
	apiStatus
	Artist struct {
		artistEntry
		Stats struct {
			Listeners number `json:"listeners"`
			Playcount number `json:"playcount"`
		} `json:"stats"`
		Tags tagSet `json:"tags"`
	} `json:"artist"`
}

type similarResponse struct {
	apiStatus
	SimilarArtists struct {
		Artist list[struct {
			Name  string `json:"name"`
			Match number `json:"match"`
		}] `json:"artist"`
	} `json:"similarartists"`
}

type artistEntry struct {
	Name      string  `json:"name"`
	MBID      string  `json:"mbid"`
	URL       string  `json:"url"`
	Listeners number  `json:"listeners"`
	Image     []image `json:"image"`
}

// tagSet is the "tags" object of artist.getinfo; Last.fm sends an empty
// string instead of an object for untagged artists.
type tagSet struct {
	Tag list[struct {
		Name string `json:"name"`
	}] `json:"tag"`
}

func (t *tagSet) UnmarshalJSON(b []byte) error {
	if b = bytes.TrimSpace(b); len(b) == 0 || b[0] != '{' {
		*t = tagSet{}
		return nil
	}
	type plain tagSet
	return json.Unmarshal(b, (*plain)(t))
}

type image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// number decodes Last.fm numeric fields, which arrive either as JSON numbers
// or as strings. Unparseable values decode to zero.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = number(f)
	return nil
}

// list decodes a field that Last.fm sends as an array, a single object when
// there is one element, or an empty string when there are none.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || b[0] == '"' || bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case b[0] == '[':
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		var item T
		if err := json.Unmarshal(b, &item); err != nil {
			return err
		}
		*l = []T{item}
		return nil
	}
}
