package mongo

import (
	"time"

	"github.com/matzehuels/artistgraph/pkg/artist"
)

// artistFields are the replaceable fields of an artist document. None are
// omitempty so that an upsert clears fields the new record no longer has.
type artistFields struct {
	NameLower string    `bson:"name_lower"`
	Name      string    `bson:"name"`
	MBID      string    `bson:"mbid"`
	URL       string    `bson:"url"`
	ImageURL  string    `bson:"image_url"`
	Listeners int64     `bson:"listeners"`
	Playcount int64     `bson:"playcount"`
	Tags      []string  `bson:"tags"`
	LastFMURL string    `bson:"lastfm_url"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type artistDoc struct {
	ID           string `bson:"_id"`
	artistFields `bson:",inline"`
}

func fieldsOf(a artist.Artist, key string) artistFields {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return artistFields{
		NameLower: key,
		Name:      a.Name,
		MBID:      a.MBID,
		URL:       a.URL,
		ImageURL:  a.ImageURL,
		Listeners: a.Listeners,
		Playcount: a.Playcount,
		Tags:      tags,
		LastFMURL: a.LastFMURL,
		UpdatedAt: time.Now().UTC(),
	}
}

func (d artistDoc) toArtist() artist.Artist {
	a := artist.Artist{
		ID:        d.ID,
		Name:      d.Name,
		MBID:      d.MBID,
		URL:       d.URL,
		ImageURL:  d.ImageURL,
		Listeners: d.Listeners,
		Playcount: d.Playcount,
		LastFMURL: d.LastFMURL,
	}
	if len(d.Tags) > 0 {
		a.Tags = d.Tags
	}
	return a
}
