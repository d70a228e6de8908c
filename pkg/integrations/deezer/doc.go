// Package deezer provides a minimal Deezer API client used as a secondary
// artist image source.
//
// Last.fm stopped serving artist pictures and returns a placeholder image for
// most artists. When that happens the lastfm client asks this package for the
// top search hit's picture_xl URL. The lookup is best-effort: callers ignore
// its errors.
package deezer
