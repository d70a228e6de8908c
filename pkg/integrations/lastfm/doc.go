// Package lastfm provides the Last.fm artist metadata source.
//
// [Client] implements the three lookups a similarity graph needs:
//
//   - [Client.SearchArtists]: artist.search, up to 10 matches
//   - [Client.GetArtistInfo]: artist.getinfo with autocorrect; nil for unknown artists
//   - [Client.GetSimilarArtists]: artist.getsimilar with match scores in [0, 1]
//
// Last.fm reports failures as numbered errors in the response body. They are
// mapped onto pkg/errors codes:
//
//	6         artist not found (nil result, not an error)
//	10, 26    invalid or suspended API key: UNAUTHORIZED (fatal)
//	29        rate limit exceeded: RATE_LIMITED (retried)
//	8, 11, 16 backend failures: NETWORK_ERROR (retried)
//	other     API_ERROR carrying the number and message
//
// Last.fm replaces missing artist pictures with a fixed placeholder image.
// The placeholder is treated as no image, and an optional [ImageFinder]
// (see pkg/integrations/deezer) is asked for a replacement.
package lastfm
