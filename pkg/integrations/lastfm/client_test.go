package lastfm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/artistgraph/pkg/cache"
	apperrors "github.com/matzehuels/artistgraph/pkg/errors"
)

const placeholderURL = "https://lastfm.freetls.fastly.net/i/u/300x300/" + PlaceholderImage + ".png"

type fakeImages struct {
	url   string
	err   error
	calls int32
}

func (f *fakeImages) FindImage(ctx context.Context, name string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.url, f.err
}

func testClient(t *testing.T, handler http.HandlerFunc, images ImageFinder) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient("test-key", cache.NewNullCache(), time.Hour, Options{
		BaseURL:       server.URL + "/2.0/",
		RatePerSecond: -1,
		Images:        images,
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient("  ", cache.NewNullCache(), time.Hour, Options{})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Fatalf("err = %v, want INVALID_CONFIG", err)
	}
	if !apperrors.IsFatal(err) {
		t.Error("missing API key should be fatal")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient("key", nil, time.Hour, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.similarLimit != DefaultSimilarLimit {
		t.Errorf("similarLimit = %d, want %d", c.similarLimit, DefaultSimilarLimit)
	}
}

func TestClient_GetArtistInfo(t *testing.T) {
	var params map[string]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params = map[string]string{
			"method":      q.Get("method"),
			"api_key":     q.Get("api_key"),
			"format":      q.Get("format"),
			"artist":      q.Get("artist"),
			"autocorrect": q.Get("autocorrect"),
		}
		w.Write([]byte(`{"artist":{
			"name":"Radiohead","mbid":"a74b1b7f","url":"https://www.last.fm/music/Radiohead",
			"image":[
				{"#text":"https://img/small.png","size":"small"},
				{"#text":"https://img/xl.png","size":"extralarge"},
				{"#text":"https://img/large.png","size":"large"}
			],
			"stats":{"listeners":"7000000","playcount":"900000000"},
			"tags":{"tag":[{"name":"alternative"},{"name":"rock"}]}
		}}`))
	}, nil)

	a, err := c.GetArtistInfo(context.Background(), "radiohead")
	if err != nil {
		t.Fatalf("GetArtistInfo failed: %v", err)
	}
	if a == nil {
		t.Fatal("expected artist, got nil")
	}

	want := map[string]string{
		"method": "artist.getinfo", "api_key": "test-key", "format": "json",
		"artist": "radiohead", "autocorrect": "1",
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("param %s = %q, want %q", k, params[k], v)
		}
	}
	if a.Name != "Radiohead" {
		t.Errorf("name = %q", a.Name)
	}
	if a.MBID != "a74b1b7f" || a.LastFMURL != "https://www.last.fm/music/Radiohead" {
		t.Errorf("unexpected ids: %+v", a)
	}
	if a.ImageURL != "https://img/xl.png" {
		t.Errorf("image = %q, want the largest image", a.ImageURL)
	}
	if a.Listeners != 7000000 || a.Playcount != 900000000 {
		t.Errorf("stats = %d/%d", a.Listeners, a.Playcount)
	}
	if len(a.Tags) != 2 || a.Tags[0] != "alternative" {
		t.Errorf("tags = %v", a.Tags)
	}
}

func TestClient_GetArtistInfo_PlaceholderImage(t *testing.T) {
	body := `{"artist":{"name":"Nobody","image":[{"#text":"` + placeholderURL + `","size":"mega"}],"tags":""}}`

	t.Run("fallback", func(t *testing.T) {
		images := &fakeImages{url: "https://deezer/xl.jpg"}
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(body)) }, images)

		a, err := c.GetArtistInfo(context.Background(), "Nobody")
		if err != nil {
			t.Fatal(err)
		}
		if a.ImageURL != "https://deezer/xl.jpg" {
			t.Errorf("image = %q, want fallback image", a.ImageURL)
		}
		if a.Tags != nil {
			t.Errorf("tags = %v, want none", a.Tags)
		}
	})

	t.Run("fallback fails", func(t *testing.T) {
		images := &fakeImages{err: errors.New("boom")}
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(body)) }, images)

		a, err := c.GetArtistInfo(context.Background(), "Nobody")
		if err != nil {
			t.Fatalf("image fallback failure should be ignored, got %v", err)
		}
		if a.ImageURL != "" {
			t.Errorf("placeholder should be treated as absent, got %q", a.ImageURL)
		}
		if atomic.LoadInt32(&images.calls) != 1 {
			t.Errorf("image finder calls = %d, want 1", images.calls)
		}
	})
}

func TestClient_GetArtistInfo_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"in 200 body", http.StatusOK},
		{"in 400 body", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":6,"message":"The artist you supplied could not be found"}`))
			}, nil)

			a, err := c.GetArtistInfo(context.Background(), "nonexistent")
			if err != nil {
				t.Fatalf("not found should not be an error, got %v", err)
			}
			if a != nil {
				t.Errorf("expected nil artist, got %+v", a)
			}
		})
	}
}

func TestClient_GetArtistInfo_Autocorrected(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("artist"); got != "radiohed" {
			t.Errorf("artist param = %q, want the name as given", got)
		}
		w.Write([]byte(`{"artist":{"name":"Radiohead","url":"https://www.last.fm/music/Radiohead"}}`))
	}, nil)

	a, err := c.GetArtistInfo(context.Background(), "radiohed")
	if err != nil {
		t.Fatalf("GetArtistInfo failed: %v", err)
	}
	if a == nil || a.Name != "Radiohead" {
		t.Errorf("artist = %+v, want the corrected name Radiohead", a)
	}
}

func TestClient_ErrorNumbers(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		code  apperrors.Code
		fatal bool
		calls int32
	}{
		{"invalid key", `{"error":10,"message":"Invalid API key"}`, apperrors.ErrCodeUnauthorized, true, 1},
		{"suspended key", `{"error":26,"message":"Suspended"}`, apperrors.ErrCodeUnauthorized, true, 1},
		{"rate limited", `{"error":29,"message":"Rate limit exceeded"}`, apperrors.ErrCodeRateLimited, false, 3},
		{"service offline", `{"error":11,"message":"Offline"}`, apperrors.ErrCodeNetwork, false, 3},
		{"other", `{"error":13,"message":"Invalid method signature"}`, apperrors.ErrCodeAPI, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(tt.body))
			}, nil)

			_, err := c.GetSimilarArtists(context.Background(), "Radiohead")
			if !apperrors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v (err %v)", apperrors.GetCode(err), tt.code, err)
			}
			if apperrors.IsFatal(err) != tt.fatal {
				t.Errorf("IsFatal = %v, want %v", !tt.fatal, tt.fatal)
			}
			if n := atomic.LoadInt32(&calls); n != tt.calls {
				t.Errorf("calls = %d, want %d", n, tt.calls)
			}
		})
	}
}

func TestClient_GetSimilarArtists(t *testing.T) {
	var limit string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("method"); got != "artist.getsimilar" {
			t.Errorf("method = %q", got)
		}
		limit = r.URL.Query().Get("limit")
		w.Write([]byte(`{"similarartists":{"artist":[
			{"name":"Thom Yorke","match":"1"},
			{"name":"Portishead","match":0.42},
			{"name":"","match":"0.3"},
			{"name":"Odd","match":"1.7"}
		]}}`))
	}, nil)

	similar, err := c.GetSimilarArtists(context.Background(), "Radiohead")
	if err != nil {
		t.Fatal(err)
	}
	if limit != "50" {
		t.Errorf("limit = %q, want 50", limit)
	}
	if len(similar) != 3 {
		t.Fatalf("got %d similar artists, want 3 (nameless entry dropped)", len(similar))
	}
	if similar[0].Name != "Thom Yorke" || similar[0].Match != 1 {
		t.Errorf("similar[0] = %+v", similar[0])
	}
	if similar[1].Match != 0.42 {
		t.Errorf("similar[1].Match = %v, want 0.42", similar[1].Match)
	}
	if similar[2].Match != 1 {
		t.Errorf("scores should be clamped to 1, got %v", similar[2].Match)
	}
}

func TestClient_GetSimilarArtists_SingleObject(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"similarartists":{"artist":{"name":"Only One","match":"0.5"}}}`))
	}, nil)

	similar, err := c.GetSimilarArtists(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(similar) != 1 || similar[0].Name != "Only One" {
		t.Errorf("similar = %+v", similar)
	}
}

func TestClient_SearchArtists(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want 10", got)
		}
		w.Write([]byte(`{"results":{"artistmatches":{"artist":[
			{"name":"Radiohead","listeners":"7000000","url":"https://www.last.fm/music/Radiohead",
			 "image":[{"#text":"` + placeholderURL + `","size":"large"}]},
			{"name":"Radiohead Tribute","listeners":"12","image":[{"#text":"https://img/t.png","size":"medium"}]}
		]}}}`))
	}, nil)

	results, err := c.SearchArtists(context.Background(), "radiohead")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ImageURL != "" {
		t.Errorf("placeholder image should be absent, got %q", results[0].ImageURL)
	}
	if results[0].Listeners != 7000000 {
		t.Errorf("listeners = %d", results[0].Listeners)
	}
	if results[1].ImageURL != "https://img/t.png" {
		t.Errorf("image = %q", results[1].ImageURL)
	}
}

func TestClient_ResponsesAreCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"artist":{"name":"Björk"}}`))
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClient("key", fc, time.Hour, Options{BaseURL: server.URL, RatePerSecond: -1})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, name := range []string{"Björk", "björk ", "BJÖRK"} {
		a, err := c.GetArtistInfo(ctx, name)
		if err != nil || a == nil || a.Name != "Björk" {
			t.Fatalf("GetArtistInfo(%q) = %+v, %v", name, a, err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server calls = %d, want 1", n)
	}
}

func TestPickImage(t *testing.T) {
	tests := []struct {
		name   string
		images []image
		want   string
	}{
		{"empty", nil, ""},
		{"placeholder only", []image{{URL: placeholderURL, Size: "mega"}}, ""},
		{"largest wins", []image{{URL: "m", Size: "medium"}, {URL: "g", Size: "mega"}, {URL: "s", Size: "small"}}, "g"},
		{"skips empty url", []image{{URL: "", Size: "mega"}, {URL: "l", Size: "large"}}, "l"},
		{"unknown size", []image{{URL: "x", Size: ""}}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickImage(tt.images); got != tt.want {
				t.Errorf("pickImage() = %q, want %q", got, tt.want)
			}
		})
	}
}
