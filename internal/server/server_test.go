package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/graph"
)

type fakeBuilder struct {
	graph     *artist.GraphData
	err       error
	results   []artist.Artist
	lastSeed  string
	lastDepth int
	lastMode  string
}

func (f *fakeBuilder) Build(_ context.Context, seed string, depth int) (*artist.GraphData, error) {
	f.lastSeed, f.lastDepth, f.lastMode = seed, depth, "full"
	return f.graph, f.err
}

func (f *fakeBuilder) BuildDegraded(_ context.Context, seed string, depth int) (*artist.GraphData, error) {
	f.lastSeed, f.lastDepth, f.lastMode = seed, depth, "degraded"
	return f.graph, f.err
}

func (f *fakeBuilder) Search(_ context.Context, query string) ([]artist.Artist, error) {
	f.lastSeed = query
	return f.results, f.err
}

func sampleGraph() *artist.GraphData {
	center := artist.Artist{Name: "Radiohead"}
	return &artist.GraphData{
		Nodes: []artist.Artist{center, {Name: "Muse"}, {Name: "Coldplay"}},
		Edges: []artist.Edge{
			{Source: "Radiohead", Target: "Muse", Weight: 0.9},
			{Source: "Radiohead", Target: "Coldplay", Weight: 0.2},
		},
		Center: &center,
	}
}

func newTestServer(t *testing.T, b Builder, opts Options) *httptest.Server {
	t.Helper()
	opts.Logger = log.New(io.Discard)
	srv := httptest.NewServer(New(b, opts))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestHandleGraph(t *testing.T) {
	b := &fakeBuilder{graph: sampleGraph()}
	srv := newTestServer(t, b, Options{DefaultDepth: 2})

	resp, body := get(t, srv.URL+"/api/graph?artist=%20Radiohead%20")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var g artist.GraphData
	if err := json.Unmarshal(body, &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Errorf("got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
	if b.lastSeed != "Radiohead" || b.lastDepth != 2 || b.lastMode != "full" {
		t.Errorf("builder called with %q depth %d mode %s", b.lastSeed, b.lastDepth, b.lastMode)
	}
}

func TestHandleGraph_Params(t *testing.T) {
	b := &fakeBuilder{graph: sampleGraph()}
	srv := newTestServer(t, b, Options{DefaultDepth: 2})

	resp, body := get(t, srv.URL+"/api/graph?artist=Radiohead&depth=1&mode=degraded&threshold=0.5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if b.lastDepth != 1 || b.lastMode != "degraded" {
		t.Errorf("depth %d mode %s", b.lastDepth, b.lastMode)
	}

	var p graph.Processed
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Nodes) != 2 || len(p.Links) != 1 {
		t.Errorf("processed graph has %d nodes, %d links; want 2, 1", len(p.Nodes), len(p.Links))
	}
	if !p.Nodes[0].IsCenter {
		t.Error("first node should be the center")
	}
}

func TestHandleGraph_Resolve(t *testing.T) {
	srv := newTestServer(t, &fakeBuilder{graph: sampleGraph()}, Options{})

	resp, body := get(t, srv.URL+"/api/graph?artist=Radiohead&resolve=true")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res graph.Resolved
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Links) != 2 || res.Links[0].Source != 0 {
		t.Errorf("resolved links = %+v", res.Links)
	}
}

func TestHandleGraph_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
		code   string
	}{
		{"empty artist", "artist=%20", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing artist", "", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad depth", "artist=A&depth=x", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"negative depth", "artist=A&depth=-1", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad mode", "artist=A&mode=turbo", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad threshold", "artist=A&threshold=2", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"not found", "artist=A", errors.New(errors.ErrCodeArtistNotFound, "artist %q not found", "A"), http.StatusNotFound, "ARTIST_NOT_FOUND"},
		{"fatal", "artist=A", errors.New(errors.ErrCodeUnauthorized, "invalid api key"), http.StatusBadGateway, "UNAUTHORIZED"},
		{"timeout", "artist=A", context.DeadlineExceeded, http.StatusGatewayTimeout, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeBuilder{err: tt.err}, Options{})

			resp, body := get(t, srv.URL+"/api/graph?"+tt.query)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var e errorBody
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatalf("decode: %v (%s)", err, body)
			}
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
			if e.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestHandleSearch(t *testing.T) {
	b := &fakeBuilder{results: []artist.Artist{{Name: "Radiohead"}, {Name: "Radiohead Tribute"}}}
	srv := newTestServer(t, b, Options{})

	resp, body := get(t, srv.URL+"/api/search?q=radio")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got []artist.Artist
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || b.lastSeed != "radio" {
		t.Errorf("got %v for query %q", got, b.lastSeed)
	}
}

func TestHandleSearch_Empty(t *testing.T) {
	srv := newTestServer(t, &fakeBuilder{}, Options{})

	resp, _ := get(t, srv.URL+"/api/search?q=")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	resp, body := get(t, srv.URL+"/api/search?q=zzz")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("no results: status %d body %s", resp.StatusCode, body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "artistgraph_test_total", Help: "test"}))
	srv := newTestServer(t, &fakeBuilder{}, Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})

	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "ok") {
		t.Errorf("healthz: %d %s", resp.StatusCode, body)
	}

	resp, body = get(t, srv.URL+"/metrics")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "artistgraph_test_total") {
		t.Errorf("metrics: %d %s", resp.StatusCode, body)
	}
}

func TestMetricsNotConfigured(t *testing.T) {
	srv := newTestServer(t, &fakeBuilder{}, Options{})
	resp, _ := get(t, srv.URL+"/metrics")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := New(&fakeBuilder{}, Options{Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, &fakeBuilder{results: []artist.Artist{{Name: "A"}}}, Options{RateLimit: 2})

	for i := range 2 {
		if resp, _ := get(t, srv.URL+"/api/search?q=a"); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, resp.StatusCode)
		}
	}

	resp, body := get(t, srv.URL+"/api/search?q=a")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
	if !strings.Contains(string(body), "RATE_LIMITED") {
		t.Errorf("body = %s, want RATE_LIMITED code", body)
	}

	// Health checks are not limited.
	if resp, _ := get(t, srv.URL+"/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &fakeBuilder{results: []artist.Artist{}}, Options{CORSOrigins: []string{"https://app.example"}})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/search?q=a", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "https://app.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
