package similarity

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/store"
)

// fakeSource is an in-memory MetadataSource that records calls.
type fakeSource struct {
	mu         sync.Mutex
	artists    map[string]artist.Artist
	similar    map[string][]artist.Similar
	aliases    map[string]string // requested key -> canonical name
	infoErr    map[string]error
	similarErr map[string]error
	delay      time.Duration

	inFlight     int
	maxInFlight  int
	infoCalls    map[string]int
	similarCalls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		artists:      make(map[string]artist.Artist),
		similar:      make(map[string][]artist.Similar),
		aliases:      make(map[string]string),
		infoErr:      make(map[string]error),
		similarErr:   make(map[string]error),
		infoCalls:    make(map[string]int),
		similarCalls: make(map[string]int),
	}
}

func (f *fakeSource) add(names ...string) {
	for _, n := range names {
		if _, ok := f.artists[artist.Key(n)]; !ok {
			f.artists[artist.Key(n)] = artist.Artist{Name: n, Listeners: int64(len(n))}
		}
	}
}

// link declares src similar to the given name/score pairs.
func (f *fakeSource) link(src string, targets ...artist.Similar) {
	f.add(src)
	for _, t := range targets {
		f.add(t.Name)
	}
	f.similar[artist.Key(src)] = append(f.similar[artist.Key(src)], targets...)
}

func sim(name string, match float64) artist.Similar {
	return artist.Similar{Name: name, Match: match}
}

func (f *fakeSource) enter() {
	f.mu.Lock()
	f.inFlight++
	f.maxInFlight = max(f.maxInFlight, f.inFlight)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
}

func (f *fakeSource) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeSource) SearchArtists(ctx context.Context, query string) ([]artist.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.artists[artist.Key(query)]; ok {
		return []artist.Artist{a}, nil
	}
	return nil, nil
}

func (f *fakeSource) GetArtistInfo(ctx context.Context, name string) (*artist.Artist, error) {
	f.enter()
	defer f.leave()

	f.mu.Lock()
	defer f.mu.Unlock()
	key := artist.Key(name)
	f.infoCalls[key]++
	if err := f.infoErr[key]; err != nil {
		return nil, err
	}
	if alias, ok := f.aliases[key]; ok {
		key = artist.Key(alias)
	}
	a, ok := f.artists[key]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeSource) GetSimilarArtists(ctx context.Context, name string) ([]artist.Similar, error) {
	f.enter()
	defer f.leave()

	f.mu.Lock()
	defer f.mu.Unlock()
	key := artist.Key(name)
	f.similarCalls[key]++
	if err := f.similarErr[key]; err != nil {
		return nil, err
	}
	return append([]artist.Similar(nil), f.similar[key]...), nil
}

func (f *fakeSource) calls() (info, similar map[string]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info = make(map[string]int, len(f.infoCalls))
	for k, v := range f.infoCalls {
		info[k] = v
	}
	similar = make(map[string]int, len(f.similarCalls))
	for k, v := range f.similarCalls {
		similar[k] = v
	}
	return info, similar
}

func (f *fakeSource) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls = make(map[string]int)
	f.similarCalls = make(map[string]int)
	f.maxInFlight = 0
}

// recordingStore wraps a store, counts edge writes and can fail on demand.
type recordingStore struct {
	store.Store

	mu          sync.Mutex
	upsertCalls int
	edges       []store.EdgeRecord
	failUpsert  bool            // UpsertEdges fails
	hidden      map[string]bool // GetArtist returns nil for these keys
}

func (s *recordingStore) Acquire(ctx context.Context) (store.Store, error) { return s, nil }

func (s *recordingStore) GetArtist(ctx context.Context, name string) (*artist.Artist, error) {
	s.mu.Lock()
	hidden := s.hidden[artist.Key(name)]
	s.mu.Unlock()
	if hidden {
		return nil, nil
	}
	return s.Store.GetArtist(ctx, name)
}

func (s *recordingStore) UpsertEdges(ctx context.Context, edges []store.EdgeRecord) error {
	s.mu.Lock()
	s.upsertCalls++
	fail := s.failUpsert
	if !fail {
		s.edges = append(s.edges, edges...)
	}
	s.mu.Unlock()
	if fail {
		return errors.New(errors.ErrCodeStore, "disk full")
	}
	return s.Store.UpsertEdges(ctx, edges)
}

func quietOptions() Options {
	return Options{Logger: log.New(io.Discard)}
}

func nodeNames(g *artist.GraphData) []string {
	names := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		names[i] = n.Name
	}
	sort.Strings(names)
	return names
}

func edgeSet(g *artist.GraphData) map[string]float64 {
	out := make(map[string]float64, len(g.Edges))
	for _, e := range g.Edges {
		out[artist.Key(e.Source)+"->"+artist.Key(e.Target)] = e.Weight
	}
	return out
}
