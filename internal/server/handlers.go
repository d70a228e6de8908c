package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/graph"
	"github.com/matzehuels/artistgraph/pkg/similarity"
)

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	seed, err := errors.ValidateArtistName(q.Get("artist"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	depth := s.opts.DefaultDepth
	if v := q.Get("depth"); v != "" {
		depth, err = strconv.Atoi(v)
		if err != nil || depth < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "depth must be a non-negative integer"))
			return
		}
	}

	build := s.builder.Build
	switch mode := q.Get("mode"); mode {
	case "", similarity.ModeFull:
	case similarity.ModeDegraded:
		build = s.builder.BuildDegraded
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "unknown mode %q", mode))
		return
	}

	threshold, hasThreshold, err := parseThreshold(q.Get("threshold"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g, err := build(r.Context(), seed, depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch {
	case q.Get("resolve") == "true":
		writeJSON(w, http.StatusOK, graph.ProcessAndResolve(*g, threshold))
	case hasThreshold:
		writeJSON(w, http.StatusOK, graph.Process(*g, threshold))
	default:
		writeJSON(w, http.StatusOK, g)
	}
}

func parseThreshold(v string) (float64, bool, error) {
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, false, errors.New(errors.ErrCodeInvalidInput, "threshold must be a number in [0, 1]")
	}
	return f, true, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "query cannot be empty"))
		return
	}

	results, err := s.builder.Search(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []artist.Artist{}
	}
	writeJSON(w, http.StatusOK, results)
}
