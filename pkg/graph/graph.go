package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/artistgraph/pkg/artist"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g artist.GraphData) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g artist.GraphData, path string) error {
	return WriteJSONFile(g, path)
}

// WriteGraph writes a graph as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(g artist.GraphData, w io.Writer) error {
	return writeJSON(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded graph.
func ReadGraphFile(path string) (artist.GraphData, error) {
	f, err := os.Open(path)
	if err != nil {
		return artist.GraphData{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
// Nodes without a name are rejected.
func ReadGraph(r io.Reader) (artist.GraphData, error) {
	var g artist.GraphData
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return artist.GraphData{}, fmt.Errorf("decode: %w", err)
	}
	for i, n := range g.Nodes {
		if artist.Blank(n.Name) {
			return artist.GraphData{}, fmt.Errorf("node %d: missing name", i)
		}
	}
	if g.Nodes == nil {
		g.Nodes = []artist.Artist{}
	}
	if g.Edges == nil {
		g.Edges = []artist.Edge{}
	}
	return g, nil
}

// WriteJSONFile writes any of the graph representations of this package
// (GraphData, Processed, Resolved) to a JSON file.
func WriteJSONFile(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeJSON(v, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(v any, w io.Writer) error {
	return writeJSON(v, w)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
