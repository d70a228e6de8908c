// Package graph post-processes and serializes artist similarity graphs.
//
// A build in pkg/similarity returns an [artist.GraphData]: every resolved
// artist and every discovered edge. Visualizations usually want less than
// that, so this package provides the transformations that sit between the
// engine and a renderer:
//
//   - [Process]: drop edges below a weight threshold and the artists left
//     without any edge, keeping the center
//   - [Resolve]: rewrite links as indices into the node slice
//   - [ProcessAndResolve]: both in one pass
//   - [PruneDangling]: drop edges whose endpoints are not nodes
//
// All functions are pure; inputs are never modified.
//
// # Serialization
//
// GraphData uses a node-link JSON format:
//
//	{
//	  "nodes": [{"name": "Radiohead"}, {"name": "Portishead"}],
//	  "edges": [{"source": "Radiohead", "target": "Portishead", "weight": 0.42}],
//	  "center": {"name": "Radiohead"}
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("radiohead.json")  // File -> GraphData
//	graph.WriteGraphFile(g, "output.json")         // GraphData -> File
//	data, _ := graph.MarshalGraph(g)               // GraphData -> []byte
//
// Artist names are compared case-insensitively throughout.
package graph
