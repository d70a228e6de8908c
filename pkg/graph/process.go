package graph

import "github.com/matzehuels/artistgraph/pkg/artist"

// Process filters g for display.
//
// Edges with a weight below threshold are dropped. A node is kept when it is
// an endpoint of a kept edge or is the center of g; kept nodes retain their
// input order and the center is flagged. Links whose endpoints are not both
// kept nodes are dropped.
func Process(g artist.GraphData, threshold float64) Processed {
	nodes, index, kept := filter(g, threshold)

	links := make([]Link, 0, len(kept))
	for _, e := range kept {
		if hasBoth(index, e) {
			links = append(links, Link{Source: e.Source, Target: e.Target, Weight: e.Weight})
		}
	}
	return Processed{Nodes: nodes, Links: links}
}

// Resolve rewrites the links of p as indices into p.Nodes. Links with an
// endpoint that is not a node are dropped.
func Resolve(p Processed) Resolved {
	index := make(map[string]int, len(p.Nodes))
	for i, n := range p.Nodes {
		index[artist.Key(n.Name)] = i
	}

	links := make([]ResolvedLink, 0, len(p.Links))
	for _, l := range p.Links {
		src, ok1 := index[artist.Key(l.Source)]
		dst, ok2 := index[artist.Key(l.Target)]
		if ok1 && ok2 {
			links = append(links, ResolvedLink{Source: src, Target: dst, Weight: l.Weight})
		}
	}
	return Resolved{Nodes: p.Nodes, Links: links}
}

// ProcessAndResolve is Resolve(Process(g, threshold)) without the
// intermediate name-based links.
func ProcessAndResolve(g artist.GraphData, threshold float64) Resolved {
	nodes, index, kept := filter(g, threshold)

	links := make([]ResolvedLink, 0, len(kept))
	for _, e := range kept {
		src, ok1 := index[artist.Key(e.Source)]
		dst, ok2 := index[artist.Key(e.Target)]
		if ok1 && ok2 {
			links = append(links, ResolvedLink{Source: src, Target: dst, Weight: e.Weight})
		}
	}
	return Resolved{Nodes: nodes, Links: links}
}

// PruneDangling returns a copy of g without the edges whose source or target
// is not among its nodes.
func PruneDangling(g artist.GraphData) artist.GraphData {
	names := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		names[n.Key()] = 0
	}

	out := artist.GraphData{
		Nodes:  append([]artist.Artist(nil), g.Nodes...),
		Edges:  make([]artist.Edge, 0, len(g.Edges)),
		Center: g.Center,
	}
	for _, e := range g.Edges {
		if hasBoth(names, e) {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// filter returns the kept nodes, their index by key and the edges at or
// above threshold.
func filter(g artist.GraphData, threshold float64) ([]Node, map[string]int, []artist.Edge) {
	connected := make(map[string]bool, len(g.Edges)*2)
	kept := make([]artist.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.Weight >= threshold {
			connected[artist.Key(e.Source)] = true
			connected[artist.Key(e.Target)] = true
			kept = append(kept, e)
		}
	}

	center := ""
	if g.Center != nil {
		center = g.Center.Key()
	}

	nodes := make([]Node, 0, len(connected)+1)
	index := make(map[string]int, len(connected)+1)
	for _, a := range g.Nodes {
		key := a.Key()
		if _, dup := index[key]; dup {
			continue
		}
		isCenter := center != "" && key == center
		if connected[key] || isCenter {
			index[key] = len(nodes)
			nodes = append(nodes, Node{Artist: a, IsCenter: isCenter})
		}
	}
	return nodes, index, kept
}

func hasBoth(index map[string]int, e artist.Edge) bool {
	_, ok1 := index[artist.Key(e.Source)]
	_, ok2 := index[artist.Key(e.Target)]
	return ok1 && ok2
}
