package graph

import "github.com/matzehuels/artistgraph/pkg/artist"

// Node is an artist prepared for display.
type Node struct {
	artist.Artist
	IsCenter bool `json:"isCenter"`
}

// Link is a kept edge that references its endpoints by name.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// ResolvedLink references its endpoints by index into the node slice.
type ResolvedLink struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
}

// Processed is a filtered graph with name-based links.
type Processed struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Resolved is a filtered graph with index-based links.
type Resolved struct {
	Nodes []Node         `json:"nodes"`
	Links []ResolvedLink `json:"links"`
}
