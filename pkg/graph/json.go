package graph

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonGraph is the on-disk representation read and written by the CLI.
type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID    NodeID             `json:"id"`
	X     float64            `json:"x"`
	Y     float64            `json:"y"`
	Attrs map[string]float64 `json:"attrs,omitempty"`
}

type jsonEdge struct {
	From   NodeID             `json:"from"`
	To     NodeID             `json:"to"`
	Length float64            `json:"length"`
	Attrs  map[string]float64 `json:"attrs,omitempty"`
}

// ReadJSON decodes a graph from its JSON representation. Node order in the
// document becomes the graph's iteration order.
func ReadJSON(r io.Reader) (*Memory, error) {
	var doc jsonGraph
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}

	g := NewMemory()
	for _, n := range doc.Nodes {
		node := g.AddNode(n.ID, n.X, n.Y)
		for name, value := range n.Attrs {
			node.SetAttr(name, value)
		}
	}
	for _, e := range doc.Edges {
		edge, err := g.AddEdge(e.From, e.To, e.Length)
		if err != nil {
			return nil, fmt.Errorf("decode graph: %w", err)
		}
		for name, value := range e.Attrs {
			edge.SetAttr(name, value)
		}
	}
	return g, nil
}

// WriteJSON encodes a graph to its JSON representation, preserving node and
// edge order.
func WriteJSON(w io.Writer, g Graph) error {
	nodes := g.Nodes()
	edges := g.Edges()

	doc := jsonGraph{
		Nodes: make([]jsonNode, 0, len(nodes)),
		Edges: make([]jsonEdge, 0, len(edges)),
	}
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, jsonNode{ID: n.ID, X: n.X, Y: n.Y, Attrs: n.Attrs})
	}
	for _, e := range edges {
		doc.Edges = append(doc.Edges, jsonEdge{From: e.From, To: e.To, Length: e.Length, Attrs: e.Attrs})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}
