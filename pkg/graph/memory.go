package graph

import "fmt"

// Memory is an in-memory Graph implementation. Node and edge iteration
// follows insertion order.
type Memory struct {
	order []NodeID
	nodes map[NodeID]*Node
	edges []*Edge
}

// NewMemory creates an empty in-memory graph.
func NewMemory() *Memory {
	return &Memory{
		nodes: make(map[NodeID]*Node),
	}
}

// AddNode inserts a node with the given coordinates. Adding an existing ID
// updates the coordinates in place and keeps the original iteration position.
func (m *Memory) AddNode(id NodeID, x, y float64) *Node {
	if n, ok := m.nodes[id]; ok {
		n.X = x
		n.Y = y
		return n
	}
	n := &Node{ID: id, X: x, Y: y}
	m.nodes[id] = n
	m.order = append(m.order, id)
	return n
}

// AddEdge inserts a directed edge. Both endpoints must already exist.
func (m *Memory) AddEdge(from, to NodeID, length float64) (*Edge, error) {
	if _, ok := m.nodes[from]; !ok {
		return nil, fmt.Errorf("add edge %d->%d: unknown source node %d", from, to, from)
	}
	if _, ok := m.nodes[to]; !ok {
		return nil, fmt.Errorf("add edge %d->%d: unknown target node %d", from, to, to)
	}
	e := &Edge{From: from, To: to, Length: length}
	m.edges = append(m.edges, e)
	return e, nil
}

// Nodes returns all nodes in insertion order.
func (m *Memory) Nodes() []*Node {
	nodes := make([]*Node, 0, len(m.order))
	for _, id := range m.order {
		nodes = append(nodes, m.nodes[id])
	}
	return nodes
}

// Node returns the node with the given ID, if present.
func (m *Memory) Node(id NodeID) (*Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Edges returns all directed edges in insertion order.
func (m *Memory) Edges() []*Edge {
	return m.edges
}

// NodeCount returns the number of nodes.
func (m *Memory) NodeCount() int {
	return len(m.order)
}

// EdgeCount returns the number of edges.
func (m *Memory) EdgeCount() int {
	return len(m.edges)
}
