// Package graph models the road network consumed by the annotators: an
// ordered collection of nodes with geographic coordinates and directed edges
// with a length, both carrying read-write numeric attribute storage.
package graph

// NodeID identifies a node within a road network.
type NodeID int64

// Attribute names written by the annotators.
const (
	// AttrElevation is the node elevation in meters.
	AttrElevation = "elevation"

	// AttrGrade is the directed edge grade (rise over run).
	AttrGrade = "grade"

	// AttrGradeAbs is the absolute value of the edge grade.
	AttrGradeAbs = "grade_abs"
)

// Node is a road-network node. X is the longitude and Y the latitude in
// decimal degrees.
type Node struct {
	ID    NodeID
	X     float64
	Y     float64
	Attrs map[string]float64
}

// SetAttr stores a numeric attribute on the node, overwriting any prior value.
func (n *Node) SetAttr(name string, value float64) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]float64)
	}
	n.Attrs[name] = value
}

// Attr returns a node attribute and whether it is present.
func (n *Node) Attr(name string) (float64, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Edge is a directed road-network edge with a length in meters.
type Edge struct {
	From   NodeID
	To     NodeID
	Length float64
	Attrs  map[string]float64
}

// SetAttr stores a numeric attribute on the edge, overwriting any prior value.
func (e *Edge) SetAttr(name string, value float64) {
	if e.Attrs == nil {
		e.Attrs = make(map[string]float64)
	}
	e.Attrs[name] = value
}

// Attr returns an edge attribute and whether it is present.
func (e *Edge) Attr(name string) (float64, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Graph is the road-network capability consumed by the annotators. Nodes and
// Edges must return a stable order across calls so that fetch results can be
// re-aligned with the nodes they were requested for.
type Graph interface {
	// Nodes returns all nodes in stable insertion order.
	Nodes() []*Node

	// Node returns the node with the given ID, if present.
	Node(id NodeID) (*Node, bool)

	// Edges returns all directed edges in stable insertion order.
	Edges() []*Edge
}
