// Package annotate attaches elevation and grade attributes to a road
// network. AddNodeElevations drives the batch fetcher over every node;
// AddEdgeGrades derives per-edge grade from the elevations it wrote.
package annotate

import (
	"context"
	"fmt"
	"math"

	"github.com/velomaps/gradient/pkg/elevation"
	"github.com/velomaps/gradient/pkg/graph"
	"github.com/velomaps/gradient/pkg/logging"
)

// Rounding applied to stored attributes.
const (
	// elevationPlaces rounds node elevations to millimeters.
	elevationPlaces = 3

	// gradePlaces rounds edge grades to the ten-thousandths place.
	gradePlaces = 4
)

// MissingElevationError reports an edge endpoint that has no elevation
// attribute. Run AddNodeElevations first.
type MissingElevationError struct {
	Node graph.NodeID
}

// Error implements the error interface.
func (e *MissingElevationError) Error() string {
	return fmt.Sprintf("node %d has no elevation attribute", e.Node)
}

// AddNodeElevations fetches the elevation of every node in the graph and
// writes it as the node's elevation attribute, rounded to millimeters. Any
// prior elevation attributes are overwritten. The fetch is all-or-nothing: a
// result count that does not match the node count fails without partial
// writes.
func AddNodeElevations(ctx context.Context, g graph.Graph, fetcher *elevation.Fetcher) error {
	logger := logging.NewLogger("annotate")
	nodes := g.Nodes()

	pairs := make([]elevation.CoordinatePair, 0, len(nodes))
	for _, node := range nodes {
		pairs = append(pairs, elevation.CoordinatePair{ID: node.ID, Lat: node.Y, Lon: node.X})
	}

	results, err := fetcher.Fetch(ctx, pairs)
	if err != nil {
		return fmt.Errorf("fetch node elevations: %w", err)
	}
	if len(results) != len(nodes) {
		return &elevation.CardinalityError{Requested: len(nodes), Received: len(results)}
	}

	for _, result := range results {
		node, ok := g.Node(result.ID)
		if !ok {
			return fmt.Errorf("elevation result for unknown node %d", result.ID)
		}
		node.SetAttr(graph.AttrElevation, roundTo(result.Elevation, elevationPlaces))
	}

	logger.Info().
		Int("nodes", len(nodes)).
		Msg("Added elevation data to all nodes")
	return nil
}

// AddEdgeGrades computes the directed grade of every edge as the elevation
// change from source to target divided by the edge length, rounded to four
// decimal places, and writes it as the edge's grade attribute. With
// addAbsolute, the absolute grade is written under a separate attribute.
// Every endpoint must already carry an elevation attribute. Edge lengths must
// be positive; zero-length edges are not guarded.
func AddEdgeGrades(g graph.Graph, addAbsolute bool) error {
	logger := logging.NewLogger("annotate")
	edges := g.Edges()

	for _, edge := range edges {
		from, ok := g.Node(edge.From)
		if !ok {
			return fmt.Errorf("edge %d->%d: unknown source node", edge.From, edge.To)
		}
		to, ok := g.Node(edge.To)
		if !ok {
			return fmt.Errorf("edge %d->%d: unknown target node", edge.From, edge.To)
		}

		fromElevation, ok := from.Attr(graph.AttrElevation)
		if !ok {
			return &MissingElevationError{Node: from.ID}
		}
		toElevation, ok := to.Attr(graph.AttrElevation)
		if !ok {
			return &MissingElevationError{Node: to.ID}
		}

		grade := roundTo((toElevation-fromElevation)/edge.Length, gradePlaces)
		edge.SetAttr(graph.AttrGrade, grade)
		if addAbsolute {
			edge.SetAttr(graph.AttrGradeAbs, math.Abs(grade))
		}
	}

	logger.Info().
		Int("edges", len(edges)).
		Msg("Added grade data to all edges")
	return nil
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
