package annotate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velomaps/gradient/internal/testutil"
	"github.com/velomaps/gradient/pkg/cache"
	"github.com/velomaps/gradient/pkg/elevation"
	"github.com/velomaps/gradient/pkg/graph"
)

func newTestFetcher(t *testing.T, mock *testutil.MockElevationServer, batchSize int) *elevation.Fetcher {
	t.Helper()

	client, err := elevation.NewClient(elevation.ClientConfig{UserAgent: "gradient-test/1.0"})
	require.NoError(t, err)

	store, err := cache.NewMemoryStore(0)
	require.NoError(t, err)

	fetcher, err := elevation.NewFetcher(client, store, elevation.FetcherConfig{
		BatchSize:   batchSize,
		URLTemplate: mock.URLTemplate(),
		Params:      map[string]string{"key": "test-key"},
	})
	require.NoError(t, err)
	return fetcher
}

// twoNodeGraph builds u --50m--> v and v --50m--> u.
func twoNodeGraph(t *testing.T) *graph.Memory {
	t.Helper()

	g := graph.NewMemory()
	g.AddNode(1, 8.54, 47.37)
	g.AddNode(2, 8.55, 47.38)
	_, err := g.AddEdge(1, 2, 50.0)
	require.NoError(t, err)
	_, err = g.AddEdge(2, 1, 50.0)
	require.NoError(t, err)
	return g
}

func setElevations(t *testing.T, g *graph.Memory, elevations map[graph.NodeID]float64) {
	t.Helper()
	for id, elev := range elevations {
		node, ok := g.Node(id)
		require.True(t, ok)
		node.SetAttr(graph.AttrElevation, elev)
	}
}

func TestAddNodeElevations(t *testing.T) {
	mock := testutil.NewMockElevationServer()
	defer mock.Close()

	g := graph.NewMemory()
	for i := 1; i <= 7; i++ {
		// X is longitude, Y is latitude.
		g.AddNode(graph.NodeID(i), float64(i)/10, float64(i))
	}

	fetcher := newTestFetcher(t, mock, 3)
	require.NoError(t, AddNodeElevations(context.Background(), g, fetcher))

	for _, node := range g.Nodes() {
		elev, ok := node.Attr(graph.AttrElevation)
		require.True(t, ok, "node %d missing elevation", node.ID)
		// Mock elevation is lat*100 + lon; latitude comes from Y.
		assert.InDelta(t, node.Y*100+node.X, elev, 1e-3)
	}
}

func TestAddNodeElevations_RoundsToMillimeters(t *testing.T) {
	mock := testutil.NewMockElevationServer()
	defer mock.Close()
	mock.ElevationFn = func(lat, lon float64) float64 { return 123.45678 }

	g := graph.NewMemory()
	g.AddNode(1, 8.54, 47.37)

	fetcher := newTestFetcher(t, mock, 350)
	require.NoError(t, AddNodeElevations(context.Background(), g, fetcher))

	node, _ := g.Node(1)
	elev, ok := node.Attr(graph.AttrElevation)
	require.True(t, ok)
	assert.Equal(t, 123.457, elev)
}

func TestAddNodeElevations_OverwritesPriorValues(t *testing.T) {
	mock := testutil.NewMockElevationServer()
	defer mock.Close()
	mock.ElevationFn = func(lat, lon float64) float64 { return 42.0 }

	g := graph.NewMemory()
	g.AddNode(1, 8.54, 47.37).SetAttr(graph.AttrElevation, 9999.0)

	fetcher := newTestFetcher(t, mock, 350)
	require.NoError(t, AddNodeElevations(context.Background(), g, fetcher))

	node, _ := g.Node(1)
	elev, _ := node.Attr(graph.AttrElevation)
	assert.Equal(t, 42.0, elev)
}

func TestAddNodeElevations_CardinalityMismatch(t *testing.T) {
	mock := testutil.NewMockElevationServer()
	defer mock.Close()
	mock.SetHandler(mock.TruncatedHandler(1))

	g := graph.NewMemory()
	for i := 1; i <= 4; i++ {
		g.AddNode(graph.NodeID(i), float64(i), float64(i))
	}

	fetcher := newTestFetcher(t, mock, 350)
	err := AddNodeElevations(context.Background(), g, fetcher)
	require.Error(t, err)

	var cardErr *elevation.CardinalityError
	require.ErrorAs(t, err, &cardErr)

	// Nothing was written.
	for _, node := range g.Nodes() {
		_, ok := node.Attr(graph.AttrElevation)
		assert.False(t, ok)
	}
}

func TestAddEdgeGrades(t *testing.T) {
	g := twoNodeGraph(t)
	setElevations(t, g, map[graph.NodeID]float64{1: 100.000, 2: 110.000})

	require.NoError(t, AddEdgeGrades(g, true))

	edges := g.Edges()
	require.Len(t, edges, 2)

	// Uphill edge: rise 10 over run 50.
	grade, ok := edges[0].Attr(graph.AttrGrade)
	require.True(t, ok)
	assert.Equal(t, 0.2, grade)
	gradeAbs, ok := edges[0].Attr(graph.AttrGradeAbs)
	require.True(t, ok)
	assert.Equal(t, 0.2, gradeAbs)

	// Reverse edge is downhill.
	grade, _ = edges[1].Attr(graph.AttrGrade)
	assert.Equal(t, -0.2, grade)
	gradeAbs, _ = edges[1].Attr(graph.AttrGradeAbs)
	assert.Equal(t, 0.2, gradeAbs)
}

func TestAddEdgeGrades_WithoutAbsolute(t *testing.T) {
	g := twoNodeGraph(t)
	setElevations(t, g, map[graph.NodeID]float64{1: 100.0, 2: 110.0})

	require.NoError(t, AddEdgeGrades(g, false))

	for _, edge := range g.Edges() {
		_, ok := edge.Attr(graph.AttrGrade)
		assert.True(t, ok)
		_, ok = edge.Attr(graph.AttrGradeAbs)
		assert.False(t, ok)
	}
}

func TestAddEdgeGrades_Rounding(t *testing.T) {
	g := graph.NewMemory()
	g.AddNode(1, 0, 0)
	g.AddNode(2, 0, 0.001)
	_, err := g.AddEdge(1, 2, 100.0)
	require.NoError(t, err)
	setElevations(t, g, map[graph.NodeID]float64{1: 0, 2: 12.3456})

	require.NoError(t, AddEdgeGrades(g, true))

	grade, _ := g.Edges()[0].Attr(graph.AttrGrade)
	assert.Equal(t, 0.1235, grade)
}

func TestAddEdgeGrades_MissingElevation(t *testing.T) {
	g := twoNodeGraph(t)
	setElevations(t, g, map[graph.NodeID]float64{1: 100.0}) // node 2 unannotated

	err := AddEdgeGrades(g, true)
	require.Error(t, err)

	var missingErr *MissingElevationError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, graph.NodeID(2), missingErr.Node)
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		value  float64
		places int
		want   float64
	}{
		{123.45678, 3, 123.457},
		{0.123456, 4, 0.1235},
		{-0.123456, 4, -0.1235},
		{1.0, 3, 1.0},
		{0.00005, 4, 0.0001},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, roundTo(tt.value, tt.places), "roundTo(%v, %d)", tt.value, tt.places)
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	mock := testutil.NewMockElevationServer()
	defer mock.Close()

	// 700 nodes in a chain; batch size 350 means exactly two API calls.
	g := graph.NewMemory()
	for i := 1; i <= 700; i++ {
		g.AddNode(graph.NodeID(i), float64(i)/1000, float64(i)/1000)
		if i > 1 {
			_, err := g.AddEdge(graph.NodeID(i-1), graph.NodeID(i), 10.0)
			require.NoError(t, err)
		}
	}

	fetcher := newTestFetcher(t, mock, 350)
	ctx := context.Background()

	require.NoError(t, AddNodeElevations(ctx, g, fetcher))
	assert.Equal(t, 2, mock.RequestCount())

	require.NoError(t, AddEdgeGrades(g, true))
	for _, edge := range g.Edges() {
		_, ok := edge.Attr(graph.AttrGrade)
		require.True(t, ok)
	}
}
