package editor

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogSource map[string][]models.NodeType

func (c catalogSource) NodeTypes(context.Context) (map[string][]models.NodeType, error) {
	return c, nil
}

var testCatalog = catalogSource{
	"triggers": {
		{Type: "trigger-manual", Name: "Manual Trigger", Icon: "play"},
		{Type: "trigger-webhook", Name: "Webhook"},
	},
	"ai": {
		{Type: "ai-gpt4", Name: "GPT-4", Icon: "sparkles"},
	},
	"other": {
		{Type: "slack-integration", Name: "Slack"},
	},
}

func loadCatalog(t *testing.T) registry.Catalog {
	t.Helper()

	catalog, err := registry.NewRegistry(discardLogger(), testCatalog).Load(t.Context())
	require.NoError(t, err)

	return catalog
}

func TestPalette_Style(t *testing.T) {
	t.Parallel()

	p := NewPalette(loadCatalog(t))

	assert.Equal(t, "zap", p.Style(models.CategoryTrigger).Icon)
	assert.Equal(t, "brain", p.Style(models.CategoryAI).Icon)
	assert.Equal(t, p.Style(models.CategoryDefault), p.Style("unknown"))
}

func testIDs() *graph.IDGenerator {
	var tick int64

	return graph.NewIDGeneratorWithClock(func() time.Time {
		tick++

		return time.UnixMilli(1_700_000_000_000 + tick)
	})
}

func TestPalette(t *testing.T) {
	t.Parallel()

	p := NewPalette(loadCatalog(t))

	assert.Equal(t, []models.Category{models.CategoryTrigger, models.CategoryAI, models.CategoryIntegration}, p.Categories())

	_, expanded := p.Expanded()
	assert.False(t, expanded)

	p.Toggle(models.CategoryTrigger)
	p.Toggle(models.CategoryAI)

	current, expanded := p.Expanded()
	assert.True(t, expanded)
	assert.Equal(t, models.CategoryAI, current)

	p.Toggle(models.CategoryAI)
	_, expanded = p.Expanded()
	assert.False(t, expanded)

	items := p.Items(models.CategoryTrigger)
	require.Len(t, items, 2)
	assert.Equal(t, models.CategoryTrigger, items[0].Category)

	_, err := p.DragStart("nope")
	require.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestCanvas_Drop(t *testing.T) {
	t.Parallel()

	p := NewPalette(loadCatalog(t))
	c := NewCanvas(models.Graph{}, testIDs())
	c.Pan(100, 100)
	c.ZoomAt(Point{X: 100, Y: 100}, 2)

	payload, err := p.DragStart("ai-gpt4")
	require.NoError(t, err)
	assert.Equal(t, DragMIME, payload.MIME)

	node, err := c.Drop(payload, Point{X: 300, Y: 500})
	require.NoError(t, err)

	assert.Equal(t, models.Position{X: 100, Y: 200}, node.Position)
	assert.Equal(t, "ai-gpt4", node.Data.NodeType)
	assert.Equal(t, "GPT-4", node.Data.Label)
	assert.Equal(t, "gpt-4", node.Data.Config["model"])
	assert.Len(t, c.Graph().Nodes, 1)
}

func TestCanvas_DropRejectsBadPayload(t *testing.T) {
	t.Parallel()

	c := NewCanvas(models.Graph{}, testIDs())

	tests := []DragPayload{
		{MIME: "text/plain", Data: []byte(`{"type":"ai-gpt4"}`)},
		{MIME: DragMIME, Data: []byte(`{not json`)},
		{MIME: DragMIME, Data: []byte(`{"name":"no type"}`)},
	}

	for _, payload := range tests {
		_, err := c.Drop(payload, Point{})
		require.ErrorIs(t, err, ErrInvalidPayload)
	}

	assert.Empty(t, c.Graph().Nodes)
}

func threeNodeCanvas() *Canvas {
	g := models.Graph{Nodes: []models.Node{
		{ID: "a", Position: models.Position{X: 0, Y: 0}},
		{ID: "b", Position: models.Position{X: 300, Y: 0}},
		{ID: "c", Position: models.Position{X: 300, Y: 70}},
	}}

	return NewCanvas(g, testIDs())
}

func TestCanvas_LooseConnection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		point  Point
		target string
	}{
		{name: "inside node", point: Point{X: 350, Y: 20}, target: "b"},
		{name: "near left edge", point: Point{X: 280, Y: 30}, target: "b"},
		{name: "between two nodes picks nearest center", point: Point{X: 390, Y: 66}, target: "c"},
		{name: "empty space", point: Point{X: 900, Y: 900}},
		{name: "over source", point: Point{X: 10, Y: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := threeNodeCanvas()
			require.NoError(t, c.StartConnection("a"))

			edge, ok, err := c.FinishConnection(tt.point)
			require.NoError(t, err)

			if tt.target == "" {
				assert.False(t, ok)
				assert.Empty(t, c.Graph().Edges)

				return
			}

			require.True(t, ok)
			assert.Equal(t, "a", edge.Source)
			assert.Equal(t, tt.target, edge.Target)
			assert.Len(t, c.Graph().Edges, 1)
		})
	}
}

func TestCanvas_ConnectionGesture(t *testing.T) {
	t.Parallel()

	c := threeNodeCanvas()

	require.ErrorIs(t, c.StartConnection("missing"), ErrUnknownNode)

	_, _, err := c.FinishConnection(Point{})
	require.ErrorIs(t, err, ErrNoPendingConnection)

	require.NoError(t, c.StartConnection("a"))
	c.RemoveNode("a")

	_, connecting := c.Connecting()
	assert.False(t, connecting)
}

func TestCanvas_EditsReplaceGraph(t *testing.T) {
	t.Parallel()

	c := threeNodeCanvas()
	before := c.Graph()

	require.NoError(t, c.StartConnection("a"))
	edge, ok, err := c.FinishConnection(Point{X: 350, Y: 20})
	require.NoError(t, err)
	require.True(t, ok)

	c.MoveNode("b", models.Position{X: 1, Y: 2})
	c.UpdateConfig("b", map[string]any{"url": "https://example.com"})

	node, ok := c.Graph().NodeByID("b")
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 1, Y: 2}, node.Position)
	assert.Equal(t, "https://example.com", node.Data.Config["url"])

	c.RemoveEdge(edge.ID)
	assert.Empty(t, c.Graph().Edges)

	assert.Equal(t, models.Position{X: 300, Y: 0}, before.Nodes[1].Position)
	assert.Empty(t, before.Edges)
}

func TestCanvas_NodeAt(t *testing.T) {
	t.Parallel()

	c := threeNodeCanvas()

	node, ok := c.NodeAt(Point{X: 310, Y: 75})
	require.True(t, ok)
	assert.Equal(t, "c", node.ID)

	_, ok = c.NodeAt(Point{X: 200, Y: 20})
	assert.False(t, ok)
}
