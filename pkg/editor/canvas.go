package editor

import (
	"errors"
	"math"

	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
)

// Node bounds used for hit-testing, in graph units. A node's position is its
// top-left corner.
const (
	NodeWidth     = 180.0
	NodeHeight    = 60.0
	ConnectRadius = 24.0
)

var (
	ErrUnknownNode         = errors.New("unknown node")
	ErrNoPendingConnection = errors.New("no connection in progress")
)

// Canvas holds the graph being edited and the viewport it is drawn through.
// Every edit replaces the graph value. A Canvas is not safe for concurrent use.
type Canvas struct {
	graph    models.Graph
	viewport Viewport
	ids      *graph.IDGenerator

	connecting string
}

func NewCanvas(g models.Graph, ids *graph.IDGenerator) *Canvas {
	return &Canvas{
		graph:    g,
		viewport: DefaultViewport(),
		ids:      ids,
	}
}

func (c *Canvas) Graph() models.Graph {
	return c.graph
}

func (c *Canvas) SetGraph(g models.Graph) {
	c.graph = g
	c.connecting = ""
}

func (c *Canvas) Viewport() Viewport {
	return c.viewport
}

// Drop adds the node type carried by payload at the screen point p.
func (c *Canvas) Drop(payload DragPayload, p Point) (models.Node, error) {
	nt, err := DecodePayload(payload)
	if err != nil {
		return models.Node{}, err
	}

	var node models.Node

	c.graph, node = graph.AddNode(c.graph, nt, c.viewport.ToGraph(p), c.ids)

	return node, nil
}

// StartConnection begins a connection gesture from a node.
func (c *Canvas) StartConnection(sourceID string) error {
	if _, ok := c.graph.NodeByID(sourceID); !ok {
		return ErrUnknownNode
	}

	c.connecting = sourceID

	return nil
}

// Connecting returns the source of the gesture in progress.
func (c *Canvas) Connecting() (string, bool) {
	return c.connecting, c.connecting != ""
}

func (c *Canvas) CancelConnection() {
	c.connecting = ""
}

// FinishConnection ends the gesture at screen point p. The gesture connects
// to the node whose bounds, grown by ConnectRadius, contain the point; when
// several do, the one with the nearest center wins. Releasing over empty
// space or over the source node drops the gesture.
func (c *Canvas) FinishConnection(p Point) (models.Edge, bool, error) {
	source := c.connecting
	c.connecting = ""

	if source == "" {
		return models.Edge{}, false, ErrNoPendingConnection
	}

	target, ok := c.nearestNode(c.viewport.ToGraph(p), source)
	if !ok {
		return models.Edge{}, false, nil
	}

	var edge models.Edge

	c.graph, edge = graph.Connect(c.graph, source, target, c.ids)

	return edge, true, nil
}

// NodeAt returns the node drawn under screen point p.
func (c *Canvas) NodeAt(p Point) (models.Node, bool) {
	pos := c.viewport.ToGraph(p)

	for i := len(c.graph.Nodes) - 1; i >= 0; i-- {
		n := c.graph.Nodes[i]
		if within(pos, n.Position, 0) {
			return n, true
		}
	}

	return models.Node{}, false
}

func (c *Canvas) MoveNode(id string, pos models.Position) {
	c.graph = graph.MoveNode(c.graph, id, pos)
}

func (c *Canvas) RemoveNode(id string) {
	c.graph = graph.RemoveNode(c.graph, id)
	if c.connecting == id {
		c.connecting = ""
	}
}

func (c *Canvas) RemoveEdge(id string) {
	c.graph = graph.RemoveEdge(c.graph, id)
}

func (c *Canvas) UpdateConfig(id string, config map[string]any) {
	c.graph = graph.UpdateConfig(c.graph, id, config)
}

func (c *Canvas) Pan(dx, dy float64) {
	c.viewport = c.viewport.Pan(dx, dy)
}

func (c *Canvas) ZoomAt(p Point, factor float64) {
	c.viewport = c.viewport.ZoomAt(p, factor)
}

func (c *Canvas) nearestNode(pos models.Position, exclude string) (string, bool) {
	best := ""
	bestDist := math.Inf(1)

	for _, n := range c.graph.Nodes {
		if n.ID == exclude || !within(pos, n.Position, ConnectRadius) {
			continue
		}

		cx := n.Position.X + NodeWidth/2
		cy := n.Position.Y + NodeHeight/2

		if d := math.Hypot(pos.X-cx, pos.Y-cy); d < bestDist {
			best, bestDist = n.ID, d
		}
	}

	return best, best != ""
}

func within(pos, topLeft models.Position, margin float64) bool {
	return pos.X >= topLeft.X-margin && pos.X <= topLeft.X+NodeWidth+margin &&
		pos.Y >= topLeft.Y-margin && pos.Y <= topLeft.Y+NodeHeight+margin
}
