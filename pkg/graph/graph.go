// Package graph implements the editing operations of a workflow graph.
//
// Every operation takes a graph value and returns a new one; the node and edge
// slices of the input are never modified.
package graph

import (
	"strconv"
	"strings"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
)

// AddNode appends a node of the given type at position. Its config is seeded
// from the registry's default template for the type.
func AddNode(g models.Graph, nt models.NodeType, pos models.Position, ids *IDGenerator) (models.Graph, models.Node) {
	id := ids.NodeID(nt.Type)
	if hasNode(g, id) {
		id = ids.nodeIDAfter(nt.Type, maxTimestamp(g, nt.Type))
	}

	label := nt.Name
	if label == "" {
		label = nt.Type
	}

	node := models.Node{
		ID:       id,
		Position: pos,
		Data: models.NodeData{
			Label:       label,
			NodeType:    nt.Type,
			Icon:        nt.Icon,
			Description: nt.Description,
			Config:      registry.DefaultConfig(nt.Type),
		},
	}

	nodes := make([]models.Node, 0, len(g.Nodes)+1)
	nodes = append(nodes, g.Nodes...)
	nodes = append(nodes, node)

	return models.Graph{Nodes: nodes, Edges: copyEdges(g.Edges)}, node
}

// Connect appends an edge from sourceID to targetID. Endpoints are not checked
// against the node set here; see Validate.
func Connect(g models.Graph, sourceID, targetID string, ids *IDGenerator) (models.Graph, models.Edge) {
	edge := models.Edge{
		ID:     ids.EdgeID(sourceID, targetID),
		Source: sourceID,
		Target: targetID,
	}

	edges := make([]models.Edge, 0, len(g.Edges)+1)
	edges = append(edges, g.Edges...)
	edges = append(edges, edge)

	return models.Graph{Nodes: copyNodes(g.Nodes), Edges: edges}, edge
}

// MoveNode sets the position of the node with the given id.
func MoveNode(g models.Graph, id string, pos models.Position) models.Graph {
	nodes := copyNodes(g.Nodes)
	for i := range nodes {
		if nodes[i].ID == id {
			nodes[i].Position = pos
		}
	}

	return models.Graph{Nodes: nodes, Edges: copyEdges(g.Edges)}
}

// UpdateConfig replaces the config of the node with the given id.
func UpdateConfig(g models.Graph, id string, config map[string]any) models.Graph {
	nodes := copyNodes(g.Nodes)
	for i := range nodes {
		if nodes[i].ID == id {
			nodes[i].Data.Config = models.CloneConfig(config)
		}
	}

	return models.Graph{Nodes: nodes, Edges: copyEdges(g.Edges)}
}

// RemoveNode deletes a node together with every edge that references it.
func RemoveNode(g models.Graph, id string) models.Graph {
	nodes := make([]models.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}

	edges := make([]models.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}

	return models.Graph{Nodes: nodes, Edges: edges}
}

// RemoveEdge deletes the edge with the given id.
func RemoveEdge(g models.Graph, id string) models.Graph {
	edges := make([]models.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.ID != id {
			edges = append(edges, e)
		}
	}

	return models.Graph{Nodes: copyNodes(g.Nodes), Edges: edges}
}

func hasNode(g models.Graph, id string) bool {
	_, ok := g.NodeByID(id)

	return ok
}

// maxTimestamp returns the largest millisecond suffix among ids of nodeType.
func maxTimestamp(g models.Graph, nodeType string) int64 {
	var maxTS int64

	prefix := nodeType + "_"

	for _, n := range g.Nodes {
		suffix, ok := strings.CutPrefix(n.ID, prefix)
		if !ok {
			continue
		}

		ts, err := strconv.ParseInt(suffix, 10, 64)
		if err == nil && ts > maxTS {
			maxTS = ts
		}
	}

	return maxTS
}

func copyNodes(nodes []models.Node) []models.Node {
	out := make([]models.Node, len(nodes))
	copy(out, nodes)

	return out
}

func copyEdges(edges []models.Edge) []models.Edge {
	out := make([]models.Edge, len(edges))
	copy(out, edges)

	return out
}
