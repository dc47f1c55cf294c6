package models

import "maps"

// Position is a point in graph space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData carries the display and configuration data of a node.
// Config is opaque to the client and validated only by the execution engine.
type NodeData struct {
	Label       string         `json:"label"`
	NodeType    string         `json:"nodeType"`
	Icon        string         `json:"icon"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config"`
}

// Node is a single step of a workflow graph.
type Node struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Edge is a directed connection between two nodes. Parallel edges and
// self-loops are allowed.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the node and edge document stored with a workflow.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a copy whose slices and node configs can be changed without
// affecting g.
func (g Graph) Clone() Graph {
	nodes := make([]Node, len(g.Nodes))
	for i, n := range g.Nodes {
		n.Data.Config = CloneConfig(n.Data.Config)
		nodes[i] = n
	}

	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)

	return Graph{Nodes: nodes, Edges: edges}
}

// NodeByID returns the node with the given id.
func (g Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}

	return Node{}, false
}

// CloneConfig deep-copies nested maps and slices of a node configuration.
func CloneConfig(config map[string]any) map[string]any {
	if config == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneConfig(val)
	case map[string]string:
		return maps.Clone(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}

		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
