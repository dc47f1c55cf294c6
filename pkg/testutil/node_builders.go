// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a test Node with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.Node)) models.Node {
	node := models.Node{
		ID:       "data-transform_" + uuid.New().String()[:8],
		Position: models.Position{X: 100, Y: 200},
		Data: models.NodeData{
			Label:    "Test Node",
			NodeType: "data-transform",
			Config:   map[string]any{"template": "{{ . }}"},
		},
	}

	for _, override := range overrides {
		override(&node)
	}

	return node
}

// WithTriggerNode configures the node as a manual trigger.
func WithTriggerNode() func(*models.Node) {
	return func(n *models.Node) {
		n.ID = "trigger-manual_" + uuid.New().String()[:8]
		n.Data.NodeType = "trigger-manual"
		n.Data.Label = "Start"
		n.Data.Config = map[string]any{}
	}
}

// WithID sets the node id.
func WithID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// WithConfig sets the node configuration.
func WithConfig(config map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Data.Config = config
	}
}

// WithLabel sets the node label.
func WithLabel(label string) func(*models.Node) {
	return func(n *models.Node) {
		n.Data.Label = label
	}
}

// WithFailure marks the node so the development backend fails the run there.
func WithFailure() func(*models.Node) {
	return func(n *models.Node) {
		config := models.CloneConfig(n.Data.Config)
		config["fail"] = true
		n.Data.Config = config
	}
}

// CreateTestWorkflow creates an active workflow whose nodes are chained in
// order.
func CreateTestWorkflow(name string, nodes ...models.Node) models.Workflow {
	edges := make([]models.Edge, 0, len(nodes))

	for i := 1; i < len(nodes); i++ {
		edges = append(edges, models.Edge{
			ID:     "e_" + nodes[i-1].ID + "-" + nodes[i].ID,
			Source: nodes[i-1].ID,
			Target: nodes[i].ID,
		})
	}

	if nodes == nil {
		nodes = []models.Node{}
	}

	return models.Workflow{
		Name:     name,
		IsActive: true,
		Tags:     []string{},
		Graph:    models.Graph{Nodes: nodes, Edges: edges},
	}
}
