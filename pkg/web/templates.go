package web

import (
	"context"
	"fmt"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence"
)

// builtinTemplates are the templates served by a fresh development backend.
func builtinTemplates() []models.Workflow {
	return []models.Workflow{
		{
			Name:        "Email Digest",
			Description: "Summarize the inbox every morning and post the digest to Slack",
			Category:    "productivity",
			Tags:        []string{"email", "ai"},
			IsActive:    true,
			IsTemplate:  true,
			Graph: models.Graph{
				Nodes: []models.Node{
					templateNode("trigger-schedule_1", "Every Morning", "trigger-schedule", 0, map[string]any{"cron": "0 8 * * *"}),
					templateNode("ai-gpt4_2", "Summarize", "ai-gpt4", 300, map[string]any{
						"model":       "gpt-4",
						"prompt":      "Summarize these emails: {{input}}",
						"temperature": 0.3,
					}),
					templateNode("slack-integration_3", "Post Digest", "slack-integration", 600, map[string]any{"channel": "#digest"}),
				},
				Edges: []models.Edge{
					{ID: "e_trigger-schedule_1-ai-gpt4_2", Source: "trigger-schedule_1", Target: "ai-gpt4_2"},
					{ID: "e_ai-gpt4_2-slack-integration_3", Source: "ai-gpt4_2", Target: "slack-integration_3"},
				},
			},
		},
		{
			Name:        "Webhook Knowledge Answer",
			Description: "Answer an incoming question from the knowledge base",
			Category:    "support",
			Tags:        []string{"webhook", "rag"},
			IsActive:    true,
			IsTemplate:  true,
			Graph: models.Graph{
				Nodes: []models.Node{
					templateNode("trigger-webhook_1", "Question", "trigger-webhook", 0, map[string]any{"path": "/ask", "method": "POST"}),
					templateNode("rag-search_2", "Search Docs", "rag-search", 300, map[string]any{"index": "docs", "top_k": 3.0}),
					templateNode("ai-claude_3", "Answer", "ai-claude", 600, map[string]any{
						"model":      "claude-3-sonnet",
						"prompt":     "Answer using the documents: {{input}}",
						"max_tokens": 512.0,
					}),
				},
				Edges: []models.Edge{
					{ID: "e_trigger-webhook_1-rag-search_2", Source: "trigger-webhook_1", Target: "rag-search_2"},
					{ID: "e_rag-search_2-ai-claude_3", Source: "rag-search_2", Target: "ai-claude_3"},
				},
			},
		},
	}
}

func templateNode(id, label, nodeType string, x float64, config map[string]any) models.Node {
	return models.Node{
		ID:       id,
		Position: models.Position{X: x, Y: 120},
		Data:     models.NodeData{Label: label, NodeType: nodeType, Config: config},
	}
}

// SeedTemplates stores the built-in templates when the store has none. It
// returns the number of templates written.
func SeedTemplates(ctx context.Context, store persistence.Persistence) (int, error) {
	existing, err := store.Templates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list templates: %w", err)
	}

	if len(existing) > 0 {
		return 0, nil
	}

	templates := builtinTemplates()
	for i := range templates {
		if err := store.SaveWorkflow(ctx, &templates[i]); err != nil {
			return i, fmt.Errorf("failed to seed template %q: %w", templates[i].Name, err)
		}
	}

	return len(templates), nil
}
