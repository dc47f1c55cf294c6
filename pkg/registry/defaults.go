package registry

import "github.com/dukex/operion-studio/pkg/models"

// defaultConfigs holds JSON-native values only (float64 numbers, []any,
// map[string]any) so a config reads back unchanged after a save.
var defaultConfigs = map[string]map[string]any{
	"trigger-manual": {},
	"trigger-webhook": {
		"path":   "/webhook",
		"method": "POST",
	},
	"trigger-schedule": {
		"cron": "0 9 * * *",
	},
	"ai-gpt4": {
		"model":       "gpt-4",
		"prompt":      "Process the following input: {{input}}",
		"temperature": 0.7,
	},
	"ai-claude": {
		"model":      "claude-3-sonnet",
		"prompt":     "{{input}}",
		"max_tokens": 1024.0,
	},
	"rag-search": {
		"index": "default",
		"top_k": 5.0,
	},
	"mcp-tool": {
		"server":    "",
		"tool":      "",
		"arguments": map[string]any{},
	},
	"http-request": {
		"method":  "GET",
		"url":     "",
		"headers": map[string]any{},
		"body":    "",
	},
	"logic-condition": {
		"expression": "{{input}} != ''",
	},
	"logic-delay": {
		"seconds": 5.0,
	},
	"data-transform": {
		"template": "{{input}}",
	},
	"data-store": {
		"key": "",
	},
}

// DefaultConfig returns a fresh copy of the configuration template for a node
// type. Unknown types get an empty map so that they still become bare nodes.
func DefaultConfig(nodeType string) map[string]any {
	return models.CloneConfig(defaultConfigs[nodeType])
}
