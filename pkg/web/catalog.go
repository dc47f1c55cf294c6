package web

import "github.com/dukex/operion-studio/pkg/models"

// nodeTypes is the catalog served by the development backend, grouped the
// way the production backend groups it.
var nodeTypes = map[string][]models.NodeType{
	"triggers": {
		{Type: "trigger-manual", Name: "Manual Trigger", Icon: "play", Description: "Start the workflow by hand"},
		{Type: "trigger-webhook", Name: "Webhook", Icon: "webhook", Description: "Start the workflow from an HTTP call"},
		{Type: "trigger-schedule", Name: "Schedule", Icon: "clock", Description: "Start the workflow on a cron schedule"},
	},
	"ai": {
		{Type: "ai-gpt4", Name: "GPT-4", Icon: "sparkles", Description: "Call an OpenAI GPT-4 model"},
		{Type: "ai-claude", Name: "Claude", Icon: "sparkles", Description: "Call an Anthropic Claude model"},
	},
	"knowledge": {
		{Type: "rag-search", Name: "Knowledge Search", Icon: "search", Description: "Retrieve documents from an index"},
		{Type: "mcp-tool", Name: "MCP Tool", Icon: "plug", Description: "Invoke a tool on an MCP server"},
	},
	"integrations": {
		{Type: "http-request", Name: "HTTP Request", Icon: "globe", Description: "Call an external HTTP API"},
		{Type: "slack-integration", Name: "Slack", Icon: "message-square", Description: "Post a message to Slack"},
	},
	"logic": {
		{Type: "logic-condition", Name: "Condition", Icon: "git-branch", Description: "Branch on an expression"},
		{Type: "logic-delay", Name: "Delay", Icon: "timer", Description: "Wait before continuing"},
	},
	"data": {
		{Type: "data-transform", Name: "Transform", Icon: "shuffle", Description: "Reshape data with a template"},
		{Type: "data-store", Name: "Store", Icon: "database", Description: "Persist a value under a key"},
	},
}
