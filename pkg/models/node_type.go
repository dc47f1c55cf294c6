package models

// Category groups node types in the palette and drives their styling and
// default configuration.
type Category string

const (
	CategoryTrigger     Category = "trigger"
	CategoryAI          Category = "ai"
	CategoryRAG         Category = "rag"
	CategoryMCP         Category = "mcp"
	CategoryIntegration Category = "integration"
	CategoryLogic       Category = "logic"
	CategoryData        Category = "data"
	CategoryDefault     Category = "default"
)

// NodeType is an entry of the node-type catalog. Category is assigned once,
// when the catalog is loaded.
type NodeType struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Category    Category `json:"category,omitempty"`
}
