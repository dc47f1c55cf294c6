package registry

import (
	"strings"

	"github.com/dukex/operion-studio/pkg/models"
)

// Style is the visual treatment the canvas applies to every node of a category.
type Style struct {
	Color  string `json:"color"`
	Accent string `json:"accent"`
	Icon   string `json:"icon"`
}

// paletteOrder is the order categories appear in the palette.
var paletteOrder = []models.Category{
	models.CategoryTrigger,
	models.CategoryAI,
	models.CategoryRAG,
	models.CategoryMCP,
	models.CategoryIntegration,
	models.CategoryLogic,
	models.CategoryData,
	models.CategoryDefault,
}

var prefixes = []struct {
	prefix   string
	category models.Category
}{
	{"trigger-", models.CategoryTrigger},
	{"ai-", models.CategoryAI},
	{"rag-", models.CategoryRAG},
	{"mcp-", models.CategoryMCP},
	{"http-", models.CategoryIntegration},
	{"logic-", models.CategoryLogic},
	{"data-", models.CategoryData},
}

var styles = map[models.Category]Style{
	models.CategoryTrigger:     {Color: "#16a34a", Accent: "#dcfce7", Icon: "zap"},
	models.CategoryAI:          {Color: "#7c3aed", Accent: "#ede9fe", Icon: "brain"},
	models.CategoryRAG:         {Color: "#0891b2", Accent: "#cffafe", Icon: "search"},
	models.CategoryMCP:         {Color: "#db2777", Accent: "#fce7f3", Icon: "plug"},
	models.CategoryIntegration: {Color: "#ea580c", Accent: "#ffedd5", Icon: "globe"},
	models.CategoryLogic:       {Color: "#ca8a04", Accent: "#fef9c3", Icon: "git-branch"},
	models.CategoryData:        {Color: "#2563eb", Accent: "#dbeafe", Icon: "database"},
	models.CategoryDefault:     {Color: "#6b7280", Accent: "#f3f4f6", Icon: "box"},
}

// Classify maps a node type to its category using the type prefix.
// Types containing "integration" anywhere are integrations.
func Classify(nodeType string) models.Category {
	for _, p := range prefixes {
		if strings.HasPrefix(nodeType, p.prefix) {
			return p.category
		}
	}

	if strings.Contains(nodeType, "integration") {
		return models.CategoryIntegration
	}

	return models.CategoryDefault
}

// StyleFor returns the style of a category, falling back to the default style.
func StyleFor(category models.Category) Style {
	if s, ok := styles[category]; ok {
		return s
	}

	return styles[models.CategoryDefault]
}

// Categories returns all categories in palette order.
func Categories() []models.Category {
	return append([]models.Category(nil), paletteOrder...)
}
