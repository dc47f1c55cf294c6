package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
)

// DragMIME is the media type of a palette drag payload.
const DragMIME = "application/x-operion-node"

var (
	ErrInvalidPayload  = errors.New("invalid drag payload")
	ErrUnknownNodeType = errors.New("unknown node type")
)

// DragPayload carries a serialized node type from the palette to the canvas.
type DragPayload struct {
	MIME string
	Data []byte
}

// Palette lists the catalog grouped by category. At most one category is
// expanded at a time.
type Palette struct {
	catalog  registry.Catalog
	expanded models.Category
}

func NewPalette(catalog registry.Catalog) *Palette {
	return &Palette{catalog: catalog}
}

// Categories returns the non-empty categories in palette order.
func (p *Palette) Categories() []models.Category {
	var out []models.Category

	for _, c := range registry.Categories() {
		if len(p.catalog[c]) > 0 {
			out = append(out, c)
		}
	}

	return out
}

// Toggle expands a category, collapsing the one previously expanded.
// Toggling the expanded category collapses it.
func (p *Palette) Toggle(category models.Category) {
	if p.expanded == category {
		p.expanded = ""

		return
	}

	p.expanded = category
}

func (p *Palette) Expanded() (models.Category, bool) {
	return p.expanded, p.expanded != ""
}

func (p *Palette) Items(category models.Category) []models.NodeType {
	return slices.Clone(p.catalog[category])
}

// Style returns how items of a category are drawn.
func (p *Palette) Style(category models.Category) registry.Style {
	return registry.StyleFor(category)
}

// DragStart serializes a node type for a drag onto the canvas.
func (p *Palette) DragStart(nodeType string) (DragPayload, error) {
	nt, ok := p.catalog.Lookup(nodeType)
	if !ok {
		return DragPayload{}, fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeType)
	}

	data, err := json.Marshal(nt)
	if err != nil {
		return DragPayload{}, fmt.Errorf("failed to encode node type %s: %w", nodeType, err)
	}

	return DragPayload{MIME: DragMIME, Data: data}, nil
}

// DecodePayload reads the node type back from a drag payload.
func DecodePayload(payload DragPayload) (models.NodeType, error) {
	if payload.MIME != DragMIME {
		return models.NodeType{}, fmt.Errorf("%w: unexpected media type %q", ErrInvalidPayload, payload.MIME)
	}

	var nt models.NodeType
	if err := json.Unmarshal(payload.Data, &nt); err != nil {
		return models.NodeType{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if nt.Type == "" {
		return models.NodeType{}, fmt.Errorf("%w: missing node type", ErrInvalidPayload)
	}

	if nt.Category == "" {
		nt.Category = registry.Classify(nt.Type)
	}

	return nt, nil
}
