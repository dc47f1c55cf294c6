// Package registry provides the node-type catalog used by the palette and the canvas.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dukex/operion-studio/pkg/models"
)

// ErrCatalogNotLoaded is returned by lookups made before a successful Load.
var ErrCatalogNotLoaded = errors.New("node type catalog not loaded")

// CatalogSource fetches the raw node-type catalog, grouped the way the backend groups it.
type CatalogSource interface {
	NodeTypes(ctx context.Context) (map[string][]models.NodeType, error)
}

// Catalog maps each category to its node types.
type Catalog map[models.Category][]models.NodeType

// Lookup finds a node type by its type string.
func (c Catalog) Lookup(nodeType string) (models.NodeType, bool) {
	for _, nt := range c[Classify(nodeType)] {
		if nt.Type == nodeType {
			return nt, true
		}
	}

	return models.NodeType{}, false
}

// Registry loads the catalog once per session and serves it read-only afterwards.
type Registry struct {
	logger *slog.Logger
	source CatalogSource

	mu      sync.Mutex
	catalog Catalog
}

func NewRegistry(log *slog.Logger, source CatalogSource) *Registry {
	return &Registry{
		logger: log,
		source: source,
	}
}

// Load fetches the catalog on first use. Concurrent callers wait for the same
// fetch; a failed fetch is not remembered so the next caller retries.
func (r *Registry) Load(ctx context.Context) (Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.catalog != nil {
		return r.catalog, nil
	}

	raw, err := r.source.NodeTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load node types: %w", err)
	}

	r.catalog = buildCatalog(raw)

	r.logger.InfoContext(ctx, "Loaded node type catalog", "categories", len(r.catalog))

	return r.catalog, nil
}

// Catalog returns the loaded catalog.
func (r *Registry) Catalog() (Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.catalog == nil {
		return nil, ErrCatalogNotLoaded
	}

	return r.catalog, nil
}

// buildCatalog regroups the backend catalog by category and stamps each entry
// with its category so later consumers never re-derive it from the prefix.
func buildCatalog(raw map[string][]models.NodeType) Catalog {
	catalog := make(Catalog)

	groups := make([]string, 0, len(raw))
	for group := range raw {
		groups = append(groups, group)
	}

	sort.Strings(groups)

	seen := make(map[string]bool)

	for _, group := range groups {
		for _, nt := range raw[group] {
			if nt.Type == "" || seen[nt.Type] {
				continue
			}

			seen[nt.Type] = true
			nt.Category = Classify(nt.Type)
			catalog[nt.Category] = append(catalog[nt.Category], nt)
		}
	}

	return catalog
}
