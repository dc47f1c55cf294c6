package execution

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dukex/operion-studio/pkg/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultHistoryInterval = 10 * time.Second
	DefaultHistoryLimit    = 20

	historyCacheSize = 128
)

// Lister lists the recent executions of a workflow.
type Lister interface {
	ListExecutions(ctx context.Context, workflowID int64, limit int) ([]models.Execution, error)
}

// History drives the execution history panels. Each expanded panel owns one
// refresh loop; the last rows of every panel are kept in an LRU so that
// re-expanding shows them before the first fetch returns.
type History struct {
	api      Lister
	interval time.Duration
	limit    int
	logger   *slog.Logger
	cache    *lru.Cache[int64, []Row]

	mu     sync.Mutex
	panels map[int64]*panel
}

type panel struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type HistoryOption func(*History)

func WithRefreshInterval(interval time.Duration) HistoryOption {
	return func(h *History) {
		if interval > 0 {
			h.interval = interval
		}
	}
}

func WithLimit(limit int) HistoryOption {
	return func(h *History) {
		if limit > 0 {
			h.limit = limit
		}
	}
}

func WithHistoryLogger(logger *slog.Logger) HistoryOption {
	return func(h *History) {
		h.logger = logger
	}
}

func NewHistory(client Lister, opts ...HistoryOption) (*History, error) {
	cache, err := lru.New[int64, []Row](historyCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create history cache: %w", err)
	}

	h := &History{
		api:      client,
		interval: DefaultHistoryInterval,
		limit:    DefaultHistoryLimit,
		logger:   slog.Default(),
		cache:    cache,
		panels:   make(map[int64]*panel),
	}

	for _, opt := range opts {
		opt(h)
	}

	h.logger = h.logger.With("module", "execution_history")

	return h, nil
}

// Expand fetches the history of a workflow and keeps refreshing it until
// Collapse or Close. A failed first fetch is returned and leaves the panel
// collapsed. Expanding an expanded panel returns its current rows.
func (h *History) Expand(ctx context.Context, workflowID int64) ([]Row, error) {
	h.mu.Lock()
	_, expanded := h.panels[workflowID]
	h.mu.Unlock()

	if expanded {
		return h.Rows(workflowID), nil
	}

	rows, err := h.fetch(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p := &panel{cancel: cancel, done: make(chan struct{})}

	h.mu.Lock()
	if _, raced := h.panels[workflowID]; raced {
		h.mu.Unlock()
		cancel()

		return h.Rows(workflowID), nil
	}

	h.panels[workflowID] = p
	h.mu.Unlock()

	go h.refresh(loopCtx, workflowID, p)

	return rows, nil
}

// Collapse stops the refresh loop of a panel and waits for it to exit.
func (h *History) Collapse(workflowID int64) {
	h.mu.Lock()
	p, ok := h.panels[workflowID]
	delete(h.panels, workflowID)
	h.mu.Unlock()

	if !ok {
		return
	}

	p.cancel()
	<-p.done
}

// Expanded reports whether the panel of a workflow is refreshing.
func (h *History) Expanded(workflowID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.panels[workflowID]

	return ok
}

// Rows returns the last rows fetched for a workflow.
func (h *History) Rows(workflowID int64) []Row {
	rows, ok := h.cache.Get(workflowID)
	if !ok {
		return nil
	}

	return slices.Clone(rows)
}

// Close collapses every panel.
func (h *History) Close() error {
	h.mu.Lock()
	ids := make([]int64, 0, len(h.panels))
	for id := range h.panels {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Collapse(id)
	}

	return nil
}

func (h *History) refresh(ctx context.Context, workflowID int64, p *panel) {
	defer close(p.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := h.fetch(ctx, workflowID); err != nil {
				if ctx.Err() != nil {
					return
				}

				h.logger.Warn("history refresh failed", "workflow_id", workflowID, "error", err)
			}
		}
	}
}

func (h *History) fetch(ctx context.Context, workflowID int64) ([]Row, error) {
	executions, err := h.api.ListExecutions(ctx, workflowID, h.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions of workflow %d: %w", workflowID, err)
	}

	rows := make([]Row, 0, len(executions))
	for _, e := range executions {
		rows = append(rows, RenderRow(e))
	}

	if ctx.Err() == nil {
		h.cache.Add(workflowID, rows)
	}

	return slices.Clone(rows), nil
}
