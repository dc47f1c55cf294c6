// Package editor implements the workflow editor view: the node palette, the
// canvas with its viewport, and the session tying them to persistence and
// execution tracking.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/operion-studio/pkg/execution"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
)

// DefaultCompactWidth is the viewport width below which the canvas is disabled.
const DefaultCompactWidth = 768

var (
	ErrReadOnly      = errors.New("canvas is read-only at this width")
	ErrNotMounted    = errors.New("editor not mounted")
	ErrNoWorkflow    = errors.New("no workflow open")
	ErrSessionClosed = errors.New("editor session closed")
)

// Workflows persists the edited workflow.
type Workflows interface {
	Save(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error)
	UseTemplate(template models.Workflow) models.Workflow
	NewDraft() models.Workflow
}

// Runner runs the saved workflow and reports its progress.
type Runner interface {
	Run(ctx context.Context, workflowID int64, input map[string]any) error
	Snapshot() execution.Snapshot
	Close() error
}

// Session is one open editor view. It owns its run tracker: closing the
// session stops any pending poll.
type Session struct {
	registry     *registry.Registry
	workflows    Workflows
	runner       Runner
	ids          *graph.IDGenerator
	compactWidth int
	logger       *slog.Logger

	mu       sync.Mutex
	palette  *Palette
	canvas   *Canvas
	workflow *models.Workflow
	opens    uint64
	edits    uint64
	compact  bool
	logPanel bool
	closed   bool
}

type SessionOption func(*Session)

func WithCompactWidth(width int) SessionOption {
	return func(s *Session) {
		if width > 0 {
			s.compactWidth = width
		}
	}
}

func WithIDGenerator(ids *graph.IDGenerator) SessionOption {
	return func(s *Session) {
		s.ids = ids
	}
}

func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

func NewSession(reg *registry.Registry, workflows Workflows, runner Runner, opts ...SessionOption) *Session {
	s := &Session{
		registry:     reg,
		workflows:    workflows,
		runner:       runner,
		ids:          graph.NewIDGenerator(),
		compactWidth: DefaultCompactWidth,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("module", "editor")

	return s
}

// Mount loads the node-type catalog and builds the palette.
func (s *Session) Mount(ctx context.Context) error {
	catalog, err := s.registry.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.palette = NewPalette(catalog)

	return nil
}

// Palette returns the palette built by Mount.
func (s *Session) Palette() (*Palette, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.palette == nil {
		return nil, ErrNotMounted
	}

	return s.palette, nil
}

// Open loads a workflow into the canvas.
func (s *Session) Open(workflow models.Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.openLocked(workflow)
}

// New opens a blank draft.
func (s *Session) New() {
	s.Open(s.workflows.NewDraft())
}

// UseTemplate opens a draft copied from a template.
func (s *Session) UseTemplate(template models.Workflow) {
	s.Open(s.workflows.UseTemplate(template))
}

// Workflow returns the open workflow with the current graph.
func (s *Session) Workflow() (models.Workflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.workflowLocked()
}

func (s *Session) workflowLocked() (models.Workflow, bool) {
	if s.workflow == nil {
		return models.Workflow{}, false
	}

	w := *s.workflow
	w.Graph = s.canvas.Graph()

	return w, true
}

// Resize switches the view in and out of compact mode. In compact mode only
// the execution log is shown and every canvas edit returns ErrReadOnly.
func (s *Session) Resize(width int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.compact = width < s.compactWidth
	if s.compact && s.canvas != nil {
		s.canvas.CancelConnection()
	}
}

func (s *Session) Compact() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.compact
}

// ToggleLogPanel shows or hides the execution log and returns the new state.
func (s *Session) ToggleLogPanel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logPanel = !s.logPanel

	return s.logPanel
}

func (s *Session) LogPanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logPanel
}

func (s *Session) Drop(payload DragPayload, p Point) (models.Node, error) {
	var node models.Node

	err := s.edit(func(c *Canvas) error {
		var err error

		node, err = c.Drop(payload, p)

		return err
	})

	return node, err
}

func (s *Session) StartConnection(sourceID string) error {
	return s.edit(func(c *Canvas) error {
		return c.StartConnection(sourceID)
	})
}

func (s *Session) FinishConnection(p Point) (models.Edge, bool, error) {
	var (
		edge      models.Edge
		connected bool
	)

	err := s.edit(func(c *Canvas) error {
		var err error

		edge, connected, err = c.FinishConnection(p)

		return err
	})

	return edge, connected, err
}

func (s *Session) MoveNode(id string, pos models.Position) error {
	return s.edit(func(c *Canvas) error {
		c.MoveNode(id, pos)

		return nil
	})
}

func (s *Session) RemoveNode(id string) error {
	return s.edit(func(c *Canvas) error {
		c.RemoveNode(id)

		return nil
	})
}

func (s *Session) RemoveEdge(id string) error {
	return s.edit(func(c *Canvas) error {
		c.RemoveEdge(id)

		return nil
	})
}

func (s *Session) UpdateConfig(id string, config map[string]any) error {
	return s.edit(func(c *Canvas) error {
		c.UpdateConfig(id, config)

		return nil
	})
}

func (s *Session) Pan(dx, dy float64) error {
	return s.edit(func(c *Canvas) error {
		c.Pan(dx, dy)

		return nil
	})
}

func (s *Session) ZoomAt(p Point, factor float64) error {
	return s.edit(func(c *Canvas) error {
		c.ZoomAt(p, factor)

		return nil
	})
}

// Save persists the open workflow. The saved copy returned by the backend
// replaces the open one and the viewport is kept. Canvas edits made while the
// request is in flight are kept; only the saved workflow's identity and
// metadata are taken in that case.
func (s *Session) Save(ctx context.Context) (*models.Workflow, error) {
	s.mu.Lock()
	current, ok := s.workflowLocked()
	opens, edits := s.opens, s.edits
	s.mu.Unlock()

	if !ok {
		return nil, ErrNoWorkflow
	}

	saved, err := s.workflows.Save(ctx, &current)
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.opens != opens {
		return saved, nil
	}

	w := *saved
	s.workflow = &w

	if s.edits == edits {
		s.canvas.SetGraph(saved.Graph.Clone())
	} else {
		s.logger.InfoContext(ctx, "keeping canvas edits made during save", "workflow_id", saved.ID)
	}

	s.logger.InfoContext(ctx, "workflow saved", "workflow_id", saved.ID)

	return saved, nil
}

// Run starts a run of the open workflow and opens the log panel.
func (s *Session) Run(ctx context.Context, input map[string]any) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return ErrSessionClosed
	}

	if s.workflow == nil {
		s.mu.Unlock()

		return ErrNoWorkflow
	}

	id := s.workflow.ID
	s.logPanel = true
	s.mu.Unlock()

	return s.runner.Run(ctx, id, input)
}

func (s *Session) Snapshot() execution.Snapshot {
	return s.runner.Snapshot()
}

// Close tears the view down and stops the run tracker. It is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	s.mu.Unlock()

	return s.runner.Close()
}

func (s *Session) openLocked(workflow models.Workflow) {
	w := workflow
	w.Graph = workflow.Graph.Clone()
	s.workflow = &w
	s.canvas = NewCanvas(w.Graph, s.ids)
	s.opens++

	if problems := graph.Validate(w.Graph); len(problems) > 0 {
		s.logger.Warn("opened workflow has graph problems", "workflow_id", w.ID, "problems", len(problems))
	}
}

func (s *Session) edit(fn func(c *Canvas) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return ErrSessionClosed
	case s.compact:
		return ErrReadOnly
	case s.canvas == nil:
		return ErrNoWorkflow
	}

	if err := fn(s.canvas); err != nil {
		return err
	}

	s.edits++

	return nil
}
