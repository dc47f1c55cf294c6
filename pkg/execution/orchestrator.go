// Package execution tracks workflow runs on the client side: submitting a run,
// polling it until it settles and rendering the execution history.
package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/dukex/operion-studio/pkg/eventbus"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/services"
)

const DefaultPollInterval = time.Second

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("orchestrator closed")

// API is the execution part of the collaborator contract.
type API interface {
	ExecuteWorkflow(ctx context.Context, workflowID int64, input map[string]any) (int64, error)
	GetExecution(ctx context.Context, id int64) (*models.Execution, error)
	ListExecutions(ctx context.Context, workflowID int64, limit int) ([]models.Execution, error)
}

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateCanceled   State = "canceled"
)

// IsActive reports whether a run is being submitted or polled.
func (s State) IsActive() bool {
	return s == StateSubmitting || s == StatePolling
}

// Snapshot is a copy of the orchestrator's view of the current run.
type Snapshot struct {
	State       State
	WorkflowID  int64
	ExecutionID int64
	Status      models.ExecutionStatus
	Logs        []models.LogEntry
	Error       string
}

// Orchestrator runs one workflow execution at a time and polls it until it
// settles. The next poll is armed only after the previous response has been
// processed, so at most one status request is in flight.
type Orchestrator struct {
	api       API
	interval  time.Duration
	logger    *slog.Logger
	publisher eventbus.EventPublisher
	now       func() time.Time

	mu         sync.Mutex
	snap       Snapshot
	timer      *time.Timer
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	closed     bool
}

type Option func(*Orchestrator)

func WithPollInterval(interval time.Duration) Option {
	return func(o *Orchestrator) {
		if interval > 0 {
			o.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(o *Orchestrator) {
		o.publisher = publisher
	}
}

func NewOrchestrator(client API, opts ...Option) *Orchestrator {
	done := make(chan struct{})
	close(done)

	o := &Orchestrator{
		api:       client,
		interval:  DefaultPollInterval,
		logger:    slog.Default(),
		publisher: eventbus.Discard,
		now:       time.Now,
		snap:      Snapshot{State: StateIdle},
		done:      done,
	}

	for _, opt := range opts {
		opt(o)
	}

	o.logger = o.logger.With("module", "execution_orchestrator")

	return o
}

// Run submits a run of a saved workflow and starts polling it. Submission is
// synchronous: its failure is returned and no polling starts.
func (o *Orchestrator) Run(ctx context.Context, workflowID int64, input map[string]any) error {
	if workflowID == 0 {
		return services.NewValidationError("Run", "UNSAVED_WORKFLOW", "save the workflow before running it", services.ErrUnsavedWorkflow)
	}

	o.mu.Lock()

	if o.closed {
		o.mu.Unlock()

		return ErrClosed
	}

	if o.snap.State.IsActive() {
		o.mu.Unlock()

		return services.NewValidationError("Run", "RUN_IN_PROGRESS", "", services.ErrRunInProgress)
	}

	o.generation++
	gen := o.generation
	o.snap = Snapshot{State: StateSubmitting, WorkflowID: workflowID, Logs: []models.LogEntry{}}
	o.done = make(chan struct{})

	reqCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	defer cancel()

	if input == nil {
		input = map[string]any{}
	}

	o.logger.InfoContext(ctx, "submitting run", "workflow_id", workflowID)

	executionID, err := o.api.ExecuteWorkflow(reqCtx, workflowID, input)

	o.mu.Lock()

	if gen != o.generation {
		o.mu.Unlock()

		return ErrClosed
	}

	o.cancel = nil

	if err != nil {
		o.snap.State = StateFailed
		o.snap.Error = err.Error()
		finished := o.finishLocked()
		o.mu.Unlock()

		o.logger.ErrorContext(ctx, "run submission failed", "workflow_id", workflowID, "error", err)
		o.publish(ctx, workflowID, finished)

		return fmt.Errorf("failed to submit run: %w", err)
	}

	o.snap.State = StatePolling
	o.snap.ExecutionID = executionID
	o.snap.Status = models.ExecutionStatusPending
	o.mu.Unlock()

	o.publish(ctx, workflowID, events.ExecutionSubmitted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionSubmittedEvent, workflowID),
		ExecutionID: executionID,
	})

	o.mu.Lock()
	if gen == o.generation && o.snap.State == StatePolling {
		o.armLocked(gen)
	}
	o.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the current run state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := o.snap
	snap.Logs = slices.Clone(o.snap.Logs)

	return snap
}

// Done returns a channel closed when the current run settles. Before the
// first run it is already closed.
func (o *Orchestrator) Done() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.done
}

// Close stops the pending poll timer, cancels an in-flight request and
// discards its result. No request is issued after Close returns. Close is
// idempotent.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}

	o.closed = true
	o.generation++

	o.stopTimerLocked()

	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}

	if o.snap.State.IsActive() {
		o.snap.State = StateCanceled
		close(o.done)
	}

	return nil
}

func (o *Orchestrator) armLocked(gen uint64) {
	o.stopTimerLocked()
	o.timer = time.AfterFunc(o.interval, func() {
		o.poll(gen)
	})
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Orchestrator) poll(gen uint64) {
	o.mu.Lock()

	if gen != o.generation || o.snap.State != StatePolling {
		o.mu.Unlock()

		return
	}

	o.timer = nil
	executionID := o.snap.ExecutionID
	workflowID := o.snap.WorkflowID
	previous := o.snap.Status

	reqCtx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.mu.Unlock()

	execution, err := o.api.GetExecution(reqCtx, executionID)

	cancel()

	o.mu.Lock()

	if gen != o.generation {
		o.mu.Unlock()

		return
	}

	o.cancel = nil

	if err != nil {
		o.snap.Logs = append(o.snap.Logs, models.LogEntry{
			Level:     models.LogLevelError,
			Message:   "Failed to poll execution status: " + err.Error(),
			Timestamp: o.now().UTC(),
		})
		o.snap.State = StateFailed
		o.snap.Status = models.ExecutionStatusFailed
		o.snap.Error = err.Error()
		finished := o.finishLocked()
		o.mu.Unlock()

		o.logger.Error("polling failed", "execution_id", executionID, "error", err)
		o.publish(context.Background(), workflowID, finished)

		return
	}

	o.snap.Status = execution.Status

	var changed eventbus.Event
	if execution.Status != previous {
		changed = events.ExecutionStatusChanged{
			BaseEvent:   events.NewBaseEvent(events.ExecutionStatusChangedEvent, workflowID),
			ExecutionID: executionID,
			Status:      execution.Status,
		}
	}

	if !execution.Status.IsTerminal() {
		o.armLocked(gen)
		o.mu.Unlock()

		if changed != nil {
			o.publish(context.Background(), workflowID, changed)
		}

		return
	}

	o.snap.Logs = slices.Clone(execution.Logs)
	if o.snap.Logs == nil {
		o.snap.Logs = []models.LogEntry{}
	}

	o.snap.Error = execution.Error
	o.snap.State = stateFor(execution.Status)
	finished := o.finishLocked()
	o.mu.Unlock()

	o.logger.Info("run settled", "execution_id", executionID, "status", execution.Status)

	if changed != nil {
		o.publish(context.Background(), workflowID, changed)
	}

	o.publish(context.Background(), workflowID, finished)
}

// finishLocked ends the current run and returns the event describing it.
func (o *Orchestrator) finishLocked() eventbus.Event {
	o.stopTimerLocked()
	close(o.done)

	return events.ExecutionFinished{
		BaseEvent:   events.NewBaseEvent(events.ExecutionFinishedEvent, o.snap.WorkflowID),
		ExecutionID: o.snap.ExecutionID,
		Status:      o.snap.Status,
		Logs:        slices.Clone(o.snap.Logs),
		Error:       o.snap.Error,
	}
}

func (o *Orchestrator) publish(ctx context.Context, workflowID int64, event eventbus.Event) {
	if err := o.publisher.Publish(ctx, strconv.FormatInt(workflowID, 10), event); err != nil {
		o.logger.ErrorContext(ctx, "failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func stateFor(status models.ExecutionStatus) State {
	switch status {
	case models.ExecutionStatusCompleted:
		return StateCompleted
	case models.ExecutionStatusCanceled:
		return StateCanceled
	default:
		return StateFailed
	}
}
