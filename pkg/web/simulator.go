package web

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence"
)

// FailFlag makes the simulated run fail at the node whose config sets it to true.
const FailFlag = "fail"

// Simulator moves executions through a fixed progression. Start stores a
// pending execution; the first status read moves it to running and the second
// to a terminal status. It never interprets node configuration beyond FailFlag.
type Simulator struct {
	store persistence.Persistence
	now   func() time.Time

	mu    sync.Mutex
	reads map[int64]int
}

func NewSimulator(store persistence.Persistence) *Simulator {
	return &Simulator{
		store: store,
		now:   time.Now,
		reads: make(map[int64]int),
	}
}

// Start records a new pending execution of workflow.
func (s *Simulator) Start(ctx context.Context, workflow *models.Workflow) (*models.Execution, error) {
	execution := &models.Execution{
		WorkflowID: workflow.ID,
		Status:     models.ExecutionStatusPending,
		StartedAt:  s.now().UTC(),
		Logs:       []models.LogEntry{},
	}

	if err := s.store.SaveExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	return execution, nil
}

// Advance returns the execution after moving it one step forward.
func (s *Simulator) Advance(ctx context.Context, id int64) (*models.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	execution, err := s.store.ExecutionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution.Status.IsTerminal() {
		delete(s.reads, id)

		return execution, nil
	}

	s.reads[id]++

	if s.reads[id] == 1 {
		execution.Status = models.ExecutionStatusRunning
		execution.Logs = append(execution.Logs, s.entry(models.LogLevelInfo, "Execution started", ""))
	} else {
		s.finish(ctx, execution)
		delete(s.reads, id)
	}

	if err := s.store.SaveExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to save execution %d: %w", id, err)
	}

	return execution, nil
}

func (s *Simulator) finish(ctx context.Context, execution *models.Execution) {
	completed := s.now().UTC()
	execution.CompletedAt = &completed

	workflow, err := s.store.WorkflowByID(ctx, execution.WorkflowID)
	if err != nil {
		execution.Status = models.ExecutionStatusFailed
		execution.Error = "workflow no longer exists"
		execution.Logs = append(execution.Logs, s.entry(models.LogLevelError, execution.Error, ""))

		return
	}

	for _, node := range workflow.Graph.Nodes {
		if fail, _ := node.Data.Config[FailFlag].(bool); fail {
			execution.Status = models.ExecutionStatusFailed
			execution.Error = fmt.Sprintf("node %s failed", node.ID)
			execution.Logs = append(execution.Logs, s.entry(models.LogLevelError, "Failed "+label(node), node.ID))

			return
		}

		execution.Logs = append(execution.Logs, s.entry(models.LogLevelInfo, "Executed "+label(node), node.ID))
	}

	execution.Status = models.ExecutionStatusCompleted
	execution.Logs = append(execution.Logs, s.entry(models.LogLevelSuccess, "Workflow completed", ""))
}

func (s *Simulator) entry(level models.LogLevel, message, nodeID string) models.LogEntry {
	return models.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: s.now().UTC(),
		NodeID:    nodeID,
	}
}

func label(node models.Node) string {
	if node.Data.Label != "" {
		return node.Data.Label
	}

	return node.ID
}
