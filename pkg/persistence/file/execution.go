package file

import (
	"context"
	"slices"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence"
)

// SaveExecution saves an execution, assigning an id to new ones.
func (fp *Persistence) SaveExecution(_ context.Context, execution *models.Execution) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if execution.ID == 0 {
		id, err := fp.nextID(executionsDir)
		if err != nil {
			return err
		}

		execution.ID = id
	}

	if execution.Logs == nil {
		execution.Logs = []models.LogEntry{}
	}

	return fp.write(executionsDir, execution.ID, execution)
}

func (fp *Persistence) ExecutionByID(_ context.Context, id int64) (*models.Execution, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	var e models.Execution

	found, err := fp.read(executionsDir, id, &e)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewExecutionError("ExecutionByID", id, persistence.ErrExecutionNotFound)
	}

	return &e, nil
}

// ExecutionsByWorkflow returns the most recent executions of a workflow,
// newest first. A non-positive limit returns all of them.
func (fp *Persistence) ExecutionsByWorkflow(_ context.Context, workflowID int64, limit int) ([]models.Execution, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	ids, err := fp.ids(executionsDir)
	if err != nil {
		return nil, err
	}

	slices.Reverse(ids)

	executions := make([]models.Execution, 0)

	for _, id := range ids {
		if limit > 0 && len(executions) == limit {
			break
		}

		var e models.Execution

		found, err := fp.read(executionsDir, id, &e)
		if err != nil {
			return nil, err
		}

		if found && e.WorkflowID == workflowID {
			executions = append(executions, e)
		}
	}

	return executions, nil
}
