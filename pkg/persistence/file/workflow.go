package file

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence"
)

// Workflows returns the saved workflows ordered by id.
func (fp *Persistence) Workflows(_ context.Context) ([]models.Workflow, error) {
	return fp.listWorkflows(false)
}

// Templates returns the stored templates ordered by id.
func (fp *Persistence) Templates(_ context.Context) ([]models.Workflow, error) {
	return fp.listWorkflows(true)
}

func (fp *Persistence) listWorkflows(templates bool) ([]models.Workflow, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	ids, err := fp.ids(workflowsDir)
	if err != nil {
		return nil, err
	}

	workflows := make([]models.Workflow, 0, len(ids))

	for _, id := range ids {
		var w models.Workflow

		found, err := fp.read(workflowsDir, id, &w)
		if err != nil {
			return nil, err
		}

		if found && w.IsTemplate == templates {
			workflows = append(workflows, w)
		}
	}

	return workflows, nil
}

// WorkflowByID retrieves a workflow or template by its id.
func (fp *Persistence) WorkflowByID(_ context.Context, id int64) (*models.Workflow, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	var w models.Workflow

	found, err := fp.read(workflowsDir, id, &w)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
	}

	return &w, nil
}

// SaveWorkflow saves a workflow to the file system.
func (fp *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if workflow.ID == 0 {
		id, err := fp.nextID(workflowsDir)
		if err != nil {
			return err
		}

		workflow.ID = id
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.Tags == nil {
		workflow.Tags = []string{}
	}

	return fp.write(workflowsDir, workflow.ID, workflow)
}

// DeleteWorkflow removes a workflow by its id.
func (fp *Persistence) DeleteWorkflow(_ context.Context, id int64) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	err := os.Remove(fp.path(workflowsDir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
		}

		return fmt.Errorf("failed to delete workflow %d: %w", id, err)
	}

	return nil
}
