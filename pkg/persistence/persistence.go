// Package persistence provides the storage layer of the development backend.
package persistence

import (
	"context"

	"github.com/dukex/operion-studio/pkg/models"
)

type Persistence interface {
	// Workflows returns the saved workflows, templates excluded.
	Workflows(ctx context.Context) ([]models.Workflow, error)
	Templates(ctx context.Context) ([]models.Workflow, error)
	WorkflowByID(ctx context.Context, id int64) (*models.Workflow, error)
	// SaveWorkflow assigns an id to workflows without one and stamps timestamps.
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id int64) error

	SaveExecution(ctx context.Context, execution *models.Execution) error
	ExecutionByID(ctx context.Context, id int64) (*models.Execution, error)
	// ExecutionsByWorkflow returns at most limit executions, newest first.
	ExecutionsByWorkflow(ctx context.Context, workflowID int64, limit int) ([]models.Execution, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
