package mocks

import (
	"context"

	"github.com/dukex/operion-studio/pkg/api"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockWorkflowAPI is a mock implementation of services.WorkflowAPI interface.
type MockWorkflowAPI struct {
	mock.Mock
}

func (m *MockWorkflowAPI) ListWorkflows(ctx context.Context) (*api.WorkflowList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*api.WorkflowList), args.Error(1)
}

func (m *MockWorkflowAPI) CreateWorkflow(ctx context.Context, doc api.WorkflowDocument) (*models.Workflow, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowAPI) UpdateWorkflow(ctx context.Context, id int64, doc api.WorkflowDocument) (*models.Workflow, error) {
	args := m.Called(ctx, id, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowAPI) DeleteWorkflow(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockExecutionAPI is a mock implementation of execution.API interface.
type MockExecutionAPI struct {
	mock.Mock
}

func (m *MockExecutionAPI) ExecuteWorkflow(ctx context.Context, workflowID int64, input map[string]any) (int64, error) {
	args := m.Called(ctx, workflowID, input)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExecutionAPI) GetExecution(ctx context.Context, id int64) (*models.Execution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Execution), args.Error(1)
}

func (m *MockExecutionAPI) ListExecutions(ctx context.Context, workflowID int64, limit int) ([]models.Execution, error) {
	args := m.Called(ctx, workflowID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.Execution), args.Error(1)
}
