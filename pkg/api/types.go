package api

import (
	"github.com/dukex/operion-studio/pkg/models"
)

// WorkflowDocument is the body of create and update requests.
type WorkflowDocument struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	WorkflowData models.Graph `json:"workflow_data"`
	Category     string       `json:"category"`
	Tags         []string     `json:"tags"`
	IsActive     bool         `json:"is_active"`
}

// DocumentFrom converts a workflow into its persisted document.
func DocumentFrom(w models.Workflow) WorkflowDocument {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}

	data := w.Graph.Clone()

	return WorkflowDocument{
		Name:         w.Name,
		Description:  w.Description,
		WorkflowData: data,
		Category:     w.Category,
		Tags:         tags,
		IsActive:     w.IsActive,
	}
}

// WorkflowList is the result of listing workflows.
type WorkflowList struct {
	Workflows []models.Workflow `json:"workflows"`
	Templates []models.Workflow `json:"templates"`
}

// ExecuteRequest is the body of a run submission.
type ExecuteRequest struct {
	InputData map[string]any `json:"input_data"`
}

// ExecuteResponse is the answer to a run submission.
type ExecuteResponse struct {
	Success   *bool            `json:"success,omitempty"`
	Execution *ExecutionHandle `json:"execution,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ExecutionHandle identifies a submitted run.
type ExecutionHandle struct {
	ID int64 `json:"id"`
}

// WorkflowResponse wraps a single workflow.
type WorkflowResponse struct {
	Workflow models.Workflow `json:"workflow"`
}

// NodeTypesResponse is the node-type catalog grouped by backend category.
type NodeTypesResponse struct {
	NodeTypes map[string][]models.NodeType `json:"node_types"`
}

// ExecutionResponse wraps a single execution.
type ExecutionResponse struct {
	Execution models.Execution `json:"execution"`
}

// ExecutionListResponse wraps execution history.
type ExecutionListResponse struct {
	Executions []models.Execution `json:"executions"`
}

// legacyError is the pre-problem+json failure body.
type legacyError struct {
	Error string `json:"error"`
}
