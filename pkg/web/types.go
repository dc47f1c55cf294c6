package web

import "github.com/dukex/operion-studio/pkg/models"

// WorkflowRequest is the body of create and update requests.
type WorkflowRequest struct {
	Name         string       `json:"name"          validate:"required,min=1,max=200"`
	Description  string       `json:"description"`
	WorkflowData models.Graph `json:"workflow_data"`
	Category     string       `json:"category"`
	Tags         []string     `json:"tags"          validate:"unique,dive,required"`
	IsActive     bool         `json:"is_active"`
}

// ExecuteRequest is the body of an execute request.
type ExecuteRequest struct {
	InputData map[string]any `json:"input_data"`
}

const (
	defaultExecutionsLimit = 20
	maxExecutionsLimit     = 100
)
