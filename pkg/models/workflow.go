// Package models defines the client-side domain models for workflow graphs and their executions.
package models

import "time"

// Workflow is a named, persisted graph of nodes and edges plus its metadata.
// An ID of zero marks an unsaved draft.
type Workflow struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"          validate:"required,min=1,max=200"`
	Description string    `json:"description"`
	Graph       Graph     `json:"workflow_data"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"          validate:"unique,dive,required"`
	IsActive    bool      `json:"is_active"`
	IsTemplate  bool      `json:"is_template,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsDraft reports whether the workflow has not been persisted yet.
func (w *Workflow) IsDraft() bool {
	return w.ID == 0
}

// CopySuffix is appended to the name of a workflow created from a template.
const CopySuffix = " (Copy)"

// FromTemplate returns a new draft built from a template. The copy never
// shares node or edge slices with the template.
func (w Workflow) FromTemplate() Workflow {
	draft := w
	draft.ID = 0
	draft.IsTemplate = false
	draft.Name = w.Name + CopySuffix
	draft.Graph = w.Graph.Clone()
	draft.Tags = append([]string(nil), w.Tags...)
	draft.CreatedAt = time.Time{}
	draft.UpdatedAt = time.Time{}

	return draft
}
