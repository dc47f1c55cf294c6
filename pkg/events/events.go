// Package events defines the lifecycle events published by the studio clients.
package events

import (
	"time"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every studio lifecycle event.
const Topic = "operion.studio.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Workflow persistence events.
	WorkflowSavedEvent   EventType = "workflow.saved"
	WorkflowDeletedEvent EventType = "workflow.deleted"

	// Execution tracking events.
	ExecutionSubmittedEvent     EventType = "execution.submitted"
	ExecutionStatusChangedEvent EventType = "execution.status_changed"
	ExecutionFinishedEvent      EventType = "execution.finished"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID int64     `json:"workflow_id"`
}

func NewBaseEvent(eventType EventType, workflowID int64) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

type WorkflowSaved struct {
	BaseEvent

	Name    string `json:"name"`
	Created bool   `json:"created"`
}

func (w WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

type ExecutionSubmitted struct {
	BaseEvent

	ExecutionID int64 `json:"execution_id"`
}

func (e ExecutionSubmitted) GetType() EventType {
	return ExecutionSubmittedEvent
}

// ExecutionStatusChanged is published for every poll that reports a status
// different from the previous one.
type ExecutionStatusChanged struct {
	BaseEvent

	ExecutionID int64                  `json:"execution_id"`
	Status      models.ExecutionStatus `json:"status"`
}

func (e ExecutionStatusChanged) GetType() EventType {
	return ExecutionStatusChangedEvent
}

// ExecutionFinished is published once per run, when it reaches a terminal
// state or fails locally.
type ExecutionFinished struct {
	BaseEvent

	ExecutionID int64                  `json:"execution_id"`
	Status      models.ExecutionStatus `json:"status"`
	Logs        []models.LogEntry      `json:"logs"`
	Error       string                 `json:"error,omitempty"`
}

func (e ExecutionFinished) GetType() EventType {
	return ExecutionFinishedEvent
}
