package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dukex/operion-studio/pkg/api"
	"github.com/dukex/operion-studio/pkg/eventbus"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/go-playground/validator/v10"
)

// DraftName is the name given to blank drafts.
const DraftName = "Untitled Workflow"

// WorkflowAPI is the subset of the collaborator contract the service depends on.
type WorkflowAPI interface {
	ListWorkflows(ctx context.Context) (*api.WorkflowList, error)
	CreateWorkflow(ctx context.Context, doc api.WorkflowDocument) (*models.Workflow, error)
	UpdateWorkflow(ctx context.Context, id int64, doc api.WorkflowDocument) (*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id int64) error
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, workflow models.Workflow) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, workflow models.Workflow) bool

func (f ConfirmFunc) Confirm(ctx context.Context, workflow models.Workflow) bool {
	return f(ctx, workflow)
}

// Workflow keeps the local workflow and template lists in sync with the
// collaborator. The local lists are only ever replaced by a reload.
type Workflow struct {
	api       WorkflowAPI
	validate  *validator.Validate
	logger    *slog.Logger
	publisher eventbus.EventPublisher

	mu        sync.RWMutex
	workflows []models.Workflow
	templates []models.Workflow
}

type WorkflowOption func(*Workflow)

// WithPublisher publishes workflow.saved and workflow.deleted events.
func WithPublisher(publisher eventbus.EventPublisher) WorkflowOption {
	return func(w *Workflow) {
		w.publisher = publisher
	}
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(client WorkflowAPI, logger *slog.Logger, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		api:       client,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.With("module", "workflow_service"),
		publisher: eventbus.Discard,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Reload replaces the local lists with the collaborator's.
func (w *Workflow) Reload(ctx context.Context) error {
	list, err := w.api.ListWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workflows: %w", err)
	}

	w.mu.Lock()
	w.workflows = list.Workflows
	w.templates = list.Templates
	w.mu.Unlock()

	return nil
}

// List reloads and returns the saved workflows.
func (w *Workflow) List(ctx context.Context) ([]models.Workflow, error) {
	if err := w.Reload(ctx); err != nil {
		return nil, err
	}

	return w.Workflows(), nil
}

// ListTemplates reloads and returns the templates.
func (w *Workflow) ListTemplates(ctx context.Context) ([]models.Workflow, error) {
	if err := w.Reload(ctx); err != nil {
		return nil, err
	}

	return w.Templates(), nil
}

// Workflows returns the workflows from the last reload.
func (w *Workflow) Workflows() []models.Workflow {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return slices.Clone(w.workflows)
}

// Templates returns the templates from the last reload.
func (w *Workflow) Templates() []models.Workflow {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return slices.Clone(w.templates)
}

// FetchByID looks a workflow up in the local list.
func (w *Workflow) FetchByID(id int64) (models.Workflow, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, wf := range w.workflows {
		if wf.ID == id {
			return wf, true
		}
	}

	return models.Workflow{}, false
}

// Create persists a draft and reloads the list.
func (w *Workflow) Create(ctx context.Context, draft *models.Workflow) (*models.Workflow, error) {
	if err := w.validateDraft("Create", draft); err != nil {
		return nil, err
	}

	created, err := w.api.CreateWorkflow(ctx, api.DocumentFrom(*draft))
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	w.afterMutation(ctx, created.ID)
	w.publish(ctx, created.ID, events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, created.ID),
		Name:      created.Name,
		Created:   true,
	})

	return created, nil
}

// Update replaces the stored workflow with the draft and reloads the list.
func (w *Workflow) Update(ctx context.Context, id int64, draft *models.Workflow) (*models.Workflow, error) {
	if id == 0 {
		return nil, NewValidationError("Update", "UNSAVED_WORKFLOW", "workflow has no id", ErrUnsavedWorkflow)
	}

	if err := w.validateDraft("Update", draft); err != nil {
		return nil, err
	}

	updated, err := w.api.UpdateWorkflow(ctx, id, api.DocumentFrom(*draft))
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow %d: %w", id, err)
	}

	w.afterMutation(ctx, updated.ID)
	w.publish(ctx, updated.ID, events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, updated.ID),
		Name:      updated.Name,
	})

	return updated, nil
}

// Save creates drafts and updates saved workflows.
func (w *Workflow) Save(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if workflow.IsDraft() {
		return w.Create(ctx, workflow)
	}

	return w.Update(ctx, workflow.ID, workflow)
}

// Delete removes a workflow once the confirmer agrees. There is no undo.
func (w *Workflow) Delete(ctx context.Context, id int64, confirmer Confirmer) error {
	target, ok := w.FetchByID(id)
	if !ok {
		target = models.Workflow{ID: id}
	}

	if confirmer == nil || !confirmer.Confirm(ctx, target) {
		return NewValidationError("Delete", "DELETE_NOT_CONFIRMED", "", ErrDeleteNotConfirmed)
	}

	if err := w.api.DeleteWorkflow(ctx, id); err != nil {
		return fmt.Errorf("failed to delete workflow %d: %w", id, err)
	}

	if !w.afterMutation(ctx, id) {
		w.forget(id)
	}

	w.publish(ctx, id, events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, id),
	})

	return nil
}

// UseTemplate returns a new draft copied from a template.
func (w *Workflow) UseTemplate(template models.Workflow) models.Workflow {
	return template.FromTemplate()
}

// NewDraft returns a blank draft.
func (w *Workflow) NewDraft() models.Workflow {
	return models.Workflow{
		Name: DraftName,
		Graph: models.Graph{
			Nodes: []models.Node{},
			Edges: []models.Edge{},
		},
		Tags:     []string{},
		IsActive: true,
	}
}

func (w *Workflow) validateDraft(op string, draft *models.Workflow) error {
	if draft == nil {
		return ErrWorkflowNil
	}

	err := w.validate.Struct(draft)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" "+fe.Tag())
			}

			return NewValidationError(op, "INVALID_DRAFT", "invalid fields: "+strings.Join(fields, ", "), ErrInvalidDraft)
		}

		return NewValidationError(op, "INVALID_DRAFT", "", fmt.Errorf("%w: %w", ErrInvalidDraft, err))
	}

	for _, problem := range graph.Validate(draft.Graph) {
		w.logger.Warn("graph problem", "workflow_id", draft.ID, "problem", problem.String())
	}

	return nil
}

// afterMutation reloads the list and reports whether it succeeded. A failed
// reload leaves the previous list in place; the mutation itself already
// succeeded.
func (w *Workflow) afterMutation(ctx context.Context, id int64) bool {
	if err := w.Reload(ctx); err != nil {
		w.logger.WarnContext(ctx, "failed to reload workflows after mutation", "workflow_id", id, "error", err)

		return false
	}

	return true
}

// forget drops a deleted workflow from the local lists.
func (w *Workflow) forget(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	match := func(wf models.Workflow) bool { return wf.ID == id }
	w.workflows = slices.DeleteFunc(slices.Clone(w.workflows), match)
	w.templates = slices.DeleteFunc(slices.Clone(w.templates), match)
}

func (w *Workflow) publish(ctx context.Context, id int64, event eventbus.Event) {
	if err := w.publisher.Publish(ctx, strconv.FormatInt(id, 10), event); err != nil {
		w.logger.ErrorContext(ctx, "failed to publish event", "workflow_id", id, "event_type", event.GetType(), "error", err)
	}
}
