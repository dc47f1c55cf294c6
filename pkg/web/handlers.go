// Package web provides the HTTP handlers of the development backend, which
// serves the workflow, node-type and execution endpoints the studio consumes.
package web

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dukex/operion-studio/pkg/api"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	logger    *slog.Logger
	store     persistence.Persistence
	simulator *Simulator
	validator *validator.Validate
}

func NewAPIHandlers(
	logger *slog.Logger,
	store persistence.Persistence,
	simulator *Simulator,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		logger:    logger,
		store:     store,
		simulator: simulator,
		validator: validator,
	}
}

// Register mounts the handlers under router.
func (h *APIHandlers) Register(router fiber.Router) {
	w := router.Group("/api/workflows")
	w.Get("/", h.ListWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/node-types", h.NodeTypes)
	w.Get("/executions/:id", h.GetExecution)
	w.Put("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Post("/:id/execute", h.ExecuteWorkflow)
	w.Get("/:id/executions", h.ListExecutions)
}

// BearerAuth rejects requests without the expected bearer token. An empty
// token disables the check.
func BearerAuth(token string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != token {
			return unauthorized(c)
		}

		return c.Next()
	}
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	workflows, err := h.store.Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	templates, err := h.store.Templates(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(api.WorkflowList{Workflows: workflows, Templates: templates})
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	req, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	workflow := &models.Workflow{}
	apply(workflow, req)

	if err := h.store.SaveWorkflow(c.Context(), workflow); err != nil {
		return internalError(c, err)
	}

	h.logger.Info("Workflow created", "workflow_id", workflow.ID)

	return c.Status(fiber.StatusCreated).JSON(api.WorkflowResponse{Workflow: *workflow})
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid workflow ID")
	}

	req, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.store.WorkflowByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	apply(existing, req)

	if err := h.store.SaveWorkflow(c.Context(), existing); err != nil {
		return internalError(c, err)
	}

	return c.JSON(api.WorkflowResponse{Workflow: *existing})
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid workflow ID")
	}

	if err := h.store.DeleteWorkflow(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) NodeTypes(c fiber.Ctx) error {
	return c.JSON(api.NodeTypesResponse{NodeTypes: nodeTypes})
}

// ExecuteWorkflow starts a simulated run. Inactive workflows and templates
// are answered with success=false.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid workflow ID")
	}

	var req ExecuteRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, errInvalidJSON.Error())
		}
	}

	workflow, err := h.store.WorkflowByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	if reason := notRunnable(workflow); reason != "" {
		return c.JSON(api.ExecuteResponse{Success: boolPtr(false), Error: reason})
	}

	execution, err := h.simulator.Start(c.Context(), workflow)
	if err != nil {
		return internalError(c, err)
	}

	h.logger.Info("Execution started", "workflow_id", id, "execution_id", execution.ID, "inputs", len(req.InputData))

	return c.JSON(api.ExecuteResponse{
		Success:   boolPtr(true),
		Execution: &api.ExecutionHandle{ID: execution.ID},
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid execution ID")
	}

	execution, err := h.simulator.Advance(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(api.ExecutionResponse{Execution: *execution})
}

func (h *APIHandlers) ListExecutions(c fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid workflow ID")
	}

	limit := defaultExecutionsLimit

	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxExecutionsLimit {
			return badRequest(c, "limit must be between 1 and "+strconv.Itoa(maxExecutionsLimit))
		}
	}

	executions, err := h.store.ExecutionsByWorkflow(c.Context(), id, limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(api.ExecutionListResponse{Executions: executions})
}

// HealthCheck reports whether the store is reachable.
func (h *APIHandlers) HealthCheck(ctx context.Context) bool {
	return h.store.HealthCheck(ctx) == nil
}

func (h *APIHandlers) bindWorkflow(c fiber.Ctx) (*WorkflowRequest, error) {
	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, errInvalidJSON
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	if err := validateGraph(req.WorkflowData); err != nil {
		return nil, err
	}

	return &req, nil
}

func apply(workflow *models.Workflow, req *WorkflowRequest) {
	workflow.Name = req.Name
	workflow.Description = req.Description
	workflow.Graph = req.WorkflowData
	workflow.Category = req.Category
	workflow.Tags = req.Tags
	workflow.IsActive = req.IsActive

	if workflow.Graph.Nodes == nil {
		workflow.Graph.Nodes = []models.Node{}
	}

	if workflow.Graph.Edges == nil {
		workflow.Graph.Edges = []models.Edge{}
	}
}

func notRunnable(workflow *models.Workflow) string {
	switch {
	case workflow.IsTemplate:
		return "templates cannot be executed"
	case !workflow.IsActive:
		return "workflow is inactive"
	default:
		return ""
	}
}

func paramID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}

	return id, nil
}

func boolPtr(b bool) *bool {
	return &b
}
