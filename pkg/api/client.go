// Package api provides the HTTP client for the workflow, node-type, execution
// and execution-history endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/otelhelper"
	"github.com/moogar0880/problems"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// Client talks to the workflow backend. Every request carries the bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		tracer:     otel.Tracer("operion-studio/api"),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListWorkflows returns saved workflows and templates.
func (c *Client) ListWorkflows(ctx context.Context) (*WorkflowList, error) {
	var out WorkflowList

	err := c.do(ctx, "ListWorkflows", http.MethodGet, "/api/workflows", nil, &out)
	if err != nil {
		return nil, err
	}

	for i := range out.Templates {
		out.Templates[i].IsTemplate = true
	}

	return &out, nil
}

// CreateWorkflow persists a new workflow and returns it with its assigned id.
func (c *Client) CreateWorkflow(ctx context.Context, doc WorkflowDocument) (*models.Workflow, error) {
	var out WorkflowResponse

	err := c.do(ctx, "CreateWorkflow", http.MethodPost, "/api/workflows", doc, &out)
	if err != nil {
		return nil, err
	}

	return &out.Workflow, nil
}

// UpdateWorkflow replaces the document of an existing workflow.
func (c *Client) UpdateWorkflow(ctx context.Context, id int64, doc WorkflowDocument) (*models.Workflow, error) {
	var out WorkflowResponse

	attr := attribute.Int64(otelhelper.WorkflowIDKey, id)

	err := c.do(ctx, "UpdateWorkflow", http.MethodPut, "/api/workflows/"+formatID(id), doc, &out, attr)
	if err != nil {
		return nil, err
	}

	return &out.Workflow, nil
}

// DeleteWorkflow deletes a workflow.
func (c *Client) DeleteWorkflow(ctx context.Context, id int64) error {
	attr := attribute.Int64(otelhelper.WorkflowIDKey, id)

	return c.do(ctx, "DeleteWorkflow", http.MethodDelete, "/api/workflows/"+formatID(id), nil, nil, attr)
}

// NodeTypes returns the node-type catalog grouped by backend category.
func (c *Client) NodeTypes(ctx context.Context) (map[string][]models.NodeType, error) {
	var out NodeTypesResponse

	err := c.do(ctx, "NodeTypes", http.MethodGet, "/api/workflows/node-types", nil, &out)
	if err != nil {
		return nil, err
	}

	return out.NodeTypes, nil
}

// ExecuteWorkflow submits a run and returns the execution id.
func (c *Client) ExecuteWorkflow(ctx context.Context, workflowID int64, input map[string]any) (int64, error) {
	const op = "ExecuteWorkflow"

	if input == nil {
		input = map[string]any{}
	}

	var out ExecuteResponse

	attr := attribute.Int64(otelhelper.WorkflowIDKey, workflowID)

	err := c.do(ctx, op, http.MethodPost, "/api/workflows/"+formatID(workflowID)+"/execute", ExecuteRequest{InputData: input}, &out, attr)
	if err != nil {
		return 0, err
	}

	if out.Success != nil && !*out.Success {
		return 0, &RemoteFailure{Op: op, Title: "execution rejected", Detail: out.Error}
	}

	if out.Execution == nil || out.Execution.ID == 0 {
		detail := out.Error
		if detail == "" {
			detail = "response did not include an execution id"
		}

		return 0, &RemoteFailure{Op: op, Title: "execution rejected", Detail: detail}
	}

	return out.Execution.ID, nil
}

// GetExecution returns the current state of an execution.
func (c *Client) GetExecution(ctx context.Context, id int64) (*models.Execution, error) {
	var out ExecutionResponse

	attr := attribute.Int64(otelhelper.ExecutionIDKey, id)

	err := c.do(ctx, "GetExecution", http.MethodGet, "/api/workflows/executions/"+formatID(id), nil, &out, attr)
	if err != nil {
		return nil, err
	}

	return &out.Execution, nil
}

// ListExecutions returns up to limit past executions of a workflow.
func (c *Client) ListExecutions(ctx context.Context, workflowID int64, limit int) ([]models.Execution, error) {
	var out ExecutionListResponse

	attr := attribute.Int64(otelhelper.WorkflowIDKey, workflowID)
	path := "/api/workflows/" + formatID(workflowID) + "/executions?limit=" + strconv.Itoa(limit)

	err := c.do(ctx, "ListExecutions", http.MethodGet, path, nil, &out, attr)
	if err != nil {
		return nil, err
	}

	return out.Executions, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any, attrs ...attribute.KeyValue) error {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "api."+op,
		append(attrs, attribute.String("http.method", method))...)
	defer span.End()

	err := c.roundTrip(ctx, op, method, path, body, out)
	if err != nil {
		otelhelper.SetError(span, err)
		c.logger.DebugContext(ctx, "Request failed", "op", op, "method", method, "path", path, "error", err)
	}

	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "Failed to close response body", "error", cerr)
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeFailure(op, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &TransportError{Op: op, Err: ctx.Err()}
		}

		return &RemoteFailure{Op: op, Status: resp.StatusCode, Title: "invalid response", Detail: err.Error()}
	}

	return nil
}

// decodeFailure turns an error response into a RemoteFailure. Problem
// documents and legacy {"error": "..."} bodies are both understood.
func decodeFailure(op string, resp *http.Response) error {
	failure := &RemoteFailure{Op: op, Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return failure
	}

	var problem problems.Problem
	if json.Unmarshal(data, &problem) == nil && (problem.Title != "" || problem.Detail != "") {
		if problem.Title != "" {
			failure.Title = problem.Title
		}

		failure.Detail = problem.Detail

		return failure
	}

	var legacy legacyError
	if json.Unmarshal(data, &legacy) == nil && legacy.Error != "" {
		failure.Detail = legacy.Error

		return failure
	}

	failure.Detail = strings.TrimSpace(string(data))

	return failure
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
