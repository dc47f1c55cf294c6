package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukex/operion-studio/pkg/api"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/moogar0880/problems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return api.NewClient(server.URL+"/", "secret-token")
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestClient_SendsBearerToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/workflows/node-types", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"node_types": map[string]any{
				"AI": []map[string]any{{"type": "ai-gpt4", "name": "GPT-4", "icon": "brain"}},
			},
		})
	})

	types, err := client.NodeTypes(t.Context())
	require.NoError(t, err)
	require.Len(t, types["AI"], 1)
	assert.Equal(t, "ai-gpt4", types["AI"][0].Type)
}

func TestClient_ListWorkflowsMarksTemplates(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"workflows": []map[string]any{{"id": 1, "name": "Mine"}},
			"templates": []map[string]any{{"id": 9, "name": "Email Digest"}},
		})
	})

	list, err := client.ListWorkflows(t.Context())
	require.NoError(t, err)
	require.Len(t, list.Workflows, 1)
	require.Len(t, list.Templates, 1)
	assert.False(t, list.Workflows[0].IsTemplate)
	assert.True(t, list.Templates[0].IsTemplate)
}

func TestClient_CreateWorkflowSendsDocument(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var doc api.WorkflowDocument
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		assert.Equal(t, "Digest", doc.Name)
		assert.Equal(t, []string{}, doc.Tags)
		require.Len(t, doc.WorkflowData.Nodes, 1)
		assert.Equal(t, "gpt-4", doc.WorkflowData.Nodes[0].Data.Config["model"])

		writeJSON(t, w, http.StatusCreated, map[string]any{
			"workflow": map[string]any{"id": 7, "name": doc.Name, "workflow_data": doc.WorkflowData},
		})
	})

	wf := models.Workflow{
		Name: "Digest",
		Graph: models.Graph{Nodes: []models.Node{{
			ID:   "ai-gpt4_1",
			Data: models.NodeData{NodeType: "ai-gpt4", Config: map[string]any{"model": "gpt-4"}},
		}}},
	}

	created, err := client.CreateWorkflow(t.Context(), api.DocumentFrom(wf))
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Len(t, created.Graph.Nodes, 1)
}

func TestClient_ExecuteWorkflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       any
		expectedID int64
		expectErr  func(t *testing.T, err error)
	}{
		{
			name:       "success",
			status:     http.StatusOK,
			body:       map[string]any{"success": true, "execution": map[string]any{"id": 99}},
			expectedID: 99,
		},
		{
			name:   "success false",
			status: http.StatusOK,
			body:   map[string]any{"success": false, "error": "workflow is inactive"},
			expectErr: func(t *testing.T, err error) {
				t.Helper()

				var rf *api.RemoteFailure
				require.ErrorAs(t, err, &rf)
				assert.Equal(t, "workflow is inactive", rf.Message())
			},
		},
		{
			name:   "missing execution id",
			status: http.StatusOK,
			body:   map[string]any{},
			expectErr: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, api.IsRemoteFailure(err))
			},
		},
		{
			name:   "problem document",
			status: http.StatusUnprocessableEntity,
			body:   problems.NewStatusProblem(422).WithDetail("trigger node required"),
			expectErr: func(t *testing.T, err error) {
				t.Helper()

				var rf *api.RemoteFailure
				require.ErrorAs(t, err, &rf)
				assert.Equal(t, 422, rf.Status)
				assert.Equal(t, "trigger node required", rf.Message())
			},
		},
		{
			name:   "legacy error body",
			status: http.StatusInternalServerError,
			body:   map[string]any{"error": "engine offline"},
			expectErr: func(t *testing.T, err error) {
				t.Helper()

				var rf *api.RemoteFailure
				require.ErrorAs(t, err, &rf)
				assert.Equal(t, "engine offline", rf.Message())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/workflows/42/execute", r.URL.Path)

				var req api.ExecuteRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.NotNil(t, req.InputData)

				writeJSON(t, w, tt.status, tt.body)
			})

			id, err := client.ExecuteWorkflow(t.Context(), 42, nil)
			if tt.expectErr != nil {
				require.Error(t, err)
				tt.expectErr(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, id)
		})
	}
}

func TestClient_GetExecution(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	completed := started.Add(3 * time.Second)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workflows/executions/5", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"execution": map[string]any{
			"id":           5,
			"workflow_id":  42,
			"status":       "completed",
			"started_at":   started,
			"completed_at": completed,
			"execution_logs": []map[string]any{
				{"level": "success", "message": "done", "timestamp": completed, "node_id": "ai-gpt4_1"},
			},
		}})
	})

	exec, err := client.GetExecution(t.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, exec.Status)
	require.Len(t, exec.Logs, 1)
	assert.Equal(t, models.LogLevelSuccess, exec.Logs[0].Level)

	d, ok := exec.Duration()
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)
}

func TestClient_ListExecutionsPassesLimit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workflows/3/executions", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeJSON(t, w, http.StatusOK, map[string]any{"executions": []map[string]any{
			{"id": 1, "status": "failed"},
			{"id": 2, "status": "running"},
		}})
	})

	execs, err := client.ListExecutions(t.Context(), 3, 10)
	require.NoError(t, err)
	assert.Len(t, execs, 2)
}

func TestClient_DeleteWorkflowNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.DeleteWorkflow(t.Context(), 12)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := api.NewClient(url, "")

	_, err := client.GetExecution(t.Context(), 1)
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))
	assert.False(t, api.IsRemoteFailure(err))
}

func TestClient_CancelledContextIsTransportError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.ListWorkflows(ctx)
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))
	assert.True(t, errors.Is(err, context.Canceled))
}
