package services_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/dukex/operion-studio/pkg/api"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/mocks"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, opts ...services.WorkflowOption) (*services.Workflow, *mocks.MockWorkflowAPI) {
	t.Helper()

	client := &mocks.MockWorkflowAPI{}
	t.Cleanup(func() { client.AssertExpectations(t) })

	return services.NewWorkflow(client, slog.Default(), opts...), client
}

func TestWorkflow_ListStoresBothLists(t *testing.T) {
	t.Parallel()

	service, client := newService(t)

	client.On("ListWorkflows", mock.Anything).Return(&api.WorkflowList{
		Workflows: []models.Workflow{{ID: 1, Name: "Lead Scoring"}},
		Templates: []models.Workflow{{ID: 9, Name: "Email Digest", IsTemplate: true}},
	}, nil).Once()

	workflows, err := service.List(t.Context())
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "Lead Scoring", workflows[0].Name)

	templates := service.Templates()
	require.Len(t, templates, 1)
	assert.True(t, templates[0].IsTemplate)
}

func TestWorkflow_SaveDispatch(t *testing.T) {
	t.Parallel()

	t.Run("draft is created", func(t *testing.T) {
		t.Parallel()

		service, client := newService(t)
		draft := service.NewDraft()

		client.On("CreateWorkflow", mock.Anything, api.DocumentFrom(draft)).
			Return(&models.Workflow{ID: 5, Name: draft.Name}, nil).Once()
		client.On("ListWorkflows", mock.Anything).
			Return(&api.WorkflowList{Workflows: []models.Workflow{{ID: 5, Name: draft.Name}}}, nil).Once()

		saved, err := service.Save(t.Context(), &draft)
		require.NoError(t, err)
		assert.Equal(t, int64(5), saved.ID)
		assert.Len(t, service.Workflows(), 1)
	})

	t.Run("saved workflow is updated", func(t *testing.T) {
		t.Parallel()

		service, client := newService(t)
		wf := models.Workflow{ID: 7, Name: "Nightly"}

		client.On("UpdateWorkflow", mock.Anything, int64(7), mock.AnythingOfType("api.WorkflowDocument")).
			Return(&models.Workflow{ID: 7, Name: "Nightly"}, nil).Once()
		client.On("ListWorkflows", mock.Anything).Return(&api.WorkflowList{}, nil).Once()

		saved, err := service.Save(t.Context(), &wf)
		require.NoError(t, err)
		assert.Equal(t, int64(7), saved.ID)
	})
}

func TestWorkflow_CreateRejectsInvalidDraft(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draft models.Workflow
	}{
		{name: "empty name", draft: models.Workflow{}},
		{name: "duplicate tags", draft: models.Workflow{Name: "x", Tags: []string{"a", "a"}}},
		{name: "empty tag", draft: models.Workflow{Name: "x", Tags: []string{""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service, _ := newService(t)

			_, err := service.Create(t.Context(), &tt.draft)
			require.ErrorIs(t, err, services.ErrInvalidDraft)
			assert.True(t, services.IsValidationError(err))
		})
	}
}

func TestWorkflow_UpdateWithoutIDIsRejected(t *testing.T) {
	t.Parallel()

	service, _ := newService(t)

	_, err := service.Update(t.Context(), 0, &models.Workflow{Name: "x"})
	require.ErrorIs(t, err, services.ErrUnsavedWorkflow)
}

func TestWorkflow_ReloadFailureKeepsMutationResult(t *testing.T) {
	t.Parallel()

	service, client := newService(t)
	draft := models.Workflow{Name: "Webhook to Slack"}

	client.On("CreateWorkflow", mock.Anything, mock.Anything).Return(&models.Workflow{ID: 3, Name: draft.Name}, nil).Once()
	client.On("ListWorkflows", mock.Anything).Return(nil, &api.TransportError{Op: "list workflows", Err: errors.New("reset")}).Once()

	created, err := service.Create(t.Context(), &draft)
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
}

func TestWorkflow_CreateFailureSurfacesRemoteError(t *testing.T) {
	t.Parallel()

	service, client := newService(t)

	client.On("CreateWorkflow", mock.Anything, mock.Anything).
		Return(nil, &api.RemoteFailure{Op: "create workflow", Status: 422, Detail: "name taken"}).Once()

	_, err := service.Create(t.Context(), &models.Workflow{Name: "dup"})
	require.Error(t, err)
	assert.True(t, api.IsRemoteFailure(err))
	client.AssertNotCalled(t, "ListWorkflows", mock.Anything)
}

func TestWorkflow_DeleteWithoutConfirmSendsNoRequest(t *testing.T) {
	t.Parallel()

	service, client := newService(t)

	client.On("ListWorkflows", mock.Anything).Return(&api.WorkflowList{
		Workflows: []models.Workflow{{ID: 4, Name: "Keep me"}},
	}, nil).Once()
	require.NoError(t, service.Reload(t.Context()))

	var asked models.Workflow

	decline := services.ConfirmFunc(func(_ context.Context, wf models.Workflow) bool {
		asked = wf

		return false
	})

	err := service.Delete(t.Context(), 4, decline)
	require.ErrorIs(t, err, services.ErrDeleteNotConfirmed)
	assert.Equal(t, "Keep me", asked.Name)

	client.AssertNotCalled(t, "DeleteWorkflow", mock.Anything, mock.Anything)
	require.Len(t, service.Workflows(), 1)
	assert.Equal(t, int64(4), service.Workflows()[0].ID)

	require.ErrorIs(t, service.Delete(t.Context(), 4, nil), services.ErrDeleteNotConfirmed)
}

func TestWorkflow_DeleteConfirmedReloads(t *testing.T) {
	t.Parallel()

	bus := &mocks.MockEventBus{}
	service, client := newService(t, services.WithPublisher(bus))

	client.On("DeleteWorkflow", mock.Anything, int64(4)).Return(nil).Once()
	client.On("ListWorkflows", mock.Anything).Return(&api.WorkflowList{}, nil).Once()
	bus.On("Publish", mock.Anything, "4", mock.MatchedBy(func(e events.WorkflowDeleted) bool {
		return e.WorkflowID == 4
	})).Return(nil).Once()

	accept := services.ConfirmFunc(func(context.Context, models.Workflow) bool { return true })

	require.NoError(t, service.Delete(t.Context(), 4, accept))
	assert.Empty(t, service.Workflows())
	bus.AssertExpectations(t)
}

func TestWorkflow_DeleteDropsWorkflowWhenReloadFails(t *testing.T) {
	t.Parallel()

	service, client := newService(t)

	client.On("ListWorkflows", mock.Anything).Return(&api.WorkflowList{
		Workflows: []models.Workflow{{ID: 5, Name: "Old Report"}, {ID: 6, Name: "Keep Me"}},
	}, nil).Once()
	client.On("DeleteWorkflow", mock.Anything, int64(5)).Return(nil).Once()
	client.On("ListWorkflows", mock.Anything).
		Return(nil, &api.TransportError{Op: "ListWorkflows", Err: errors.New("connection reset")}).Once()

	_, err := service.List(t.Context())
	require.NoError(t, err)

	accept := services.ConfirmFunc(func(context.Context, models.Workflow) bool { return true })

	require.NoError(t, service.Delete(t.Context(), 5, accept))

	_, found := service.FetchByID(5)
	assert.False(t, found)
	require.Len(t, service.Workflows(), 1)
	assert.Equal(t, int64(6), service.Workflows()[0].ID)
}

func TestWorkflow_UseTemplate(t *testing.T) {
	t.Parallel()

	service, _ := newService(t)

	template := models.Workflow{
		ID:         12,
		Name:       "Email Digest",
		IsTemplate: true,
		Graph: models.Graph{
			Nodes: []models.Node{{ID: "trigger-schedule_1", Data: models.NodeData{NodeType: "trigger-schedule"}}},
		},
	}

	draft := service.UseTemplate(template)

	assert.Equal(t, int64(0), draft.ID)
	assert.False(t, draft.IsTemplate)
	assert.Equal(t, "Email Digest (Copy)", draft.Name)
	assert.True(t, draft.IsDraft())

	draft.Graph.Nodes[0].ID = "changed"
	assert.Equal(t, "trigger-schedule_1", template.Graph.Nodes[0].ID)
}

func TestWorkflow_NewDraft(t *testing.T) {
	t.Parallel()

	service, _ := newService(t)
	draft := service.NewDraft()

	assert.True(t, draft.IsDraft())
	assert.Equal(t, services.DraftName, draft.Name)
	assert.NotNil(t, draft.Graph.Nodes)
	assert.NotNil(t, draft.Graph.Edges)
}
