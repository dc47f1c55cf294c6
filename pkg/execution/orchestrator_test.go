package execution

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dukex/operion-studio/pkg/api"
	"github.com/dukex/operion-studio/pkg/eventbus"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pollResult struct {
	execution *models.Execution
	err       error
}

type fakeAPI struct {
	submitID  int64
	submitErr error

	mu        sync.Mutex
	responses []pollResult
	lists     [][]models.Execution
	listErr   error

	delay       time.Duration
	blockPolls  bool
	pollStarted chan struct{}
	pollCtxDone chan struct{}

	submits     atomic.Int32
	polls       atomic.Int32
	listCalls   atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeAPI) ExecuteWorkflow(_ context.Context, _ int64, _ map[string]any) (int64, error) {
	f.submits.Add(1)

	return f.submitID, f.submitErr
}

func (f *fakeAPI) GetExecution(ctx context.Context, id int64) (*models.Execution, error) {
	f.polls.Add(1)

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)

	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if f.blockPolls {
		f.pollStarted <- struct{}{}
		<-ctx.Done()
		close(f.pollCtxDone)

		return nil, &api.TransportError{Op: "get execution", Err: ctx.Err()}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}

	if next.execution != nil {
		e := *next.execution
		e.ID = id

		return &e, next.err
	}

	return nil, next.err
}

func (f *fakeAPI) ListExecutions(_ context.Context, _ int64, _ int) ([]models.Execution, error) {
	f.listCalls.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.lists) == 0 {
		return nil, f.listErr
	}

	next := f.lists[0]
	f.lists = f.lists[1:]

	return next, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (r *recordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return nil
}

func (r *recordingPublisher) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.GetType())
	}

	return types
}

func status(s models.ExecutionStatus, logs ...models.LogEntry) pollResult {
	return pollResult{execution: &models.Execution{Status: s, Logs: logs}}
}

func waitDone(t *testing.T, o *Orchestrator) {
	t.Helper()

	select {
	case <-o.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("run did not settle")
	}
}

func TestOrchestrator_RunUntilCompleted(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{
		submitID: 900,
		responses: []pollResult{
			status(models.ExecutionStatusRunning, models.LogEntry{Level: models.LogLevelInfo, Message: "partial"}),
			status(models.ExecutionStatusCompleted, models.LogEntry{Level: models.LogLevelSuccess, Message: "done"}),
		},
	}

	o := NewOrchestrator(fake, WithPollInterval(5*time.Millisecond))
	t.Cleanup(func() { _ = o.Close() })

	require.NoError(t, o.Run(t.Context(), 42, nil))
	waitDone(t, o)

	snap := o.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, int64(42), snap.WorkflowID)
	assert.Equal(t, int64(900), snap.ExecutionID)
	assert.Equal(t, models.ExecutionStatusCompleted, snap.Status)
	require.Len(t, snap.Logs, 1)
	assert.Equal(t, "done", snap.Logs[0].Message)
	assert.Equal(t, models.LogLevelSuccess, snap.Logs[0].Level)

	// No polling after a terminal status.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), fake.polls.Load())
}

func TestOrchestrator_FailedRunSurfacesError(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{
		submitID: 1,
		responses: []pollResult{{execution: &models.Execution{
			Status: models.ExecutionStatusFailed,
			Error:  "node ai-gpt4_1 timed out",
			Logs:   []models.LogEntry{{Level: models.LogLevelError, Message: "timeout"}},
		}}},
	}

	o := NewOrchestrator(fake, WithPollInterval(time.Millisecond))
	t.Cleanup(func() { _ = o.Close() })

	require.NoError(t, o.Run(t.Context(), 3, map[string]any{"x": 1}))
	waitDone(t, o)

	snap := o.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "node ai-gpt4_1 timed out", snap.Error)
	assert.Len(t, snap.Logs, 1)
}

func TestOrchestrator_UnsavedWorkflowIsRejectedLocally(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{}
	o := NewOrchestrator(fake)

	err := o.Run(t.Context(), 0, nil)
	require.ErrorIs(t, err, services.ErrUnsavedWorkflow)
	assert.True(t, services.IsValidationError(err))
	assert.Zero(t, fake.submits.Load())
	assert.Equal(t, StateIdle, o.Snapshot().State)
}

func TestOrchestrator_SubmitFailureDoesNotPoll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name:  "remote failure",
			err:   &api.RemoteFailure{Op: "execute workflow", Status: 422, Detail: "workflow is inactive"},
			check: api.IsRemoteFailure,
		},
		{
			name:  "transport",
			err:   &api.TransportError{Op: "execute workflow", Err: errors.New("connection refused")},
			check: api.IsTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeAPI{submitErr: tt.err}
			o := NewOrchestrator(fake, WithPollInterval(time.Millisecond))

			err := o.Run(t.Context(), 8, nil)
			require.Error(t, err)
			assert.True(t, tt.check(err))

			waitDone(t, o)
			assert.Equal(t, StateFailed, o.Snapshot().State)
			assert.Equal(t, tt.err.Error(), o.Snapshot().Error)

			time.Sleep(20 * time.Millisecond)
			assert.Zero(t, fake.polls.Load())
		})
	}
}

func TestOrchestrator_PollErrorAppendsSyntheticLog(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{
		submitID: 5,
		responses: []pollResult{
			status(models.ExecutionStatusRunning),
			{err: &api.TransportError{Op: "get execution", Err: errors.New("timeout")}},
			status(models.ExecutionStatusCompleted),
		},
	}

	o := NewOrchestrator(fake, WithPollInterval(time.Millisecond))
	t.Cleanup(func() { _ = o.Close() })

	require.NoError(t, o.Run(t.Context(), 1, nil))
	waitDone(t, o)

	snap := o.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	require.Len(t, snap.Logs, 1)
	assert.Equal(t, models.LogLevelError, snap.Logs[0].Level)
	assert.Contains(t, snap.Logs[0].Message, "Failed to poll execution status")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), fake.polls.Load())
}

func TestOrchestrator_AtMostOnePollInFlight(t *testing.T) {
	t.Parallel()

	responses := make([]pollResult, 0, 6)
	for range 5 {
		responses = append(responses, status(models.ExecutionStatusRunning))
	}

	responses = append(responses, status(models.ExecutionStatusCompleted))

	fake := &fakeAPI{submitID: 2, responses: responses, delay: 15 * time.Millisecond}

	o := NewOrchestrator(fake, WithPollInterval(time.Millisecond))
	t.Cleanup(func() { _ = o.Close() })

	require.NoError(t, o.Run(t.Context(), 1, nil))
	waitDone(t, o)

	assert.Equal(t, int32(1), fake.maxInFlight.Load())
	assert.Equal(t, int32(6), fake.polls.Load())
}

func TestOrchestrator_CloseCancelsPendingTimer(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{submitID: 2, responses: []pollResult{status(models.ExecutionStatusRunning)}}

	o := NewOrchestrator(fake, WithPollInterval(20*time.Millisecond))

	require.NoError(t, o.Run(t.Context(), 1, nil))
	require.NoError(t, o.Close())
	require.NoError(t, o.Close())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fake.polls.Load())
	assert.Equal(t, StateCanceled, o.Snapshot().State)
	waitDone(t, o)

	require.ErrorIs(t, o.Run(t.Context(), 1, nil), ErrClosed)
	assert.Equal(t, int32(1), fake.submits.Load())
}

func TestOrchestrator_CloseCancelsInFlightPoll(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{
		submitID:    2,
		blockPolls:  true,
		pollStarted: make(chan struct{}, 1),
		pollCtxDone: make(chan struct{}),
	}

	o := NewOrchestrator(fake, WithPollInterval(time.Millisecond))

	require.NoError(t, o.Run(t.Context(), 1, nil))

	select {
	case <-fake.pollStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("poll never started")
	}

	require.NoError(t, o.Close())

	select {
	case <-fake.pollCtxDone:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight poll was not cancelled")
	}

	time.Sleep(20 * time.Millisecond)

	snap := o.Snapshot()
	assert.Equal(t, StateCanceled, snap.State)
	assert.Empty(t, snap.Logs)
	assert.Equal(t, int32(1), fake.polls.Load())
}

func TestOrchestrator_RunInProgress(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{submitID: 2, responses: []pollResult{status(models.ExecutionStatusRunning)}}

	o := NewOrchestrator(fake, WithPollInterval(time.Hour))
	t.Cleanup(func() { _ = o.Close() })

	require.NoError(t, o.Run(t.Context(), 1, nil))

	err := o.Run(t.Context(), 1, nil)
	require.ErrorIs(t, err, services.ErrRunInProgress)
	assert.Equal(t, int32(1), fake.submits.Load())
	assert.Equal(t, StatePolling, o.Snapshot().State)
}

func TestOrchestrator_PublishesLifecycleEvents(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{
		submitID: 11,
		responses: []pollResult{
			status(models.ExecutionStatusRunning),
			status(models.ExecutionStatusRunning),
			status(models.ExecutionStatusCompleted),
		},
	}
	publisher := &recordingPublisher{}

	o := NewOrchestrator(fake, WithPollInterval(time.Millisecond), WithPublisher(publisher))
	t.Cleanup(func() { _ = o.Close() })

	require.NoError(t, o.Run(t.Context(), 6, nil))
	waitDone(t, o)

	expected := []events.EventType{
		events.ExecutionSubmittedEvent,
		events.ExecutionStatusChangedEvent,
		events.ExecutionStatusChangedEvent,
		events.ExecutionFinishedEvent,
	}

	require.Eventually(t, func() bool {
		return len(publisher.types()) == len(expected)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, expected, publisher.types())
}
