package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/syncerr"
	"notevault-be/internal/reconcile"
	"notevault-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *capturingPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *capturingPublisher) types(t *testing.T) []string {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, raw := range p.payloads {
		var ev events.BaseEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		out = append(out, ev.Type)
	}
	return out
}

func runJob(t *testing.T, svc IJobService, run JobFunc) string {
	t.Helper()
	resp, err := svc.Submit("test-job", run)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Worker(ctx)

	deadline := time.After(2 * time.Second)
	for {
		status, ok := svc.Status(resp.JobId)
		require.True(t, ok)
		if status.State != JobStateRunning {
			return status.State
		}
		select {
		case <-deadline:
			t.Fatal("job did not finish")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestJobLifecycleSuccess(t *testing.T) {
	pub := &capturingPublisher{}
	svc := NewJobService(pub, time.Minute, logger.NewNopLogger())

	state := runJob(t, svc, func(ctx context.Context, progress reconcile.ProgressFunc) (int, error) {
		progress(reconcile.StageNotes, 1, 2)
		return 7, nil
	})
	assert.Equal(t, JobStateSuccess, state)

	types := pub.types(t)
	assert.Contains(t, types, EventSyncProgress)
	assert.Equal(t, EventSyncCompletion, types[len(types)-1])
}

func TestJobRejectionMapsToRejectedState(t *testing.T) {
	pub := &capturingPublisher{}
	svc := NewJobService(pub, time.Minute, logger.NewNopLogger())

	state := runJob(t, svc, func(ctx context.Context, progress reconcile.ProgressFunc) (int, error) {
		return 0, syncerr.Wrap(syncerr.ErrPasswordMismatch, "store password check")
	})
	assert.Equal(t, JobStateRejected, state)
}

func TestJobFailureMapsToErrorState(t *testing.T) {
	pub := &capturingPublisher{}
	svc := NewJobService(pub, time.Minute, logger.NewNopLogger())

	state := runJob(t, svc, func(ctx context.Context, progress reconcile.ProgressFunc) (int, error) {
		return 0, errors.New("disk on fire")
	})
	assert.Equal(t, JobStateError, state)
}

func TestJobStatusUnknownId(t *testing.T) {
	svc := NewJobService(nil, time.Minute, logger.NewNopLogger())
	_, ok := svc.Status(uuid.New())
	assert.False(t, ok)
}
