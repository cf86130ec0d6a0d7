package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staleOrderRepoStub struct {
	affected   int64
	err        error
	calls      int
	lastCutoff time.Time
}

func (s *staleOrderRepoStub) FailStalePending(_ context.Context, cutoff time.Time) (int64, error) {
	s.calls++
	s.lastCutoff = cutoff
	return s.affected, s.err
}

func newTestJob(repo staleOrderRepository) *PendingOrderExpiryJob {
	job := NewPendingOrderExpiryJob(repo, 24*time.Hour, time.Millisecond)
	job.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }
	return job
}

func TestProcessStaleOrders_UsesTTLCutoff(t *testing.T) {
	repo := &staleOrderRepoStub{affected: 2}
	job := newTestJob(repo)

	job.processStaleOrders(context.Background())
	require.Equal(t, 1, repo.calls)
	require.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), repo.lastCutoff)
}

func TestProcessStaleOrders_ErrorIsLogged(t *testing.T) {
	repo := &staleOrderRepoStub{err: errors.New("db down")}
	job := newTestJob(repo)

	job.processStaleOrders(context.Background())
	require.Equal(t, 1, repo.calls)
}

func TestStartStop_StopsByContext(t *testing.T) {
	job := newTestJob(&staleOrderRepoStub{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on context cancel")
	}
}

func TestStartStop_StopsByStopChannel(t *testing.T) {
	job := newTestJob(&staleOrderRepoStub{})

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()
	job.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("job did not stop on Stop()")
	}
}

func TestStart_RunsOnTick(t *testing.T) {
	repo := &staleOrderRepoStub{}
	job := newTestJob(repo)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	job.Start(ctx)
	require.Positive(t, repo.calls)
}
