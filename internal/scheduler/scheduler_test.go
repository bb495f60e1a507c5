package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/miubank/go-miubank/internal/ledger"
)

type stubAdvancer struct {
	mu    sync.Mutex
	calls int
	errs  []error
	done  chan struct{}
	limit int
}

func newStubAdvancer(limit int, errs ...error) *stubAdvancer {
	return &stubAdvancer{errs: errs, done: make(chan struct{}), limit: limit}
}

func (s *stubAdvancer) AdvancePrices(context.Context) ([]ledger.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := s.calls
	s.calls++
	if s.calls == s.limit {
		close(s.done)
	}
	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	return []ledger.Asset{{}}, nil
}

func (s *stubAdvancer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestRunInvokesEngineOnEachTick(t *testing.T) {
	advancer := newStubAdvancer(3)
	sched := New(advancer, time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(stopped)
	}()

	select {
	case <-advancer.done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine was not invoked often enough")
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
	require.GreaterOrEqual(t, advancer.callCount(), 3)
}

func TestRunContinuesAfterFailedTick(t *testing.T) {
	advancer := newStubAdvancer(2, errors.New("database unavailable"))
	sched := New(advancer, time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	select {
	case <-advancer.done:
	case <-time.After(5 * time.Second):
		t.Fatal("a failed tick stopped the scheduler")
	}
}
