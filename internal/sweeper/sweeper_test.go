package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type countingService struct {
	calls atomic.Int64
	err   error
}

func (s *countingService) SweepTimeouts(context.Context) ([]uuid.UUID, error) {
	s.calls.Add(1)
	return nil, s.err
}

func TestSweeperRunsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	service := &countingService{}
	s := New(service, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return service.calls.Load() >= 3
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestSweeperSurvivesErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	service := &countingService{err: errors.New("connection refused")}
	s := New(service, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return service.calls.Load() >= 2
	}, time.Second, time.Millisecond)

	cancel()
	<-done
}
