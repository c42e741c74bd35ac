package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloo-solutions/cravings/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTask struct {
	mock.Mock
}

func (m *MockTask) Run(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestWorker_StartStop(t *testing.T) {
	var calls atomic.Int32
	task := new(MockTask)
	task.On("Run", mock.Anything).Run(func(mock.Arguments) { calls.Add(1) }).Return(nil)

	worker := NewWorker("test", task, 20*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	assert.Eventually(t, func() bool {
		return calls.Load() > 0
	}, time.Second, 10*time.Millisecond)

	worker.Stop()
	wg.Wait()
}

func TestWorker_ContextCancel(t *testing.T) {
	var runs atomic.Int32
	worker := NewWorker("test", TaskFunc(func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}), 10*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestWorker_TaskErrorDoesNotStopLoop(t *testing.T) {
	var runs atomic.Int32
	worker := NewWorker("test", TaskFunc(func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("sweep failed")
	}), 10*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	worker.Stop()
}
