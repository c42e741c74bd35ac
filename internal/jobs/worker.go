package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is one unit of periodic background work.
type Task interface {
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Worker runs a Task on a fixed interval until stopped.
type Worker struct {
	name     string
	task     Task
	interval time.Duration
	logger   logrus.FieldLogger
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewWorker(name string, task Task, interval time.Duration, logger logrus.FieldLogger) *Worker {
	return &Worker{
		name:     name,
		task:     task,
		interval: interval,
		logger:   logger.WithField("worker", name),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start blocks running the task every interval until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	w.logger.WithField("interval", w.interval.String()).Info("worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			w.logger.Info("worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.task.Run(ctx); err != nil {
				w.logger.WithError(err).Error("worker task failed")
			}
		}
	}
}

// Stop signals the loop and waits for it to exit.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
