// Package scheduler serializes background index maintenance. Syncs must
// not interleave (the store has a single writer), so every task runs on
// one loop: on-demand tasks are enqueued as they arrive and a periodic
// re-sync fills the gaps, skipping cycles while the queue is busy.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tliron/commonlog"
)

var ErrStopped = errors.New("scheduler: stopped")

// Task is one unit of maintenance work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	log     commonlog.Logger
	mu      sync.Mutex
	queue   chan Task
	stopped bool
	done    chan struct{}
}

func New(queueSize int) *Scheduler {
	return &Scheduler{
		log:   commonlog.GetLogger("scheduler"),
		queue: make(chan Task, queueSize),
		done:  make(chan struct{}),
	}
}

// Start launches the task loop. The context is handed to every task; it
// does not stop the scheduler, Stop does.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	for task := range s.queue {
		s.log.Debugf("running task %s", task.Name)
		if err := task.Run(ctx); err != nil {
			s.log.Errorf("task %s: %s", task.Name, err.Error())
		}
	}
}

// Enqueue submits a task for the next free slot. It never blocks: a full
// queue or a stopped scheduler is reported as an error instead.
func (s *Scheduler) Enqueue(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	select {
	case s.queue <- task:
		return nil
	default:
		return errors.New("scheduler: queue full")
	}
}

// RunPeriodic enqueues task every interval until the context is
// canceled. Cycles that find the queue busy are skipped, which is what
// makes the periodic work low priority.
func (s *Scheduler) RunPeriodic(ctx context.Context, interval time.Duration, task Task) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Enqueue(task); err != nil {
					s.log.Debugf("skipping periodic %s: %s", task.Name, err.Error())
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop rejects new tasks, drains the ones already accepted, and waits
// for the loop to exit. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
}
