// Package shutdownqueue collects cleanup tasks and drains them in LIFO
// order at process exit.
//
// Components register tasks via Add as they start up; main drains the
// queue once with a bounded context:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	err := shutdownqueue.Shutdown(ctx)
//
// Tasks run exactly once. Panics are recovered and reported as errors;
// all task errors are aggregated with errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it cannot finish before ctx is done.
type Task func(ctx context.Context) error

// Queue is an explicit shutdown queue for callers that want to own the
// instance (tests, multiple lifecycles). The package-level Add/Shutdown
// operate on a process-wide default Queue.
type Queue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
}

var defaultQueue Queue

// Add registers a task on the default queue.
func Add(t Task) { defaultQueue.Add(t) }

// Shutdown drains the default queue.
func Shutdown(ctx context.Context) error { return defaultQueue.Shutdown(ctx) }

// Add registers a task to run on Shutdown, in LIFO order. A nil task is
// ignored, as is any Add after shutdown has begun.
func (q *Queue) Add(t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, t)
}

// Shutdown runs all registered tasks in reverse registration order.
// It is idempotent; only the first call does any work. If ctx ends
// mid-drain the remaining tasks are skipped and the context error is
// included in the result.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	tasks := q.tasks
	q.tasks = nil

	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled with %d tasks left: %w", i+1, ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}
