package schedule

import (
	"fmt"
	"sync"

	"github.com/flanksource/commons/logger"
)

// Task is an asynchronous unit of work. It must call done exactly once when
// it finishes, successfully or not; completion, not success, lets the next
// task start.
type Task func(done func(error))

// SerialQueue executes tasks one at a time in strict push order, no matter
// how many producers push concurrently. It is the sole serialization
// discipline for per-document annotation state and the annotation cache:
// the queue's one-task-at-a-time contract is the lock.
//
// A task, once started, always runs to completion; there is no cancellation
// of in-flight work.
type SerialQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []Task
	closed bool
	done   chan struct{}
}

// NewSerialQueue creates a queue and starts its worker.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Push appends a task to the backlog. Execution order equals push order.
func (q *SerialQueue) Push(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("failed to push: queue is closed")
	}
	q.tasks = append(q.tasks, task)
	q.cond.Signal()
	return nil
}

// Len returns the number of tasks waiting to start.
func (q *SerialQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close stops accepting tasks, lets the backlog drain, and waits for the
// worker to exit.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
	<-q.done
}

func (q *SerialQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		q.execute(task)
	}
}

// execute runs one task and blocks until it signals completion. A task that
// calls done more than once only advances the queue once.
func (q *SerialQueue) execute(task Task) {
	completed := make(chan error, 1)
	var once sync.Once
	task(func(err error) {
		once.Do(func() { completed <- err })
	})
	if err := <-completed; err != nil {
		logger.Debugf("queue task completed with error: %v", err)
	}
}
