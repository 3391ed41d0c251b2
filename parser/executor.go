package parser

import (
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Executor runs tasks asynchronously. Execute hands the task off and must
// not run it inline.
type Executor interface {
	Execute(task func())
}

// EventLoop is a single-threaded executor: tasks queue up until Run drains
// them on the calling goroutine.
type EventLoop struct {
	mu    sync.Mutex
	tasks []func()

	// Reversed drains the queue last-in first-out
	Reversed bool
}

// NewEventLoop creates an empty first-in first-out loop
func NewEventLoop() *EventLoop {
	return &EventLoop{}
}

// Execute queues task
func (l *EventLoop) Execute(task func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()
}

// Run executes queued tasks, including ones queued while running, until the
// queue is empty. It returns the number of tasks run.
func (l *EventLoop) Run() int {
	n := 0
	for {
		task, ok := l.next()
		if !ok {
			return n
		}
		task()
		n++
	}
}

// Pending returns the number of queued tasks
func (l *EventLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

func (l *EventLoop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}

	var task func()
	if l.Reversed {
		last := len(l.tasks) - 1
		task = l.tasks[last]
		l.tasks = l.tasks[:last]
	} else {
		task = l.tasks[0]
		l.tasks = l.tasks[1:]
	}
	return task, true
}

// Pool runs tasks on a bounded set of goroutines. A Pool is single use:
// call Wait once after the last Execute.
type Pool struct {
	p *pool.Pool
}

// NewPool creates a pool running at most maxGoroutines tasks at once.
// A non-positive value means unbounded.
func NewPool(maxGoroutines int) *Pool {
	p := pool.New()
	if maxGoroutines > 0 {
		p = p.WithMaxGoroutines(maxGoroutines)
	}
	return &Pool{p: p}
}

// Execute starts task on the pool
func (p *Pool) Execute(task func()) {
	p.p.Go(task)
}

// Wait blocks until every task has finished
func (p *Pool) Wait() {
	p.p.Wait()
}
