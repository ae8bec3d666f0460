package queue

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Task is one deferred ingestion job: a single extracted CSV file.
type Task struct {
	ID   string
	File string
}

// Handler processes one task. A failed task is logged and counted; retry
// is left to the operator.
type Handler func(Task) error

// Pool is the channel-fed worker pool behind the deferred ingestion
// interface. Producers hand off filenames without waiting for ingestion;
// the hand-off itself is buffered, not unbounded (see Enqueue).
type Pool struct {
	tasks   chan Task
	handler Handler
	workers int
	wg      sync.WaitGroup
	closed  sync.Once
	done    atomic.Int64
	failed  atomic.Int64
}

func New(workers int, handler Handler) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{
		tasks:   make(chan Task, intakeBuffer),
		handler: handler,
		workers: workers,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		if err := p.handler(task); err != nil {
			p.failed.Add(1)
			log.Printf("task %s (%s) failed: %v", task.ID, task.File, err)
			continue
		}
		p.done.Add(1)
	}
}

// intakeBuffer is the Enqueue hand-off capacity. One archive yields on
// the order of 120 area files, so a producer stays well under it.
const intakeBuffer = 256

// Enqueue hands one file to the pool and returns its task id without
// waiting for the work. The hand-off blocks only in the degenerate case
// of more than intakeBuffer undispatched tasks.
func (p *Pool) Enqueue(file string) string {
	task := Task{ID: uuid.New().String(), File: file}
	p.tasks <- task
	return task.ID
}

// Drain stops intake and blocks until every queued task has finished.
func (p *Pool) Drain() {
	p.closed.Do(func() { close(p.tasks) })
	p.wg.Wait()
}

// Stats returns the completed and failed task counts.
func (p *Pool) Stats() (done, failed int64) {
	return p.done.Load(), p.failed.Load()
}
