package concurrent

import (
	"errors"
	"time"
)

var ErrScheduleTimeout = errors.New("schedule error: timed out")

// WorkerPool is a bounded goroutine pool for websocket connection handling.
// Workers are spawned lazily up to the pool size; Schedule blocks while the
// queue is full, ScheduleTimeout gives up after the timeout instead.
type WorkerPool struct {
	sem  chan struct{}
	work chan func()
}

func NewWorkerPool(size, queue int) *WorkerPool {
	return &WorkerPool{
		sem:  make(chan struct{}, size),
		work: make(chan func(), queue),
	}
}

// Spawn starts n workers immediately.
func (wp *WorkerPool) Spawn(n int) {
	for i := 0; i < n; i++ {
		wp.sem <- struct{}{}
		go wp.worker(func() {})
	}
}

func (wp *WorkerPool) Schedule(task func()) {
	wp.schedule(task, nil)
}

func (wp *WorkerPool) ScheduleTimeout(timeout time.Duration, task func()) error {
	return wp.schedule(task, time.After(timeout))
}

func (wp *WorkerPool) schedule(task func(), timeout <-chan time.Time) error {
	select {
	case <-timeout:
		return ErrScheduleTimeout
	case wp.work <- task:
		return nil
	case wp.sem <- struct{}{}:
		go wp.worker(task)
		return nil
	}
}

func (wp *WorkerPool) worker(task func()) {
	defer func() { <-wp.sem }()

	task()
	for task := range wp.work {
		task()
	}
}

func (wp *WorkerPool) Close() {
	close(wp.work)
}
