package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sasha-s/go-deadlock"
)

// ErrClosed is returned when submitting to a closed pool.
var ErrClosed = oerror.New("worker pool is closed")

var defaultPool = New(runtime.NumCPU())

// Submit runs f on the default pool. To be used by a function that may be CPU intensive.
func Submit(f func()) error {
	return defaultPool.Submit(f)
}

// Pool runs jobs on a fixed amount of goroutines. A job that panics is reported to Sentry and does not
// take its worker down.
type Pool struct {
	mu     deadlock.RWMutex
	queue  chan func()
	size   int
	closed bool
	done   sync.WaitGroup
}

// New starts a pool of n workers. If n is not positive, one worker per CPU is started.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{queue: make(chan func(), n), size: n}
	p.done.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

// Size returns the amount of workers in the pool.
func (p *Pool) Size() int {
	return p.size
}

func (p *Pool) worker() {
	defer p.done.Done()
	for f := range p.queue {
		run(f)
	}
}

func run(f func()) {
	defer func() {
		if err := recover(); err != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(oerror.New("worker job crashed: %v", err))
			hub.Flush(time.Second * 5)
		}
	}()
	f()
}

// Submit queues f, blocking while every worker is busy and the queue is full.
func (p *Pool) Submit(f func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	p.queue <- f
	return nil
}

// Run submits every function in fns and waits for all of them to return.
func (p *Pool) Run(fns ...func()) error {
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for i, f := range fns {
		if err := p.Submit(func() {
			defer wg.Done()
			f()
		}); err != nil {
			wg.Add(-(len(fns) - i))
			wg.Wait()
			return err
		}
	}
	wg.Wait()
	return nil
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.done.Wait()
}
