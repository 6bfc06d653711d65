package executor

import (
	"context"
	"sync"
)

// loopQueueSize bounds callbacks waiting for the loop.
const loopQueueSize = 16

// Loop is a minimal event loop usable as a Home by command line callers:
// callbacks posted from any goroutine run on the goroutine calling Run.
type Loop struct {
	queue    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a stopped-until-run loop.
func NewLoop() *Loop {
	return &Loop{
		queue:   make(chan func(), loopQueueSize),
		stopped: make(chan struct{}),
	}
}

// Post queues fn for the loop goroutine. Callbacks posted after Stop are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.stopped:
	}
}

// Run executes posted callbacks in order until Stop is called or ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-l.stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop ends Run. It is safe to call more than once and from a callback.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopped)
	})
}
