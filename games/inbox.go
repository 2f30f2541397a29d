package games

import (
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/metrics"
	"go.uber.org/zap"
	"sync"
)

// inboxTaskName is the task label for recovered panics of posted functions.
const inboxTaskName = "inbox"

// Inbox is a queue of closures that are posted from arbitrary goroutines and
// run on the simulation thread when drained.
type Inbox struct {
	logger  *zap.Logger
	m       sync.Mutex
	pending []func()
}

// NewInbox creates an empty Inbox.
func NewInbox(logger *zap.Logger) *Inbox {
	return &Inbox{
		logger:  logger,
		pending: make([]func(), 0),
	}
}

// Post adds the given function to the queue. It never blocks on the simulation
// thread.
func (inbox *Inbox) Post(fn func()) {
	inbox.m.Lock()
	defer inbox.m.Unlock()
	inbox.pending = append(inbox.pending, fn)
}

// Drain runs all queued functions in posting order and returns the number of
// functions run. Functions posted while draining run with the next Drain.
func (inbox *Inbox) Drain() int {
	inbox.m.Lock()
	batch := inbox.pending
	inbox.pending = make([]func(), 0, len(batch))
	inbox.m.Unlock()
	for _, fn := range batch {
		inbox.run(fn)
	}
	return len(batch)
}

// run calls the given function. Panics are logged so that the remaining
// functions of the batch still run. Panics with an errors.ErrFatal error are
// raised again.
func (inbox *Inbox) run(fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(errors.Error); ok && e.Code == errors.ErrFatal {
			panic(e)
		}
		metrics.ScheduledTaskFailures.WithLabelValues(inboxTaskName).Inc()
		errors.Log(inbox.logger, errors.NewInternalError("posted function panicked", errors.Details{
			"recovered": r,
		}))
	}()
	fn()
}

// Len returns the number of queued functions.
func (inbox *Inbox) Len() int {
	inbox.m.Lock()
	defer inbox.m.Unlock()
	return len(inbox.pending)
}
