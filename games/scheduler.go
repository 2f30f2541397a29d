package games

import (
	"container/heap"
	"fmt"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/metrics"
	"go.uber.org/zap"
)

// TaskID identifies a scheduled task. The zero value is never used for tasks.
type TaskID uint64

// timer is an entry in the Scheduler queue.
type timer struct {
	id   TaskID
	name string
	// fireAt is the game tick at which the task runs next.
	fireAt uint64
	// seq orders tasks with the same fireAt by scheduling order.
	seq uint64
	// interval is the number of game ticks between runs. Zero for one-shot tasks.
	interval uint64
	fn       func()
	// index is the position in the heap.
	index int
}

// timerQueue implements heap.Interface ordered by fireAt and seq.
type timerQueue []*timer

func (q timerQueue) Len() int {
	return len(q)
}

func (q timerQueue) Less(i, j int) bool {
	if q[i].fireAt != q[j].fireAt {
		return q[i].fireAt < q[j].fireAt
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x interface{}) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler is a priority queue of callbacks keyed by game tick. It is owned by
// the host tick loop and is not safe for concurrent use.
type Scheduler struct {
	logger *zap.Logger
	// now is the current game tick.
	now     uint64
	lastID  TaskID
	lastSeq uint64
	queue   timerQueue
	tasks   map[TaskID]*timer
}

// NewScheduler creates an empty Scheduler at game tick zero.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make(map[TaskID]*timer),
	}
}

// Now returns the current game tick.
func (s *Scheduler) Now() uint64 {
	return s.now
}

// After schedules the given function to run once after the given number of
// game ticks. A delay of zero runs on the next Advance.
func (s *Scheduler) After(name string, delay uint64, fn func()) TaskID {
	return s.schedule(name, delay, 0, fn)
}

// Every schedules the given function to run after delay and then every interval
// game ticks until cancelled.
func (s *Scheduler) Every(name string, delay uint64, interval uint64, fn func()) TaskID {
	if interval == 0 {
		panic(fmt.Sprintf("interval for task %s must be positive", name))
	}
	return s.schedule(name, delay, interval, fn)
}

func (s *Scheduler) schedule(name string, delay uint64, interval uint64, fn func()) TaskID {
	if delay == 0 {
		delay = 1
	}
	s.lastID++
	s.lastSeq++
	t := &timer{
		id:       s.lastID,
		name:     name,
		fireAt:   s.now + delay,
		seq:      s.lastSeq,
		interval: interval,
		fn:       fn,
	}
	heap.Push(&s.queue, t)
	s.tasks[t.id] = t
	return t.id
}

// Cancel removes the task with the given id. It returns false if the task is
// unknown or has already finished.
func (s *Scheduler) Cancel(id TaskID) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	delete(s.tasks, id)
	if t.index >= 0 {
		heap.Remove(&s.queue, t.index)
	}
	return true
}

// IsScheduled checks whether the task with the given id is still pending.
func (s *Scheduler) IsScheduled(id TaskID) bool {
	_, ok := s.tasks[id]
	return ok
}

// Pending returns the number of scheduled tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Advance moves forward by one game tick and runs all due tasks in order.
// Repeating tasks are rescheduled before they run so that they may cancel
// themselves.
func (s *Scheduler) Advance() {
	s.now++
	for len(s.queue) > 0 && s.queue[0].fireAt <= s.now {
		t := heap.Pop(&s.queue).(*timer)
		if t.interval > 0 {
			t.fireAt += t.interval
			s.lastSeq++
			t.seq = s.lastSeq
			heap.Push(&s.queue, t)
		} else {
			delete(s.tasks, t.id)
		}
		s.run(t)
	}
}

// run calls the task function. Panics are logged so that one failing task does
// not stop the others. Panics with an errors.ErrFatal error are invariant
// violations and are raised again.
func (s *Scheduler) run(t *timer) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(errors.Error); ok && e.Code == errors.ErrFatal {
			panic(e)
		}
		metrics.ScheduledTaskFailures.WithLabelValues(t.name).Inc()
		errors.Log(s.logger, errors.NewInternalError("scheduled task panicked", errors.Details{
			"task":      t.name,
			"recovered": r,
		}))
	}()
	t.fn()
}
