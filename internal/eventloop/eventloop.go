// Package eventloop provides the single-threaded scheduler behind promise
// reactions, async continuations and timers. Microtasks run in FIFO order;
// timers run on a virtual clock once the microtask queue is empty.
package eventloop

import (
	"container/heap"
	"time"

	"github.com/charmbracelet/log"
)

// Task is a unit of deferred work. A non-nil error aborts the loop; tasks
// that want to report guest failures without stopping handle them
// themselves.
type Task func() error

// Loop is not safe for concurrent use.
type Loop struct {
	micro  []Task
	head   int
	timers timerQueue
	now    time.Duration
	seq    uint64
}

func New() *Loop {
	return &Loop{}
}

// Enqueue appends a microtask.
func (l *Loop) Enqueue(t Task) {
	l.micro = append(l.micro, t)
}

// SetTimeout schedules t to run d after the current virtual time and
// returns the timer id.
func (l *Loop) SetTimeout(d time.Duration, t Task) uint64 {
	if d < 0 {
		d = 0
	}
	l.seq++
	heap.Push(&l.timers, &timer{due: l.now + d, seq: l.seq, task: t})
	return l.seq
}

// ClearTimeout cancels a pending timer. It reports whether one was found.
func (l *Loop) ClearTimeout(id uint64) bool {
	for i, tm := range l.timers {
		if tm.seq == id {
			heap.Remove(&l.timers, i)
			return true
		}
	}
	return false
}

// Now returns the virtual clock.
func (l *Loop) Now() time.Duration { return l.now }

// Pending returns the number of queued microtasks and timers.
func (l *Loop) Pending() int {
	return len(l.micro) - l.head + len(l.timers)
}

// Drain runs microtasks until the queue is empty, including any queued
// while draining. It returns how many ran.
func (l *Loop) Drain() (int, error) {
	n := 0
	for l.head < len(l.micro) {
		t := l.micro[l.head]
		l.micro[l.head] = nil
		l.head++
		n++
		if err := t(); err != nil {
			l.compact()
			return n, err
		}
	}
	l.micro = l.micro[:0]
	l.head = 0
	return n, nil
}

// Run drains microtasks, then fires timers in due order, draining after
// each, until nothing is left.
func (l *Loop) Run() error {
	for {
		if _, err := l.Drain(); err != nil {
			return err
		}
		if len(l.timers) == 0 {
			return nil
		}
		tm := heap.Pop(&l.timers).(*timer)
		if tm.due > l.now {
			l.now = tm.due
		}
		log.Debug("timer fired", "id", tm.seq, "at", l.now)
		if err := tm.task(); err != nil {
			return err
		}
	}
}

// Reset drops every queued microtask and pending timer. The virtual clock
// and timer ids keep counting.
func (l *Loop) Reset() {
	clear(l.micro)
	l.micro = l.micro[:0]
	l.head = 0
	clear(l.timers)
	l.timers = l.timers[:0]
}

func (l *Loop) compact() {
	l.micro = append(l.micro[:0], l.micro[l.head:]...)
	l.head = 0
}

type timer struct {
	due  time.Duration
	seq  uint64
	task Task
}

// timerQueue orders timers by due time, then by scheduling order.
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}
func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *timerQueue) Push(x any)   { *q = append(*q, x.(*timer)) }
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	tm := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return tm
}
