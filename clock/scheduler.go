package clock

import (
	"container/heap"
	"time"
)

// Timer is a handle to a scheduled callback
type Timer struct {
	sched    *Scheduler
	deadline time.Time
	seq      uint64
	fn       func()
	index    int // Heap position, -1 once fired or stopped
}

// Stop cancels the timer, returns true if the callback was prevented from running
func (t *Timer) Stop() bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&t.sched.queue, t.index)
	return true
}

// Pending returns true while the timer is queued
func (t *Timer) Pending() bool {
	return t != nil && t.index >= 0
}

// Scheduler fires callbacks on the goroutine that calls Run
// Not safe for concurrent use: owned by a single event loop
type Scheduler struct {
	clock Clock
	queue timerQueue
	seq   uint64
}

// NewScheduler creates a scheduler reading deadlines from c
func NewScheduler(c Clock) *Scheduler {
	return &Scheduler{clock: c}
}

// After queues fn to run once d has elapsed on the scheduler clock
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{
		sched:    s,
		deadline: s.clock.Now().Add(d),
		seq:      s.seq,
		fn:       fn,
	}
	heap.Push(&s.queue, t)
	return t
}

// Run fires every timer due at the current clock reading, in deadline order
// Callbacks may schedule further timers; those due immediately run in the same pass
func (s *Scheduler) Run() int {
	now := s.clock.Now()
	fired := 0
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.deadline.After(now) {
			break
		}
		heap.Pop(&s.queue)
		next.fn()
		fired++
	}
	return fired
}

// Pending returns the number of queued timers
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// timerQueue orders timers by deadline, insertion order breaks ties
type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline.Equal(q[j].deadline) {
		return q[i].seq < q[j].seq
	}
	return q[i].deadline.Before(q[j].deadline)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
