// Package schedule runs deferred callbacks on a single thread.
//
// Every timer in the application (transform phases, training step
// timeouts, challenge countdowns, deferred unit removal) is a task on a
// Scheduler. Nothing fires on its own: the owner calls Advance with the
// current time, typically from the UI tick, and due tasks run inline in
// deadline order. Tests drive the same scheduler with synthetic times.
package schedule

import (
	"container/heap"
	"time"
)

// TaskID identifies a scheduled task. The zero value is never issued.
type TaskID uint64

type task struct {
	id       TaskID
	deadline time.Time
	seq      uint64
	fn       func()
	index    int
}

// Scheduler is a deadline-ordered queue of callbacks. It is not safe for
// concurrent use; it belongs to the UI loop that advances it.
type Scheduler struct {
	now    time.Time
	nextID TaskID
	seq    uint64
	queue  taskQueue
	byID   map[TaskID]*task
}

// New returns a Scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{
		now:  start,
		byID: make(map[TaskID]*task),
	}
}

// Now returns the scheduler clock. While a task is firing this is the
// task's deadline, so follow-up tasks are scheduled relative to it.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// After schedules fn to run once d has elapsed on the scheduler clock.
func (s *Scheduler) After(d time.Duration, fn func()) TaskID {
	if d < 0 {
		d = 0
	}
	s.nextID++
	s.seq++
	t := &task{
		id:       s.nextID,
		deadline: s.now.Add(d),
		seq:      s.seq,
		fn:       fn,
	}
	heap.Push(&s.queue, t)
	s.byID[t.id] = t
	return t.id
}

// Cancel removes a pending task. It reports whether the task was pending.
func (s *Scheduler) Cancel(id TaskID) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, t.index)
	delete(s.byID, id)
	return true
}

// Pending returns the number of tasks waiting to fire.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// NextDeadline returns the earliest pending deadline.
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].deadline, true
}

// Advance moves the clock to now, firing every task whose deadline is at
// or before now. Tasks scheduled by a firing task are eligible in the
// same call if they are already due. Returns the number of tasks fired.
func (s *Scheduler) Advance(now time.Time) int {
	fired := 0
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.deadline.After(now) {
			break
		}
		heap.Pop(&s.queue)
		delete(s.byID, next.id)
		if next.deadline.After(s.now) {
			s.now = next.deadline
		}
		next.fn()
		fired++
	}
	if now.After(s.now) {
		s.now = now
	}
	return fired
}

// AdvanceBy is Advance(Now() + d).
func (s *Scheduler) AdvanceBy(d time.Duration) int {
	return s.Advance(s.now.Add(d))
}

// NewScope returns a Scope that tracks tasks scheduled through it.
func (s *Scheduler) NewScope() *Scope {
	return &Scope{sched: s, ids: make(map[TaskID]struct{})}
}

// Scope groups tasks owned by one screen or component so they can be
// cancelled together when the owner goes away.
type Scope struct {
	sched  *Scheduler
	ids    map[TaskID]struct{}
	closed bool
}

// After schedules fn on the parent scheduler. A closed scope schedules
// nothing and returns 0.
func (sc *Scope) After(d time.Duration, fn func()) TaskID {
	if sc.closed {
		return 0
	}
	var id TaskID
	id = sc.sched.After(d, func() {
		delete(sc.ids, id)
		fn()
	})
	sc.ids[id] = struct{}{}
	return id
}

// Cancel cancels one task owned by the scope.
func (sc *Scope) Cancel(id TaskID) bool {
	if _, ok := sc.ids[id]; !ok {
		return false
	}
	delete(sc.ids, id)
	return sc.sched.Cancel(id)
}

// Pending returns the number of live tasks owned by the scope.
func (sc *Scope) Pending() int {
	return len(sc.ids)
}

// Closed reports whether Close has been called.
func (sc *Scope) Closed() bool {
	return sc.closed
}

// Now returns the parent scheduler clock.
func (sc *Scope) Now() time.Time {
	return sc.sched.Now()
}

// Close cancels every pending task and refuses new ones.
func (sc *Scope) Close() {
	for id := range sc.ids {
		sc.sched.Cancel(id)
	}
	sc.ids = make(map[TaskID]struct{})
	sc.closed = true
}

// taskQueue implements heap.Interface ordered by deadline, then by
// scheduling order.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].deadline.Equal(q[j].deadline) {
		return q[i].seq < q[j].seq
	}
	return q[i].deadline.Before(q[j].deadline)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
