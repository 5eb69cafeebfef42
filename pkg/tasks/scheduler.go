// Package tasks is the single logical event queue the map runs on. Timers and
// posted callbacks only ever execute inside Advance, one at a time, so state
// they touch needs no further locking.
package tasks

import (
	"container/heap"
	"sync"
	"time"
)

// Handle is a scheduled callback. Cancel prevents it from running.
type Handle struct {
	due      time.Time
	seq      uint64
	fn       func()
	index    int
	canceled bool
	fired    bool
}

// Cancel stops the callback from firing. It reports whether the call
// prevented a run, false if the callback already ran or was canceled.
func (h *Handle) Cancel() bool {
	if h == nil || h.fired || h.canceled {
		return false
	}
	h.canceled = true
	h.fn = nil
	return true
}

// Pending reports whether the callback is still waiting to run.
func (h *Handle) Pending() bool {
	return h != nil && !h.fired && !h.canceled
}

// Due is the time the callback is scheduled for.
func (h *Handle) Due() time.Time { return h.due }

type timerHeap []*Handle

func (q timerHeap) Len() int { return len(q) }
func (q timerHeap) Less(i, j int) bool {
	if !q[i].due.Equal(q[j].due) {
		return q[i].due.Before(q[j].due)
	}
	return q[i].seq < q[j].seq
}
func (q timerHeap) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *timerHeap) Push(x any) {
	h := x.(*Handle)
	h.index = len(*q)
	*q = append(*q, h)
}
func (q *timerHeap) Pop() any {
	old := *q
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	h.index = -1
	*q = old[:n-1]
	return h
}

// Scheduler runs timers and posted callbacks on the caller of Advance.
type Scheduler struct {
	now    time.Time
	timers timerHeap
	seq    uint64

	inboxMu sync.Mutex
	inbox   []func()
}

// NewScheduler starts the loop clock at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now is the loop time as of the latest Advance, or the time of the timer
// currently running.
func (s *Scheduler) Now() time.Time { return s.now }

// After schedules fn to run d after the current loop time.
func (s *Scheduler) After(d time.Duration, fn func()) *Handle {
	return s.At(s.now.Add(d), fn)
}

// At schedules fn for an absolute loop time.
func (s *Scheduler) At(t time.Time, fn func()) *Handle {
	s.seq++
	h := &Handle{due: t, seq: s.seq, fn: fn}
	heap.Push(&s.timers, h)
	return h
}

// Post queues fn to run at the start of the next Advance. Safe to call from
// any goroutine.
func (s *Scheduler) Post(fn func()) {
	s.inboxMu.Lock()
	s.inbox = append(s.inbox, fn)
	s.inboxMu.Unlock()
}

// Pending counts timers that have not fired or been canceled.
func (s *Scheduler) Pending() int {
	n := 0
	for _, h := range s.timers {
		if h.Pending() {
			n++
		}
	}
	return n
}

// Advance moves the loop clock to now. Due timers run first, each seeing its
// own due time as Now; posted callbacks then run at now, followed by any timers
// they made due. Returns the number of callbacks run.
func (s *Scheduler) Advance(now time.Time) int {
	ran := s.runTimers(now)
	if now.After(s.now) {
		s.now = now
	}

	s.inboxMu.Lock()
	posted := s.inbox
	s.inbox = nil
	s.inboxMu.Unlock()
	for _, fn := range posted {
		fn()
		ran++
	}
	return ran + s.runTimers(now)
}

func (s *Scheduler) runTimers(now time.Time) int {
	ran := 0
	for len(s.timers) > 0 {
		next := s.timers[0]
		if next.due.After(now) {
			break
		}
		heap.Pop(&s.timers)
		if next.canceled {
			continue
		}
		if next.due.After(s.now) {
			s.now = next.due
		}
		fn := next.fn
		next.fired = true
		next.fn = nil
		fn()
		ran++
	}
	return ran
}
