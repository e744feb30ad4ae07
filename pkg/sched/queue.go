package sched

import "sync"

// Handle identifies a scheduled callback. The zero Handle is never issued,
// so cancelling it is always a no-op.
type Handle uint64

// entry is a pending one-shot callback.
type entry struct {
	handle Handle
	runAt  int64
	fn     func()
}

// Queue is a cooperative one-shot timer queue. Callbacks fire from RunDue,
// which the host calls on its single event thread; nothing here spawns
// goroutines. A callback fires at most once: it is removed from the queue
// before it runs, and Cancel before expiry drops it without firing.
type Queue struct {
	mu      sync.Mutex
	clock   Clock
	next    Handle
	pending []*entry // sorted by runAt, ties in schedule order
}

// NewQueue creates an empty queue driven by the given clock.
func NewQueue(clock Clock) *Queue {
	return &Queue{clock: clock}
}

// Schedule registers fn to run once no earlier than delaySeconds from now.
// A non-positive delay fires on the next RunDue.
func (q *Queue) Schedule(delaySeconds int64, fn func()) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.next++
	e := &entry{
		handle: q.next,
		runAt:  q.clock.Now() + delaySeconds,
		fn:     fn,
	}

	// Insert sorted by runAt; equal deadlines keep schedule order.
	inserted := false
	for i, p := range q.pending {
		if e.runAt < p.runAt {
			q.pending = append(q.pending[:i+1], q.pending[i:]...)
			q.pending[i] = e
			inserted = true
			break
		}
	}
	if !inserted {
		q.pending = append(q.pending, e)
	}
	return e.handle
}

// Cancel drops a pending callback without firing it. Cancelling a fired,
// already-cancelled, or zero handle is a no-op.
func (q *Queue) Cancel(h Handle) {
	if h == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.pending {
		if e.handle == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// RunDue fires every callback whose deadline has passed, in deadline order.
// Callbacks run outside the queue lock and may schedule or cancel freely;
// entries they add only fire on a later RunDue even if already due, which
// keeps a single pump call bounded. Returns the number fired.
func (q *Queue) RunDue() int {
	q.mu.Lock()
	now := q.clock.Now()
	cutoff := 0
	for _, e := range q.pending {
		if e.runAt > now {
			break
		}
		cutoff++
	}
	due := q.pending[:cutoff:cutoff]
	q.pending = q.pending[cutoff:]
	q.mu.Unlock()

	for _, e := range due {
		e.fn()
	}
	return len(due)
}

// Len returns the number of pending callbacks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
