package service

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DispatchFunc executes one fire for one log entry. It must do its own error
// handling; the queue discards a fire the moment it runs.
type DispatchFunc func(ctx context.Context, logID string)

// idleWait bounds the timer when no fire is armed.
const idleWait = time.Minute

type fireEntry struct {
	logID string
	at    time.Time
	fired bool
	index int // position in the heap, -1 once popped
}

type fireHeap []*fireEntry

func (h fireHeap) Len() int            { return len(h) }
func (h fireHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h fireHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *fireHeap) Push(x any)         { e := x.(*fireEntry); e.index = len(*h); *h = append(*h, e) }
func (h *fireHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// FireQueue is a min-heap of (fire time, log entry id) pairs drained by a
// single dispatcher goroutine. Entries stay tracked after they fire so
// overlapping scan ticks cannot arm the same log twice; a snooze re-arms
// explicitly through Rearm.
type FireQueue struct {
	mu      sync.Mutex
	heap    fireHeap
	entries map[string]*fireEntry

	wake     chan struct{}
	dispatch DispatchFunc
	logger   *zap.Logger
	now      func() time.Time
}

func NewFireQueue(dispatch DispatchFunc, logger *zap.Logger) *FireQueue {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FireQueue{
		entries:  make(map[string]*fireEntry),
		wake:     make(chan struct{}, 1),
		dispatch: dispatch,
		logger:   logger,
		now:      time.Now,
	}
}

// Arm schedules a fire for the log entry unless one is already tracked
// (armed or spent). Returns true when a new fire was armed.
func (q *FireQueue) Arm(logID string, at time.Time) bool {
	q.mu.Lock()
	if _, exists := q.entries[logID]; exists {
		q.mu.Unlock()
		return false
	}

	entry := &fireEntry{logID: logID, at: at}
	q.entries[logID] = entry
	heap.Push(&q.heap, entry)
	q.mu.Unlock()

	q.signal()
	return true
}

// Rearm replaces any tracked fire for the log entry with a new one. Used by
// snooze, which must reschedule even after the original fire was spent.
func (q *FireQueue) Rearm(logID string, at time.Time) {
	q.mu.Lock()
	entry, exists := q.entries[logID]
	if !exists {
		entry = &fireEntry{logID: logID, at: at}
		q.entries[logID] = entry
		heap.Push(&q.heap, entry)
	} else {
		entry.at = at
		entry.fired = false
		if entry.index >= 0 {
			heap.Fix(&q.heap, entry.index)
		} else {
			heap.Push(&q.heap, entry)
		}
	}
	q.mu.Unlock()

	q.signal()
}

// Forget drops all tracking for the log entry, letting a later scan arm it
// again. Called once an entry leaves its pending state.
func (q *FireQueue) Forget(logID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, exists := q.entries[logID]
	if !exists {
		return
	}
	if entry.index >= 0 {
		heap.Remove(&q.heap, entry.index)
	}
	delete(q.entries, logID)
}

// Run drains due fires until context cancellation. Each due fire is
// dispatched on its own goroutine so one slow gateway call does not delay
// the rest.
func (q *FireQueue) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		wait := q.untilNext()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return nil
		case <-q.wake:
		case <-timer.C:
		}

		for _, logID := range q.popDue(q.now()) {
			id := logID
			go q.dispatch(ctx, id)
		}
	}
}

func (q *FireQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// untilNext returns how long to sleep before the earliest armed fire.
func (q *FireQueue) untilNext() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.heap.Len() == 0 {
		return idleWait
	}

	wait := q.heap[0].at.Sub(q.now())
	if wait < 0 {
		return 0
	}
	if wait > idleWait {
		return idleWait
	}
	return wait
}

// popDue removes every fire due at or before now from the heap, marks it
// spent, and returns the log ids to dispatch.
func (q *FireQueue) popDue(now time.Time) []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []string
	for q.heap.Len() > 0 && !q.heap[0].at.After(now) {
		entry := heap.Pop(&q.heap).(*fireEntry)
		entry.fired = true
		due = append(due, entry.logID)
	}
	return due
}

// ArmedCount reports how many fires are still waiting in the heap.
func (q *FireQueue) ArmedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}
