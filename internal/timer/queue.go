package timer

import (
	"runtime"
	"sync/atomic"

	"github.com/Norgate-AV/wintool/internal/handle"
)

// TimerQueue is either a created native queue or the process-wide default queue.
//
// An unreachable created queue is deleted with NoWait semantics. Use Delete to choose the
// policy and observe failures.
type TimerQueue struct {
	handle  handle.Handle
	deleted atomic.Bool
	cleanup runtime.Cleanup
}

// defaultQueue is never mutated: its handle is always Null and Delete is a no-op.
var defaultQueue = &TimerQueue{handle: handle.Null}

// DefaultQueue returns the process-wide default timer queue.
func DefaultQueue() *TimerQueue {
	return defaultQueue
}

// NewQueue creates a native timer queue. CreateTimerQueue signals failure with a null handle.
func NewQueue() (*TimerQueue, error) {
	h, err := native.CreateQueue()
	if err != nil {
		return nil, err
	}

	q := &TimerQueue{handle: h}
	q.cleanup = runtime.AddCleanup(q, dropQueue, h)

	return q, nil
}

func dropQueue(h handle.Handle) {
	_ = native.DeleteQueue(h, NoWait.event())
}

// Handle returns the native queue handle, Null for the default queue.
func (q *TimerQueue) Handle() handle.Handle {
	return q.handle
}

// IsDefault reports whether q is the process-wide default queue.
func (q *TimerQueue) IsDefault() bool {
	return q.handle == handle.Null
}

// Delete deletes the queue and every timer on it. Deleting the default queue always succeeds
// and leaves it usable. DeleteTimerQueueEx signals failure with FALSE.
func (q *TimerQueue) Delete(c Completion) error {
	if q.IsDefault() {
		return nil
	}

	if !q.deleted.CompareAndSwap(false, true) {
		return ErrQueueDeleted
	}

	err := native.DeleteQueue(q.handle, c.event())
	runtime.KeepAlive(q)

	if err != nil && !c.pending(err) {
		q.deleted.Store(false)
		return err
	}

	q.cleanup.Stop()
	return nil
}

// Timer registers a raw native callback (a WAITORTIMERCALLBACK address, e.g. from
// windows.NewCallback) with its parameter. dueMs 0 fires right away; periodMs 0 is one-shot.
// CreateTimerQueueTimer signals failure with FALSE.
func (q *TimerQueue) Timer(fn, param uintptr, dueMs, periodMs uint32, flags Flags) (*QueueTimer, error) {
	return q.register(fn, param, 0, dueMs, periodMs, flags)
}

// TimerFunc registers f to run on a pool thread. f must be safe to call concurrently with
// the rest of the program and, for periodic timers, with itself.
func (q *TimerQueue) TimerFunc(f func(), dueMs, periodMs uint32, flags Flags) (*QueueTimer, error) {
	// Registered first: a zero due time can fire before CreateTimerQueueTimer returns.
	id := closures.Register(f)

	t, err := q.register(native.Adapter(), id, id, dueMs, periodMs, flags)
	if err != nil {
		closures.Release(id)
		return nil, err
	}

	return t, nil
}

func (q *TimerQueue) register(fn, param, closure uintptr, dueMs, periodMs uint32, flags Flags) (*QueueTimer, error) {
	if q.deleted.Load() {
		return nil, ErrQueueDeleted
	}

	h, err := native.CreateTimer(q.handle, fn, param, dueMs, periodMs, flags)
	runtime.KeepAlive(q)

	if err != nil {
		return nil, err
	}

	t := &QueueTimer{queue: q, handle: h, closure: closure}
	t.cleanup = runtime.AddCleanup(t, dropTimer, timerRef{queue: q, handle: h, closure: closure})

	return t, nil
}
