package timer

import (
	"runtime"
	"sync/atomic"

	"github.com/Norgate-AV/wintool/internal/handle"
)

type timerState int32

const (
	stateActive timerState = iota
	stateDeleting
	stateGone
)

// QueueTimer is one registration on a TimerQueue. It does not own the queue.
//
// An unreachable timer is deleted with NoWait semantics. A closure passed to TimerFunc that
// references its own QueueTimer keeps it reachable, so such timers must be deleted explicitly.
type QueueTimer struct {
	queue   *TimerQueue
	handle  handle.Handle
	closure uintptr
	state   atomic.Int32
	cleanup runtime.Cleanup
}

// timerRef is what the cleanup needs; it must not point back at the QueueTimer.
type timerRef struct {
	queue   *TimerQueue
	handle  handle.Handle
	closure uintptr
}

func dropTimer(ref timerRef) {
	if !ref.queue.deleted.Load() {
		_ = native.DeleteTimer(ref.queue.handle, ref.handle, NoWait.event())
	}

	if ref.closure != 0 {
		closures.Release(ref.closure)
	}
}

// Handle returns the native timer handle.
func (t *QueueTimer) Handle() handle.Handle {
	return t.handle
}

// Queue returns the queue the timer was registered on.
func (t *QueueTimer) Queue() *TimerQueue {
	return t.queue
}

// Reset changes the due time and period without creating a new handle.
//
// Resetting a one-shot timer that has already fired is silently ignored by the OS and is not
// an error. A callback dispatched just before Reset may still observe the old period.
// ChangeTimerQueueTimer signals failure with FALSE.
func (t *QueueTimer) Reset(dueMs, periodMs uint32) error {
	if t.queue.deleted.Load() {
		return ErrQueueDeleted
	}

	if timerState(t.state.Load()) != stateActive {
		return ErrTimerDeleted
	}

	err := native.ChangeTimer(t.queue.handle, t.handle, dueMs, periodMs)
	runtime.KeepAlive(t)

	return err
}

// Delete cancels the timer. With Wait it returns only after running callbacks have finished,
// so no callback fires after it returns. A failed native deletion leaves the timer active so
// the caller may retry. DeleteTimerQueueTimer signals failure with FALSE.
func (t *QueueTimer) Delete(c Completion) error {
	if t.queue.deleted.Load() {
		// The queue deletion already destroyed the native timer.
		if t.state.CompareAndSwap(int32(stateActive), int32(stateGone)) {
			t.release()
		}

		return ErrQueueDeleted
	}

	if !t.state.CompareAndSwap(int32(stateActive), int32(stateDeleting)) {
		return ErrTimerDeleted
	}

	if err := native.DeleteTimer(t.queue.handle, t.handle, c.event()); err != nil && !c.pending(err) {
		t.state.Store(int32(stateActive))
		return err
	}

	t.release()
	t.state.Store(int32(stateGone))

	return nil
}

func (t *QueueTimer) release() {
	t.cleanup.Stop()

	if t.closure != 0 {
		closures.Release(t.closure)
	}
}
