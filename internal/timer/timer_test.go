package timer

import (
	"errors"
	"runtime"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/wintool/internal/handle"
	"github.com/Norgate-AV/wintool/internal/winerr"
)

func TestCompletion_Event(t *testing.T) {
	assert.Equal(t, handle.Null, NoWait.event())
	assert.Equal(t, handle.Invalid, Wait.event())
	assert.Equal(t, "nowait", NoWait.String())
	assert.Equal(t, "wait", Wait.String())
}

func TestCompletion_PendingOnlyForNoWait(t *testing.T) {
	pending := winerr.New("DeleteTimerQueueTimer", errIOPending)

	assert.True(t, NoWait.pending(pending))
	assert.False(t, Wait.pending(pending))
	assert.False(t, NoWait.pending(winerr.New("DeleteTimerQueueTimer", 6)))
	assert.False(t, NoWait.pending(errors.New("other")))
}

func TestFlags_Compose(t *testing.T) {
	assert.Equal(t, Flags(0x18), DefaultFlags.LongFunction().OnlyOnce())
	assert.Equal(t, Flags(0x1A0), DefaultFlags.OnTimerThread().OnPersistentThread().TransferImpersonation())
}

func TestDefaultQueue_DeleteIsNoOp(t *testing.T) {
	fake := useFakeBackend(t)

	q := DefaultQueue()
	assert.True(t, q.IsDefault())
	assert.NoError(t, q.Delete(Wait))
	assert.NoError(t, q.Delete(NoWait))
	assert.Empty(t, fake.Calls())

	timer, err := q.TimerFunc(func() {}, 1000, 0, DefaultFlags)
	require.NoError(t, err, "default queue stays usable after Delete")
	require.NoError(t, timer.Delete(Wait))
}

func TestQueue_DeleteTwice(t *testing.T) {
	useFakeBackend(t)

	q, err := NewQueue()
	require.NoError(t, err)
	require.NoError(t, q.Delete(Wait))

	assert.ErrorIs(t, q.Delete(Wait), ErrQueueDeleted)

	_, err = q.TimerFunc(func() {}, 0, 0, DefaultFlags)
	assert.ErrorIs(t, err, ErrQueueDeleted)
}

func TestQueue_FailedDeleteStaysUsable(t *testing.T) {
	fake := useFakeBackend(t)

	q, err := NewQueue()
	require.NoError(t, err)

	fake.failDeleteQueue = winerr.New("DeleteTimerQueueEx", 5)
	err = q.Delete(Wait)
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.Errno(5))

	fake.failDeleteQueue = nil
	assert.NoError(t, q.Delete(Wait))
}

func TestTimer_WaitDeleteBlocksUntilCallbackReturns(t *testing.T) {
	useFakeBackend(t)

	started := make(chan struct{})
	var finished atomic.Int32

	timer, err := DefaultQueue().TimerFunc(func() {
		close(started)
		time.Sleep(100 * time.Millisecond)
		finished.Add(1)
	}, 1, 0, DefaultFlags)
	require.NoError(t, err)

	<-started
	require.NoError(t, timer.Delete(Wait))

	assert.Equal(t, int32(1), finished.Load(), "callback must be complete when Wait returns")
}

func TestTimer_NoWaitDeleteReturnsPromptly(t *testing.T) {
	useFakeBackend(t)

	started := make(chan struct{})
	done := make(chan struct{})

	timer, err := DefaultQueue().TimerFunc(func() {
		close(started)
		time.Sleep(300 * time.Millisecond)
		close(done)
	}, 1, 0, DefaultFlags)
	require.NoError(t, err)

	<-started

	begin := time.Now()
	require.NoError(t, timer.Delete(NoWait), "ERROR_IO_PENDING is success for NoWait")
	assert.Less(t, time.Since(begin), 200*time.Millisecond)

	<-done
}

func TestTimer_NoCallbackAfterWaitDelete(t *testing.T) {
	useFakeBackend(t)

	var count atomic.Int32
	timer, err := DefaultQueue().TimerFunc(func() { count.Add(1) }, 1, 5, DefaultFlags)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return count.Load() >= 2 }, time.Second, time.Millisecond)
	require.NoError(t, timer.Delete(Wait))

	after := count.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, count.Load())
}

func TestTimer_ResetFiredOneShotIsNoOp(t *testing.T) {
	useFakeBackend(t)

	var count atomic.Int32
	timer, err := DefaultQueue().TimerFunc(func() { count.Add(1) }, 1, 0, DefaultFlags)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, timer.Reset(1, 0))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())

	require.NoError(t, timer.Delete(Wait))
}

func TestTimer_ResetPeriodicToOneShot(t *testing.T) {
	useFakeBackend(t)

	var count atomic.Int32
	timer, err := DefaultQueue().TimerFunc(func() { count.Add(1) }, 1, 900, DefaultFlags)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, timer.Reset(1, 0))
	require.Eventually(t, func() bool { return count.Load() == 2 }, time.Second, time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), count.Load())

	require.NoError(t, timer.Delete(Wait))
}

func TestTimer_UseAfterDelete(t *testing.T) {
	useFakeBackend(t)

	timer, err := DefaultQueue().TimerFunc(func() {}, 1000, 0, DefaultFlags)
	require.NoError(t, err)
	require.NoError(t, timer.Delete(NoWait))

	assert.ErrorIs(t, timer.Delete(NoWait), ErrTimerDeleted)
	assert.ErrorIs(t, timer.Reset(1, 0), ErrTimerDeleted)
	assert.Zero(t, closures.Len())
}

func TestTimer_FailedDeleteCanBeRetried(t *testing.T) {
	fake := useFakeBackend(t)

	timer, err := DefaultQueue().TimerFunc(func() {}, 1000, 0, DefaultFlags)
	require.NoError(t, err)

	fake.failDeleteTimer = winerr.New("DeleteTimerQueueTimer", 5)
	require.Error(t, timer.Delete(Wait))
	assert.NoError(t, timer.Reset(2000, 0), "timer stays active after a failed delete")

	fake.failDeleteTimer = nil
	assert.NoError(t, timer.Delete(Wait))
}

func TestTimer_OnDeletedQueue(t *testing.T) {
	useFakeBackend(t)

	q, err := NewQueue()
	require.NoError(t, err)

	timer, err := q.TimerFunc(func() {}, 1000, 0, DefaultFlags)
	require.NoError(t, err)
	require.NoError(t, q.Delete(Wait))

	assert.ErrorIs(t, timer.Reset(1, 0), ErrQueueDeleted)
	assert.ErrorIs(t, timer.Delete(Wait), ErrQueueDeleted)
	assert.Zero(t, closures.Len(), "closure released once the timer is known to be gone")
}

func TestTimer_RawNativeCallback(t *testing.T) {
	fake := useFakeBackend(t)

	got := make(chan uintptr, 1)
	fake.raw = func(param uintptr) { got <- param }

	timer, err := DefaultQueue().Timer(0xCAFE, 42, 1, 0, DefaultFlags)
	require.NoError(t, err)

	select {
	case p := <-got:
		assert.Equal(t, uintptr(42), p)
	case <-time.After(time.Second):
		t.Fatal("raw callback never ran")
	}

	require.NoError(t, timer.Delete(Wait))
}

func TestTimer_ImplicitCleanupUsesNoWait(t *testing.T) {
	fake := useFakeBackend(t)

	func() {
		q, err := NewQueue()
		require.NoError(t, err)

		_, err = q.TimerFunc(func() {}, 60_000, 0, DefaultFlags)
		require.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		runtime.GC()

		calls := fake.Calls()
		return assert.ObjectsAreEqual([]string{
			"CreateQueue",
			"CreateTimer:60000,0",
			"DeleteTimer:nowait",
			"DeleteQueue:nowait",
		}, calls)
	}, 5*time.Second, 10*time.Millisecond)

	assert.Zero(t, closures.Len())
}

func TestFire_UnknownClosureIsSkipped(t *testing.T) {
	assert.Equal(t, uintptr(0), fire(0xdead, 1))
}

// collectingBackend forces collections while a native timer call is in progress.
type collectingBackend struct {
	*fakeBackend
}

func (c collectingBackend) ChangeTimer(queue, timer handle.Handle, dueMs, periodMs uint32) error {
	for range 5 {
		runtime.GC()
	}

	return c.fakeBackend.ChangeTimer(queue, timer, dueMs, periodMs)
}

func newUnheldTimer(t *testing.T) *QueueTimer {
	t.Helper()

	timer, err := DefaultQueue().Timer(0xCAFE, 1, 60_000, 0, DefaultFlags)
	require.NoError(t, err)

	return timer
}

func TestTimer_ResetKeepsTimerAlive(t *testing.T) {
	fake := useFakeBackend(t)
	native = collectingBackend{fake}

	require.NoError(t, newUnheldTimer(t).Reset(5000, 0))
	assert.Equal(t, []string{"CreateTimer:60000,0", "ChangeTimer:5000,0"}, fake.Calls()[:2])

	// Once Reset has returned the timer is unreachable and its cleanup may delete it.
	require.Eventually(t, func() bool {
		runtime.GC()
		return len(fake.Calls()) == 3
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "DeleteTimer:nowait", fake.Calls()[2])
}
