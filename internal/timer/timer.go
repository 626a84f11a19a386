// Package timer wraps the kernel timer-queue API.
//
// A TimerQueue holds scheduled callbacks that the OS runs on its own thread pool. Callbacks
// therefore run concurrently with the caller and with each other; nothing here serialises them.
// Deletion is the only cancellation primitive and comes in two flavours, see Completion.
package timer

import (
	"errors"
	"syscall"

	"github.com/Norgate-AV/wintool/internal/callback"
	"github.com/Norgate-AV/wintool/internal/handle"
	"github.com/Norgate-AV/wintool/internal/winerr"
)

var (
	// ErrQueueDeleted is returned when a queue, or a timer on it, is used after the queue was deleted.
	ErrQueueDeleted = errors.New("timer queue already deleted")

	// ErrTimerDeleted is returned when a timer is used after Delete was requested.
	ErrTimerDeleted = errors.New("timer already deleted")
)

// errIOPending is what a NoWait deletion reports while callbacks are still running.
const errIOPending syscall.Errno = 997

// Completion selects how a deletion treats callbacks that are already running.
type Completion int

const (
	// NoWait schedules the deletion and returns at once. Callbacks already handed to a pool
	// thread may still run during or after the return.
	NoWait Completion = iota

	// Wait blocks until every running callback of the object has returned. Never use it from
	// inside one of those callbacks.
	Wait
)

// event maps the policy to the CompletionEvent argument of the native delete calls.
func (c Completion) event() handle.Handle {
	if c == Wait {
		return handle.Invalid
	}

	return handle.Null
}

func (c Completion) String() string {
	if c == Wait {
		return "wait"
	}

	return "nowait"
}

// pending reports whether err only says callbacks are still in flight after a NoWait delete.
func (c Completion) pending(err error) bool {
	if c != NoWait {
		return false
	}

	code, ok := winerr.Code(err)
	return ok && code == errIOPending
}

// Flags control which pool thread runs a timer callback.
type Flags uint32

// DefaultFlags run callbacks on a non-I/O worker thread.
const DefaultFlags Flags = 0

const (
	executeLongFunction       Flags = 0x00000010
	executeOnlyOnce           Flags = 0x00000008
	executeInTimerThread      Flags = 0x00000020
	executeInPersistentThread Flags = 0x00000080
	transferImpersonation     Flags = 0x00000100
)

// OnTimerThread runs the callback on the timer thread itself. Short tasks only.
func (f Flags) OnTimerThread() Flags { return f | executeInTimerThread }

// OnPersistentThread queues the callback to a thread that never terminates.
func (f Flags) OnPersistentThread() Flags { return f | executeInPersistentThread }

// LongFunction hints that the callback may block for a long time.
func (f Flags) LongFunction() Flags { return f | executeLongFunction }

// OnlyOnce signals the timer a single time. The period must then be zero.
func (f Flags) OnlyOnce() Flags { return f | executeOnlyOnce }

// TransferImpersonation runs callbacks with the caller's current access token.
func (f Flags) TransferImpersonation() Flags { return f | transferImpersonation }

// backend is the native timer-queue API.
type backend interface {
	CreateQueue() (handle.Handle, error)
	DeleteQueue(queue, event handle.Handle) error
	CreateTimer(queue handle.Handle, fn, param uintptr, dueMs, periodMs uint32, flags Flags) (handle.Handle, error)
	ChangeTimer(queue, timer handle.Handle, dueMs, periodMs uint32) error
	DeleteTimer(queue, timer, event handle.Handle) error

	// Adapter is the native address of fire, the fixed (param, fired) callback for closures.
	Adapter() uintptr
}

var native backend = newNativeBackend()

var closures callback.Registry[func()]

// fire runs on a pool thread. A closure released by a NoWait delete is silently skipped.
func fire(param, _ uintptr) uintptr {
	if fn, ok := closures.Lookup(param); ok {
		fn()
	}

	return 0
}
