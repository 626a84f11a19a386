// Package enum adapts native "for each item, call me back" APIs to Go closures.
//
// Native enumerators such as EnumWindows take a fixed-signature callback and one opaque
// parameter. Trampoline is that callback for every such family: the parameter is an id in a
// registry, never a Go pointer, and the id resolves to the visitor of the running enumeration.
package enum

import (
	"runtime"
	"syscall"

	"github.com/Norgate-AV/wintool/internal/callback"
	"github.com/Norgate-AV/wintool/internal/winerr"
)

// Return codes expected by (item, LPARAM) -> BOOL enumeration callbacks.
const (
	Continue uintptr = 1
	Stop     uintptr = 0
)

// Native performs one native enumeration, passing param through to Trampoline.
// It returns the native success flag and the last error captured straight after the call.
type Native func(param uintptr) (ok bool, lastErr syscall.Errno)

// LastError clears the calling thread's last-error value.
type LastError interface {
	Clear()
}

// visitor is invoked once per enumerated item and reports whether to continue.
type visitor interface {
	visit(item uintptr) bool
}

type visitAll func(item uintptr)

func (f visitAll) visit(item uintptr) bool {
	f(item)
	return true
}

type visitUntil struct {
	fn    func(item uintptr) bool
	state LastError
}

func (v visitUntil) visit(item uintptr) bool {
	if v.fn(item) {
		return true
	}

	// Win32 calls made inside fn may have set a code; a requested stop must read as "no error".
	v.state.Clear()
	return false
}

var visitors callback.Registry[visitor]

// Trampoline is the native callback body shared by every enumeration family.
// An unknown param stops the enumeration.
func Trampoline(item, param uintptr) uintptr {
	v, ok := visitors.Lookup(param)
	if !ok {
		return Stop
	}

	if v.visit(item) {
		return Continue
	}

	return Stop
}

// All calls fn for every item. It returns an error only when the native call fails with a
// non-zero last error.
func All(op string, native Native, state LastError, fn func(item uintptr)) error {
	return run(op, native, state, visitAll(fn))
}

// Until calls fn for each item until fn returns false.
//
// A callback-requested stop and a genuine failure both make the native call return FALSE.
// The last error is cleared before the call, so after it only a non-zero code is a failure.
func Until(op string, native Native, state LastError, fn func(item uintptr) bool) error {
	return run(op, native, state, visitUntil{fn: fn, state: state})
}

func run(op string, native Native, state LastError, v visitor) error {
	id := visitors.Register(v)
	defer visitors.Release(id)

	// Clear and call must hit the same OS thread's last-error slot.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	state.Clear()

	ok, code := native(id)
	if ok || code == 0 {
		return nil
	}

	return winerr.New(op, code)
}
