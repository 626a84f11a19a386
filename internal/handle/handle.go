// Package handle provides single-owner wrappers around native OS handles.
package handle

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
)

// Handle is an opaque native object handle.
type Handle uintptr

// Sentinels differ per native family and must never be conflated: process and timer
// handles use Null, search cursors use Invalid.
const (
	Null    Handle = 0
	Invalid Handle = ^Handle(0)
)

// ErrReleased is returned when a Resource is used after Close or Leak.
var ErrReleased = errors.New("handle already released")

// fatal terminates the process when an implicit release fails. Replaced in tests.
var fatal = func(v any) {
	panic(v)
}

// ReleaseFunc closes a handle of one native family.
type ReleaseFunc func(Handle) error

// Resource owns exactly one native handle. The handle is released by Close, or by the
// runtime once the Resource becomes unreachable. Leak transfers ownership to the caller.
type Resource struct {
	h        atomic.Uintptr
	sentinel Handle
	release  ReleaseFunc
	name     string
	cleanup  runtime.Cleanup
}

type cleanupArg struct {
	h       Handle
	name    string
	release ReleaseFunc
}

// New takes ownership of h. sentinel is the "no object" value of h's family.
// The name is used in diagnostics only.
func New(name string, h Handle, sentinel Handle, release ReleaseFunc) *Resource {
	r := &Resource{sentinel: sentinel, release: release, name: name}
	r.h.Store(uintptr(h))

	if h != sentinel {
		r.cleanup = runtime.AddCleanup(r, releaseOrAbort, cleanupArg{h: h, name: name, release: release})
	}

	return r
}

// releaseOrAbort runs on the cleanup goroutine. There is nobody to return an error to,
// so a failed release of an OS handle is fatal rather than a silent leak.
func releaseOrAbort(arg cleanupArg) {
	if err := arg.release(arg.h); err != nil {
		fatal(fmt.Sprintf("handle: unable to release %s %#x: %v", arg.name, uintptr(arg.h), err))
	}
}

// Handle returns the owned handle, or the sentinel once released.
func (r *Resource) Handle() Handle {
	return Handle(r.h.Load())
}

// Valid reports whether the resource still owns a handle.
func (r *Resource) Valid() bool {
	return r.Handle() != r.sentinel
}

// Close releases the handle and reports the native failure, if any.
func (r *Resource) Close() error {
	h := r.take()
	if h == r.sentinel {
		return ErrReleased
	}

	return r.release(h)
}

// Leak returns the handle and gives up ownership; it will not be released automatically.
func (r *Resource) Leak() Handle {
	return r.take()
}

func (r *Resource) take() Handle {
	h := Handle(r.h.Swap(uintptr(r.sentinel)))
	if h != r.sentinel {
		r.cleanup.Stop()
	}

	return h
}

func (r *Resource) String() string {
	return fmt.Sprintf("%s(%#x)", r.name, uintptr(r.Handle()))
}
