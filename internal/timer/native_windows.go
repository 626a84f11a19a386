//go:build windows

package timer

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Norgate-AV/wintool/internal/handle"
	"github.com/Norgate-AV/wintool/internal/winerr"
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procCreateTimerQueue          = modkernel32.NewProc("CreateTimerQueue")
	procDeleteTimerQueueEx        = modkernel32.NewProc("DeleteTimerQueueEx")
	procCreateTimerQueueTimer     = modkernel32.NewProc("CreateTimerQueueTimer")
	procChangeTimerQueueTimer     = modkernel32.NewProc("ChangeTimerQueueTimer")
	procDeleteTimerQueueTimer     = modkernel32.NewProc("DeleteTimerQueueTimer")
	procQueryPerformanceCounter   = modkernel32.NewProc("QueryPerformanceCounter")
	procQueryPerformanceFrequency = modkernel32.NewProc("QueryPerformanceFrequency")
)

// fireCallback is created once; the runtime never frees callbacks.
var fireCallback = windows.NewCallback(fire)

type kernelBackend struct{}

func newNativeBackend() backend {
	return kernelBackend{}
}

func (kernelBackend) Adapter() uintptr {
	return fireCallback
}

func (kernelBackend) CreateQueue() (handle.Handle, error) {
	r, _, err := procCreateTimerQueue.Call()
	if r == 0 {
		return handle.Null, winerr.FromCall("CreateTimerQueue", err)
	}

	return handle.Handle(r), nil
}

func (kernelBackend) DeleteQueue(queue, event handle.Handle) error {
	r, _, err := procDeleteTimerQueueEx.Call(uintptr(queue), uintptr(event))
	if r == 0 {
		return winerr.FromCall("DeleteTimerQueueEx", err)
	}

	return nil
}

func (kernelBackend) CreateTimer(queue handle.Handle, fn, param uintptr, dueMs, periodMs uint32, flags Flags) (handle.Handle, error) {
	var timer uintptr

	r, _, err := procCreateTimerQueueTimer.Call(
		uintptr(unsafe.Pointer(&timer)),
		uintptr(queue),
		fn,
		param,
		uintptr(dueMs),
		uintptr(periodMs),
		uintptr(flags),
	)
	if r == 0 {
		return handle.Null, winerr.FromCall("CreateTimerQueueTimer", err)
	}

	return handle.Handle(timer), nil
}

func (kernelBackend) ChangeTimer(queue, timer handle.Handle, dueMs, periodMs uint32) error {
	r, _, err := procChangeTimerQueueTimer.Call(uintptr(queue), uintptr(timer), uintptr(dueMs), uintptr(periodMs))
	if r == 0 {
		return winerr.FromCall("ChangeTimerQueueTimer", err)
	}

	return nil
}

func (kernelBackend) DeleteTimer(queue, timer, event handle.Handle) error {
	r, _, err := procDeleteTimerQueueTimer.Call(uintptr(queue), uintptr(timer), uintptr(event))
	if r == 0 {
		return winerr.FromCall("DeleteTimerQueueTimer", err)
	}

	return nil
}

// PerformanceCounter returns the current high-resolution counter value.
func PerformanceCounter() (int64, error) {
	var v int64

	r, _, err := procQueryPerformanceCounter.Call(uintptr(unsafe.Pointer(&v)))
	if r == 0 {
		return 0, winerr.FromCall("QueryPerformanceCounter", err)
	}

	return v, nil
}

// PerformanceFrequency returns the counter's ticks per second.
func PerformanceFrequency() (int64, error) {
	var v int64

	r, _, err := procQueryPerformanceFrequency.Call(uintptr(unsafe.Pointer(&v)))
	if r == 0 {
		return 0, winerr.FromCall("QueryPerformanceFrequency", err)
	}

	return v, nil
}
