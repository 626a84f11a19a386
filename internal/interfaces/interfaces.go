// Package interfaces defines core interfaces for dependency injection and testing.
package interfaces

import (
	"time"

	"github.com/Norgate-AV/wintool/internal/windows"
)

// WindowManager handles top-level window operations
type WindowManager interface {
	List(filter windows.Filter) ([]windows.WindowInfo, error)
	FindByPID(pid uint32) (windows.HWND, bool, error)
	CollectChildInfos(hwnd windows.HWND) []windows.ChildInfo
	Close(hwnd windows.HWND, title string) error
	SetForeground(hwnd windows.HWND) bool
	ClickButton(parent windows.HWND, text string) bool
	IsElevated() bool
}

// MessageSender delivers window messages
type MessageSender interface {
	Send(hwnd windows.HWND, msg uint32, wparam, lparam uintptr) uintptr
	SendTimeout(hwnd windows.HWND, msg uint32, wparam, lparam uintptr, timeout time.Duration) (uintptr, error)
	Post(hwnd windows.HWND, msg uint32, wparam, lparam uintptr) error
	SetText(hwnd windows.HWND, text string) error
	GetText(hwnd windows.HWND) string
}

// KeyboardInjector handles keyboard input
type KeyboardInjector interface {
	SendKey(vk uint16) bool
	SendKeyToWindow(hwnd windows.HWND, vk uint16) bool
}

// ProcessInspector reads and controls other processes
type ProcessInspector interface {
	Info(pid uint32) (windows.ProcessInfo, error)
	ReadMemory(pid uint32, addr uintptr, size int) ([]byte, error)
	WriteMemory(pid uint32, addr uintptr, data []byte) (int, error)
	Regions(pid uint32) ([]windows.MemoryInfo, error)
	Terminate(pid uint32) error
}
