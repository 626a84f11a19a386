//go:build windows

package windows

import (
	"syscall"
	"unsafe"

	"github.com/Norgate-AV/wintool/internal/winerr"
)

const (
	maxClassName      = 256
	errorFileNotFound = syscall.Errno(2)
)

// Class returns the window class name. RealGetWindowClassW signals failure with 0.
func Class(hwnd HWND) (string, error) {
	buf := make([]uint16, maxClassName)

	r, _, err := procRealGetWindowClassW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		return "", winerr.FromCall("RealGetWindowClassW", err)
	}

	return syscall.UTF16ToString(buf[:r]), nil
}

// Text returns the window title. An empty title is not an error; GetWindowTextW returns 0
// both for that and for a failure, told apart by the last error.
func Text(hwnd HWND) (string, error) {
	n, err := zeroAmbiguous("GetWindowTextLengthW", func() (uintptr, error) {
		r, _, err := procGetWindowTextLengthW.Call(uintptr(hwnd))
		return r, err
	})
	if err != nil || n == 0 {
		return "", err
	}

	buf := make([]uint16, n+1)

	r, err := zeroAmbiguous("GetWindowTextW", func() (uintptr, error) {
		r, _, err := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		return r, err
	})
	if err != nil {
		return "", err
	}

	return syscall.UTF16ToString(buf[:r]), nil
}

// IsWindow checks if a window handle is valid
func IsWindow(hwnd HWND) bool {
	ret, _, _ := procIsWindow.Call(uintptr(hwnd))
	return ret != 0
}

// IsVisible checks if a window has the WS_VISIBLE style
func IsVisible(hwnd HWND) bool {
	ret, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
	return ret != 0
}

// ThreadProcessID returns the process and thread that created hwnd.
// GetWindowThreadProcessId signals failure with a zero thread id.
func ThreadProcessID(hwnd HWND) (pid, tid uint32, err error) {
	r, _, callErr := procGetWindowThreadProcessId.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
	if r == 0 {
		return 0, 0, winerr.FromCall("GetWindowThreadProcessId", callErr)
	}

	return pid, uint32(r), nil
}

// Find returns the top-level window matching class and title; "" matches any.
func Find(class, title string) (HWND, error) {
	return FindChild(0, 0, class, title)
}

// FindChild searches the children of parent after the child after. A zero parent searches
// top-level windows. FindWindowExW signals failure with a null handle; a miss, reported with
// no code or ERROR_FILE_NOT_FOUND, returns ErrNotFound.
func FindChild(parent, after HWND, class, title string) (HWND, error) {
	classPtr, err := utf16PtrOrNil(class)
	if err != nil {
		return 0, err
	}

	titlePtr, err := utf16PtrOrNil(title)
	if err != nil {
		return 0, err
	}

	op, call := "FindWindowExW", func() (uintptr, error) {
		r, _, err := procFindWindowExW.Call(
			uintptr(parent),
			uintptr(after),
			uintptr(unsafe.Pointer(classPtr)),
			uintptr(unsafe.Pointer(titlePtr)),
		)
		return r, err
	}

	if parent == 0 && after == 0 {
		op, call = "FindWindowW", func() (uintptr, error) {
			r, _, err := procFindWindowW.Call(uintptr(unsafe.Pointer(classPtr)), uintptr(unsafe.Pointer(titlePtr)))
			return r, err
		}
	}

	r, err := zeroAmbiguous(op, call)
	if code, ok := winerr.Code(err); ok && code == errorFileNotFound {
		return 0, ErrNotFound
	}

	if err != nil {
		return 0, err
	}

	if r == 0 {
		return 0, ErrNotFound
	}

	return HWND(r), nil
}

// ActiveWindow returns the active window attached to the calling thread, or 0.
func ActiveWindow() HWND {
	r, _, _ := procGetActiveWindow.Call()
	return HWND(r)
}

// ForegroundWindow returns the window the user is currently working with, or 0.
func ForegroundWindow() HWND {
	r, _, _ := procGetForegroundWindow.Call()
	return HWND(r)
}

// ConsoleWindow returns the console window of the calling process, or 0 when it has none.
func ConsoleWindow() HWND {
	r, _, _ := procGetConsoleWindow.Call()
	return HWND(r)
}

// Show sets the show state and reports whether the window was previously visible.
func Show(hwnd HWND, cmd int32) bool {
	r, _, _ := procShowWindow.Call(uintptr(hwnd), uintptr(cmd))
	return r != 0
}

// Destroy destroys a window created by the calling thread. DestroyWindow signals failure
// with FALSE.
func Destroy(hwnd HWND) error {
	r, _, err := procDestroyWindow.Call(uintptr(hwnd))
	if r == 0 {
		return winerr.FromCall("DestroyWindow", err)
	}

	return nil
}
