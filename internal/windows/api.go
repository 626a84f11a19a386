//go:build windows

package windows

import (
	"errors"
	"runtime"
	"syscall"

	w32 "golang.org/x/sys/windows"

	"github.com/Norgate-AV/wintool/internal/enum"
	"github.com/Norgate-AV/wintool/internal/winerr"
)

var (
	kernel32 = w32.NewLazySystemDLL("kernel32.dll")
	user32   = w32.NewLazySystemDLL("user32.dll")

	procSetLastError          = kernel32.NewProc("SetLastError")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procGetModuleHandleExW    = kernel32.NewProc("GetModuleHandleExW")
	procFindFirstFileExW      = kernel32.NewProc("FindFirstFileExW")
	procFindNextFileW         = kernel32.NewProc("FindNextFileW")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procEnumChildWindows         = user32.NewProc("EnumChildWindows")
	procFindWindowW              = user32.NewProc("FindWindowW")
	procFindWindowExW            = user32.NewProc("FindWindowExW")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procRealGetWindowClassW      = user32.NewProc("RealGetWindowClassW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetActiveWindow          = user32.NewProc("GetActiveWindow")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
	procShowWindow               = user32.NewProc("ShowWindow")
	procDestroyWindow            = user32.NewProc("DestroyWindow")
	procSendMessageW             = user32.NewProc("SendMessageW")
	procSendMessageTimeoutW      = user32.NewProc("SendMessageTimeoutW")
	procPostMessageW             = user32.NewProc("PostMessageW")
	procGetMessageW              = user32.NewProc("GetMessageW")
	procPeekMessageW             = user32.NewProc("PeekMessageW")
	procTranslateMessage         = user32.NewProc("TranslateMessage")
	procDispatchMessageW         = user32.NewProc("DispatchMessageW")
)

const (
	WM_NULL          = 0x0000
	WM_SETTEXT       = 0x000C
	WM_GETTEXT       = 0x000D
	WM_GETTEXTLENGTH = 0x000E
	WM_CLOSE         = 0x0010
	WM_QUIT          = 0x0012
	WM_COMMAND       = 0x0111
	WM_SYSCOMMAND    = 0x0112
	BM_CLICK         = 0x00F5
	LB_GETCOUNT      = 0x018B
	LB_GETTEXT       = 0x0189
	LB_GETTEXTLEN    = 0x018A

	SMTO_NORMAL      = 0x0000
	SMTO_BLOCK       = 0x0001
	SMTO_ABORTIFHUNG = 0x0002

	SC_CLOSE    = 0xF060
	SC_MINIMIZE = 0xF020
	SC_MAXIMIZE = 0xF030
	SC_RESTORE  = 0xF120

	SW_HIDE    = 0
	SW_SHOW    = 5
	SW_RESTORE = 9

	PM_NOREMOVE = 0x0000
	PM_REMOVE   = 0x0001
)

// ErrNotFound is returned by lookups that completed without a match.
var ErrNotFound = errors.New("window not found")

// enumCallback serves every (item, LPARAM) -> BOOL enumeration; created once since the
// runtime never frees callbacks.
var enumCallback = w32.NewCallback(enum.Trampoline)

// threadLastError clears the calling thread's last-error slot.
type threadLastError struct{}

func (threadLastError) Clear() {
	_, _, _ = procSetLastError.Call(0)
}

// errnoOf extracts the code LazyProc.Call captured right after the native call.
func errnoOf(err error) syscall.Errno {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}

	return 0
}

// zeroAmbiguous runs a native call whose zero result is either a failure or a legitimate
// zero. The last error is cleared first, so only a non-zero code after a zero result is a
// failure. call must make the native call itself so pointer arguments stay valid.
func zeroAmbiguous(op string, call func() (uintptr, error)) (uintptr, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	threadLastError{}.Clear()

	r, err := call()
	if r == 0 {
		if code := errnoOf(err); code != 0 {
			return 0, winerr.New(op, code)
		}
	}

	return r, nil
}

// utf16PtrOrNil maps "" to a null pointer so optional string arguments match anything.
func utf16PtrOrNil(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}

	return w32.UTF16PtrFromString(s)
}
