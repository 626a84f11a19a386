//go:build windows

package windows

import (
	"sync"
	"sync/atomic"

	w32 "golang.org/x/sys/windows"

	"github.com/Norgate-AV/wintool/internal/winerr"
)

// ConsoleCtrlHandler is a callback function for console control events
type ConsoleCtrlHandler func(ctrlType uint32) uintptr

var (
	ctrlHandler  atomic.Pointer[ConsoleCtrlHandler]
	registerCtrl sync.Once
	registerErr  error
)

// SetConsoleCtrlHandler sets up a Windows console control handler
// This catches Ctrl+C, window close, logoff, and shutdown events
// Later calls replace the handler; the native registration happens once.
func SetConsoleCtrlHandler(handler ConsoleCtrlHandler) error {
	ctrlHandler.Store(&handler)

	registerCtrl.Do(func() {
		ret, _, err := procSetConsoleCtrlHandler.Call(w32.NewCallback(consoleCtrlHandlerCallback), 1)
		if ret == 0 {
			registerErr = winerr.FromCall("SetConsoleCtrlHandler", err)
		}
	})

	return registerErr
}

// consoleCtrlHandlerCallback is the actual callback that Windows calls
func consoleCtrlHandlerCallback(ctrlType uint32) uintptr {
	if h := ctrlHandler.Load(); h != nil && *h != nil {
		return (*h)(ctrlType)
	}

	return 0 // FALSE - let default handler process it
}

// Console control event types
const (
	CTRL_C_EVENT        = 0
	CTRL_BREAK_EVENT    = 1
	CTRL_CLOSE_EVENT    = 2
	CTRL_LOGOFF_EVENT   = 5
	CTRL_SHUTDOWN_EVENT = 6
)

// GetCtrlTypeName returns a human-readable name for a control event type
func GetCtrlTypeName(ctrlType uint32) string {
	switch ctrlType {
	case CTRL_C_EVENT:
		return "CTRL_C"
	case CTRL_BREAK_EVENT:
		return "CTRL_BREAK"
	case CTRL_CLOSE_EVENT:
		return "CTRL_CLOSE"
	case CTRL_LOGOFF_EVENT:
		return "CTRL_LOGOFF"
	case CTRL_SHUTDOWN_EVENT:
		return "CTRL_SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}
