//go:build windows

package windows

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Norgate-AV/wintool/internal/logger"
	"github.com/Norgate-AV/wintool/internal/timeouts"
)

// windowManager implements the WindowManager interface
type windowManager struct {
	log logger.LoggerInterface
}

// newWindowManager creates a new window manager
func newWindowManager(log logger.LoggerInterface) *windowManager {
	return &windowManager{log: log}
}

// List describes the windows matching filter
func (w *windowManager) List(filter Filter) ([]WindowInfo, error) {
	infos, err := List(filter)
	if err != nil {
		w.log.Debug("Window enumeration failed", slog.Any("error", err))
		return nil, err
	}

	w.log.Trace("Windows listed", slog.Int("count", len(infos)))
	return infos, nil
}

// FindByPID returns the first top-level window of pid
func (w *windowManager) FindByPID(pid uint32) (HWND, bool, error) {
	return FindByPID(pid)
}

// CollectChildInfos collects information about all child windows
func (w *windowManager) CollectChildInfos(hwnd HWND) []ChildInfo {
	infos, err := CollectChildInfos(hwnd)
	if err != nil {
		w.log.Debug("EnumChildWindows failed",
			slog.Uint64("hwnd", uint64(hwnd)),
			slog.Any("error", err))
	}

	return infos
}

// Close posts a WM_CLOSE message to the specified window
func (w *windowManager) Close(hwnd HWND, title string) error {
	w.log.Debug("Closing window", slog.String("title", title))

	if err := PostMessage(hwnd, WM_CLOSE, 0, 0); err != nil {
		w.log.Debug("PostMessage WM_CLOSE failed",
			slog.String("title", title),
			slog.Uint64("hwnd", uint64(hwnd)),
			slog.Any("error", err))
		return err
	}

	time.Sleep(timeouts.WindowMessageDelay)
	return nil
}

// SetForeground brings a window to the foreground using AttachThreadInput technique
func (w *windowManager) SetForeground(hwnd HWND) bool {
	// Restore window if minimized
	Show(hwnd, SW_RESTORE)

	// Try standard SetForegroundWindow first
	ret, _, _ := procSetForegroundWindow.Call(uintptr(hwnd))
	if ret != 0 {
		w.log.Debug("SetForegroundWindow succeeded (standard)")
		return w.verifyForeground(hwnd)
	}

	w.log.Debug("Standard SetForegroundWindow failed, trying AttachThreadInput technique")

	fgHwnd := ForegroundWindow()
	if fgHwnd == 0 || fgHwnd == hwnd {
		w.log.Debug("No foreground window or already focused")
		return true
	}

	_, fgThreadID, err := ThreadProcessID(fgHwnd)
	if err != nil {
		w.log.Warn("Could not get foreground thread", slog.Any("error", err))
		return false
	}

	_, targetThreadID, err := ThreadProcessID(hwnd)
	if err != nil {
		w.log.Warn("Could not get target thread", slog.Any("error", err))
		return false
	}

	w.log.Debug("Attaching threads",
		slog.Uint64("fgThreadID", uint64(fgThreadID)),
		slog.Uint64("targetThreadID", uint64(targetThreadID)))

	ret, _, _ = procAttachThreadInput.Call(uintptr(targetThreadID), uintptr(fgThreadID), 1)
	if ret == 0 {
		w.log.Warn("AttachThreadInput failed")
		return false
	}

	ret, _, _ = procSetForegroundWindow.Call(uintptr(hwnd))
	success := ret != 0

	ret, _, _ = procAttachThreadInput.Call(uintptr(targetThreadID), uintptr(fgThreadID), 0)
	if ret == 0 {
		w.log.Warn("Failed to detach threads")
	}

	if success {
		w.log.Debug("SetForegroundWindow succeeded (with AttachThreadInput)")
		return w.verifyForeground(hwnd)
	}

	w.log.Warn("SetForegroundWindow still failed after AttachThreadInput")
	return false
}

// verifyForeground checks if the window is now in foreground
func (w *windowManager) verifyForeground(hwnd HWND) bool {
	time.Sleep(timeouts.WindowMessageDelay)

	fgHwnd := ForegroundWindow()
	if fgHwnd == hwnd {
		w.log.Debug("Window confirmed in foreground")
		return true
	}

	w.log.Warn("Different window in foreground",
		slog.Uint64("expected", uint64(hwnd)),
		slog.Uint64("got", uint64(fgHwnd)))

	return false
}

// ClickButton finds a button child control with the specified text and clicks it
func (w *windowManager) ClickButton(parent HWND, text string) bool {
	for _, ci := range w.CollectChildInfos(parent) {
		if ci.ClassName == "Button" && strings.EqualFold(strings.ReplaceAll(ci.Text, "&", ""), text) {
			w.log.Debug("Found button, sending click",
				slog.String("text", text),
				slog.Uint64("hwnd", uint64(ci.Hwnd)),
			)

			SendPushButton(ci.Hwnd)
			return true
		}
	}

	w.log.Debug("Button not found", slog.String("text", text))
	return false
}

// IsElevated returns whether the current process is running with administrator privileges
func (w *windowManager) IsElevated() bool {
	return IsElevated()
}
