//go:build windows

package windows

import (
	"log/slog"
	"time"

	"github.com/Norgate-AV/wintool/internal/logger"
)

// messenger implements the MessageSender interface
type messenger struct {
	log logger.LoggerInterface
}

func newMessenger(log logger.LoggerInterface) *messenger {
	return &messenger{log: log}
}

func (m *messenger) Send(hwnd HWND, msg uint32, wparam, lparam uintptr) uintptr {
	r := SendMessage(hwnd, msg, wparam, lparam)
	m.log.Debug("SendMessage",
		slog.Uint64("hwnd", uint64(hwnd)),
		slog.Uint64("msg", uint64(msg)),
		slog.Uint64("result", uint64(r)))

	return r
}

func (m *messenger) SendTimeout(hwnd HWND, msg uint32, wparam, lparam uintptr, timeout time.Duration) (uintptr, error) {
	r, err := SendMessageTimeout(hwnd, msg, wparam, lparam, timeout)
	if err != nil {
		m.log.Debug("SendMessageTimeout failed",
			slog.Uint64("hwnd", uint64(hwnd)),
			slog.Uint64("msg", uint64(msg)),
			slog.Any("error", err))
		return 0, err
	}

	return r, nil
}

func (m *messenger) Post(hwnd HWND, msg uint32, wparam, lparam uintptr) error {
	if err := PostMessage(hwnd, msg, wparam, lparam); err != nil {
		m.log.Debug("PostMessage failed",
			slog.Uint64("hwnd", uint64(hwnd)),
			slog.Uint64("msg", uint64(msg)),
			slog.Any("error", err))
		return err
	}

	return nil
}

func (m *messenger) SetText(hwnd HWND, text string) error {
	return SetText(hwnd, text)
}

func (m *messenger) GetText(hwnd HWND) string {
	return GetText(hwnd)
}
