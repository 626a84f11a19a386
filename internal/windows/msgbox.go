//go:build windows

package windows

import (
	w32 "golang.org/x/sys/windows"

	"github.com/Norgate-AV/wintool/internal/winerr"
)

// MessageBox builds a modal message box.
type MessageBox struct {
	owner   HWND
	text    string
	caption string
	flags   uint32
}

// NewMessageBox returns an OK-only box with the given text.
func NewMessageBox(text string) *MessageBox {
	return &MessageBox{text: text, flags: MB_OK}
}

func (m *MessageBox) Text(text string) *MessageBox {
	m.text = text
	return m
}

func (m *MessageBox) Caption(caption string) *MessageBox {
	m.caption = caption
	return m
}

// Flags replaces the MB_* button and icon flags.
func (m *MessageBox) Flags(flags uint32) *MessageBox {
	m.flags = flags
	return m
}

func (m *MessageBox) Owner(hwnd HWND) *MessageBox {
	m.owner = hwnd
	return m
}

// Show displays the box and blocks until dismissed. MessageBoxW signals failure with 0.
func (m *MessageBox) Show() (MsgBoxResult, error) {
	text, err := w32.UTF16PtrFromString(m.text)
	if err != nil {
		return 0, err
	}

	caption, err := utf16PtrOrNil(m.caption)
	if err != nil {
		return 0, err
	}

	r, err := w32.MessageBox(w32.HWND(m.owner), text, caption, m.flags)
	if r == 0 {
		return 0, winerr.FromCall("MessageBoxW", err)
	}

	return MsgBoxResult(r), nil
}
