//go:build windows

package windows

import (
	"syscall"
	"time"
	"unsafe"

	"github.com/Norgate-AV/wintool/internal/winerr"
)

// SendMessage sends msg and blocks until the window procedure returns. The result is
// message specific and never an error.
func SendMessage(hwnd HWND, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := procSendMessageW.Call(uintptr(hwnd), uintptr(msg), wparam, lparam)
	return r
}

// SendMessageTimeout sends msg with SMTO_ABORTIFHUNG, giving up after timeout.
// SendMessageTimeoutW signals failure or timeout with 0.
func SendMessageTimeout(hwnd HWND, msg uint32, wparam, lparam uintptr, timeout time.Duration) (uintptr, error) {
	var result uintptr

	r, _, err := procSendMessageTimeoutW.Call(
		uintptr(hwnd),
		uintptr(msg),
		wparam,
		lparam,
		SMTO_ABORTIFHUNG,
		uintptr(timeout.Milliseconds()),
		uintptr(unsafe.Pointer(&result)),
	)
	if r == 0 {
		return 0, winerr.FromCall("SendMessageTimeoutW", err)
	}

	return result, nil
}

// PostMessage queues msg without waiting. PostMessageW signals failure with FALSE.
func PostMessage(hwnd HWND, msg uint32, wparam, lparam uintptr) error {
	r, _, err := procPostMessageW.Call(uintptr(hwnd), uintptr(msg), wparam, lparam)
	if r == 0 {
		return winerr.FromCall("PostMessageW", err)
	}

	return nil
}

// SendPushButton clicks a button control.
func SendPushButton(hwnd HWND) {
	SendMessage(hwnd, BM_CLICK, 0, 0)
}

// SendSysCommand sends a WM_SYSCOMMAND such as SC_CLOSE or SC_MINIMIZE.
func SendSysCommand(hwnd HWND, command uintptr) uintptr {
	return SendMessage(hwnd, WM_SYSCOMMAND, command, 0)
}

// SetText sets a window or control text through WM_SETTEXT, which returns TRUE when set.
func SetText(hwnd HWND, text string) error {
	p, err := syscall.UTF16PtrFromString(text)
	if err != nil {
		return err
	}

	r, _, callErr := procSendMessageW.Call(uintptr(hwnd), WM_SETTEXT, 0, uintptr(unsafe.Pointer(p)))
	if r == 0 {
		return winerr.FromCall("WM_SETTEXT", callErr)
	}

	return nil
}

// GetText reads a control's text through WM_GETTEXT. Unlike Text it works across processes
// for edit controls.
func GetText(hwnd HWND) string {
	length := int(SendMessage(hwnd, WM_GETTEXTLENGTH, 0, 0))
	if length == 0 {
		return ""
	}

	buf := make([]uint16, length+1)
	_, _, _ = procSendMessageW.Call(uintptr(hwnd), WM_GETTEXT, uintptr(len(buf)), uintptr(unsafe.Pointer(&buf[0])))

	return syscall.UTF16ToString(buf)
}

type point struct {
	X, Y int32
}

// Msg is a message retrieved from the calling thread's queue.
type Msg struct {
	Hwnd     HWND
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	lPrivate uint32
}

// Dispatch translates keyboard input and hands the message to its window procedure.
func (m *Msg) Dispatch() uintptr {
	_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(m)))
	r, _, _ := procDispatchMessageW.Call(uintptr(unsafe.Pointer(m)))

	return r
}

// Raw returns the native MSG pointer for APIs not wrapped here.
func (m *Msg) Raw() uintptr {
	return uintptr(unsafe.Pointer(m))
}

// GetMessage blocks until a message for hwnd (0 for any) in [low, high] arrives.
// It returns false once WM_QUIT is retrieved. GetMessageW signals failure with -1.
func GetMessage(hwnd HWND, low, high uint32) (Msg, bool, error) {
	var m Msg

	r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), uintptr(hwnd), uintptr(low), uintptr(high))
	switch int32(r) {
	case -1:
		return m, false, winerr.FromCall("GetMessageW", err)
	case 0:
		return m, false, nil
	default:
		return m, true, nil
	}
}

// PeekMessage checks the queue without blocking. remove is PM_REMOVE or PM_NOREMOVE.
func PeekMessage(hwnd HWND, low, high, remove uint32) (Msg, bool) {
	var m Msg

	r, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), uintptr(hwnd), uintptr(low), uintptr(high), uintptr(remove))
	return m, r != 0
}

// MessageReader reads the calling thread's queue with fixed filters. Message queues are per
// thread: lock the goroutine to its OS thread before reading.
type MessageReader struct {
	hwnd     HWND
	low      uint32
	high     uint32
	blocking bool
}

// NewMessageReader returns a blocking reader for every message of the thread.
func NewMessageReader() *MessageReader {
	return &MessageReader{blocking: true}
}

func (r *MessageReader) Window(hwnd HWND) *MessageReader {
	r.hwnd = hwnd
	return r
}

func (r *MessageReader) Low(msg uint32) *MessageReader {
	r.low = msg
	return r
}

func (r *MessageReader) High(msg uint32) *MessageReader {
	r.high = msg
	return r
}

func (r *MessageReader) Blocking() *MessageReader {
	r.blocking = true
	return r
}

func (r *MessageReader) NonBlocking() *MessageReader {
	r.blocking = false
	return r
}

// Next returns the next message. ok is false on WM_QUIT when blocking, or when the queue is
// empty when non-blocking.
func (r *MessageReader) Next() (msg Msg, ok bool, err error) {
	if r.blocking {
		return GetMessage(r.hwnd, r.low, r.high)
	}

	msg, ok = PeekMessage(r.hwnd, r.low, r.high, PM_REMOVE)
	return msg, ok, nil
}
