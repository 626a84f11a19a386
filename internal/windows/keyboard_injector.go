//go:build windows

package windows

import (
	"log/slog"
	"time"
	"unsafe"

	"github.com/Norgate-AV/wintool/internal/logger"
	"github.com/Norgate-AV/wintool/internal/timeouts"
)

const (
	WM_KEYDOWN = 0x0100
	WM_KEYUP   = 0x0101

	INPUT_KEYBOARD        = 1
	KEYEVENTF_EXTENDEDKEY = 0x0001
	KEYEVENTF_KEYUP       = 0x0002

	MAPVK_VK_TO_VSC = 0
)

var (
	procSendInput      = user32.NewProc("SendInput")
	procMapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

// KEYBDINPUT is the keyboard member of the INPUT union
type KEYBDINPUT struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// INPUT is the SendInput record
type INPUT struct {
	Type uint32
	_    [4]byte  // Padding to align to 8 bytes
	Data [32]byte // Union data (largest is MOUSEINPUT at 24 bytes, padded to 32)
}

// keyboardInjector implements the KeyboardInjector interface
type keyboardInjector struct {
	log logger.LoggerInterface
}

// newKeyboardInjector creates a new keyboard injector
func newKeyboardInjector(log logger.LoggerInterface) *keyboardInjector {
	return &keyboardInjector{log: log}
}

// SendKey presses and releases vk on the foreground window using SendInput
func (k *keyboardInjector) SendKey(vk uint16) bool {
	k.log.Debug("Sending key via SendInput", slog.Uint64("vk", uint64(vk)))

	flags := uint32(0)
	if extendedKeys[vk] {
		flags = KEYEVENTF_EXTENDEDKEY
	}

	inputs := make([]INPUT, 2)

	inputs[0].Type = INPUT_KEYBOARD
	down := (*KEYBDINPUT)(unsafe.Pointer(&inputs[0].Data[0]))
	down.WVk = vk
	down.DwFlags = flags

	inputs[1].Type = INPUT_KEYBOARD
	up := (*KEYBDINPUT)(unsafe.Pointer(&inputs[1].Data[0]))
	up.WVk = vk
	up.DwFlags = flags | KEYEVENTF_KEYUP

	ret, _, _ := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		uintptr(unsafe.Sizeof(INPUT{})),
	)

	if ret != uintptr(len(inputs)) {
		k.log.Warn("SendInput failed", slog.Uint64("expected", uint64(len(inputs))), slog.Uint64("sent", uint64(ret)))
		return false
	}

	return true
}

// SendKeyToWindow delivers a key press straight to hwnd's window procedure with
// WM_KEYDOWN/WM_KEYUP, so the window does not need focus
func (k *keyboardInjector) SendKeyToWindow(hwnd HWND, vk uint16) bool {
	scan, _, _ := procMapVirtualKeyW.Call(uintptr(vk), MAPVK_VK_TO_VSC)
	extended := extendedKeys[vk]

	k.log.Debug("Sending key to window",
		slog.Uint64("hwnd", uint64(hwnd)),
		slog.Uint64("vk", uint64(vk)),
		slog.Uint64("scan", uint64(scan)))

	if _, err := SendMessageTimeout(hwnd, WM_KEYDOWN, uintptr(vk), keyLParam(uint32(scan), extended, false), timeouts.MessageTimeout); err != nil {
		k.log.Warn("WM_KEYDOWN failed", slog.Any("error", err))
		return false
	}

	time.Sleep(timeouts.KeystrokeDelay)

	if _, err := SendMessageTimeout(hwnd, WM_KEYUP, uintptr(vk), keyLParam(uint32(scan), extended, true), timeouts.MessageTimeout); err != nil {
		k.log.Warn("WM_KEYUP failed", slog.Any("error", err))
		return false
	}

	return true
}
