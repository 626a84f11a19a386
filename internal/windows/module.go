//go:build windows

package windows

import (
	"unsafe"

	w32 "golang.org/x/sys/windows"

	"github.com/Norgate-AV/wintool/internal/winerr"
)

const (
	getModuleHandleExFlagUnchangedRefcount = 0x2
	getModuleHandleExFlagFromAddress       = 0x4
)

// ModuleFromAddress returns the loaded module containing addr without taking a reference.
// GetModuleHandleExW signals failure with FALSE.
func ModuleFromAddress(addr uintptr) (w32.Handle, error) {
	var module w32.Handle

	r, _, err := procGetModuleHandleExW.Call(
		getModuleHandleExFlagFromAddress|getModuleHandleExFlagUnchangedRefcount,
		addr,
		uintptr(unsafe.Pointer(&module)),
	)
	if r == 0 {
		return 0, winerr.FromCall("GetModuleHandleExW", err)
	}

	return module, nil
}

// ModuleFileName returns the path of a loaded module; 0 is the executable.
// GetModuleFileNameW signals failure with 0 and truncation by filling the buffer.
func ModuleFileName(module w32.Handle) (string, error) {
	for size := uint32(w32.MAX_PATH); size <= w32.MAX_LONG_PATH; size *= 2 {
		buf := make([]uint16, size)

		n, err := w32.GetModuleFileName(module, &buf[0], size)
		if err != nil && n == 0 {
			return "", winerr.FromCall("GetModuleFileNameW", err)
		}

		if n < size {
			return w32.UTF16ToString(buf[:n]), nil
		}
	}

	return "", winerr.New("GetModuleFileNameW", w32.ERROR_INSUFFICIENT_BUFFER)
}

// OwnModule returns the module holding this program's native callbacks, the executable.
func OwnModule() (w32.Handle, error) {
	return ModuleFromAddress(enumCallback)
}
