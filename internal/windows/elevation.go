//go:build windows

package windows

import (
	"fmt"
	"os"
	"strings"

	w32 "golang.org/x/sys/windows"

	"github.com/Norgate-AV/wintool/internal/winerr"
)

// IsElevated reports whether the current process token is elevated
func IsElevated() bool {
	return w32.GetCurrentProcessToken().IsElevated()
}

// RelaunchAsAdmin starts this executable again through the "runas" verb with the same
// arguments. The caller is expected to exit afterwards.
func RelaunchAsAdmin() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	// Check if running via 'go run' (exe will be in temp dir)
	if strings.Contains(exe, "go-build") {
		return fmt.Errorf("cannot relaunch when run via 'go run', please build the executable first with: go build -o wintool.exe")
	}

	return ShellExecute(0, "runas", exe, w32.ComposeCommandLine(os.Args[1:]), "", w32.SW_NORMAL)
}

// ShellExecute executes a file using the Windows shell. ShellExecuteW signals failure with
// a result of 32 or less.
func ShellExecute(hwnd HWND, verb, file, args, cwd string, showCmd int32) error {
	verbPtr, err := utf16PtrOrNil(verb)
	if err != nil {
		return err
	}

	filePtr, err := w32.UTF16PtrFromString(file)
	if err != nil {
		return err
	}

	argsPtr, err := utf16PtrOrNil(args)
	if err != nil {
		return err
	}

	cwdPtr, err := utf16PtrOrNil(cwd)
	if err != nil {
		return err
	}

	if err := w32.ShellExecute(w32.HWND(hwnd), verbPtr, filePtr, argsPtr, cwdPtr, showCmd); err != nil {
		return winerr.FromCall("ShellExecuteW", err)
	}

	return nil
}
