//go:build windows

package windows

import (
	"fmt"
	"runtime"

	w32 "golang.org/x/sys/windows"

	"github.com/Norgate-AV/wintool/internal/handle"
	"github.com/Norgate-AV/wintool/internal/winerr"
)

// Access rights commonly combined for OpenProcess.
const (
	PROCESS_TERMINATE                 = w32.PROCESS_TERMINATE
	PROCESS_VM_READ                   = w32.PROCESS_VM_READ
	PROCESS_VM_WRITE                  = w32.PROCESS_VM_WRITE
	PROCESS_VM_OPERATION              = w32.PROCESS_VM_OPERATION
	PROCESS_QUERY_INFORMATION         = w32.PROCESS_QUERY_INFORMATION
	PROCESS_QUERY_LIMITED_INFORMATION = w32.PROCESS_QUERY_LIMITED_INFORMATION
)

// Process owns an open process handle. Closing it is explicit through Close; a Process that
// becomes unreachable is closed by the runtime, and a failure to close then aborts.
type Process struct {
	res    *handle.Resource
	pid    uint32
	pseudo bool
}

func closeHandle(h handle.Handle) error {
	if err := w32.CloseHandle(w32.Handle(h)); err != nil {
		return winerr.FromCall("CloseHandle", err)
	}

	return nil
}

// OpenProcess opens pid with the given access. OpenProcess signals failure with a null handle.
func OpenProcess(pid uint32, access uint32) (*Process, error) {
	h, err := w32.OpenProcess(access, false, pid)
	if err != nil {
		return nil, winerr.FromCall("OpenProcess", err)
	}

	return &Process{
		res: handle.New("process", handle.Handle(h), handle.Null, closeHandle),
		pid: pid,
	}, nil
}

// CurrentProcess returns the calling process through its pseudo handle, which is never closed.
func CurrentProcess() *Process {
	// The pseudo handle equals the Invalid sentinel, so the Resource does not own it.
	return &Process{
		res:    handle.New("process", handle.Handle(w32.CurrentProcess()), handle.Invalid, closeHandle),
		pid:    w32.GetCurrentProcessId(),
		pseudo: true,
	}
}

func (p *Process) PID() uint32 { return p.pid }

func (p *Process) Handle() w32.Handle {
	if p.pseudo {
		return w32.CurrentProcess()
	}

	return w32.Handle(p.res.Handle())
}

// live returns the handle for a native call, or handle.ErrReleased once Close has run.
// Callers must keep p reachable until the call returns.
func (p *Process) live() (w32.Handle, error) {
	if !p.pseudo && !p.res.Valid() {
		return 0, handle.ErrReleased
	}

	return p.Handle(), nil
}

// Close releases the handle. Closing twice returns handle.ErrReleased.
func (p *Process) Close() error {
	return p.res.Close()
}

// ExePath returns the full path of the process image.
func (p *Process) ExePath() (string, error) {
	h, err := p.live()
	if err != nil {
		return "", err
	}

	buf := make([]uint16, w32.MAX_LONG_PATH)
	size := uint32(len(buf))

	err = w32.QueryFullProcessImageName(h, 0, &buf[0], &size)
	runtime.KeepAlive(p)

	if err != nil {
		return "", winerr.FromCall("QueryFullProcessImageNameW", err)
	}

	return w32.UTF16ToString(buf[:size]), nil
}

// Window returns the first top-level window owned by the process.
func (p *Process) Window() (HWND, bool, error) {
	return FindByPID(p.pid)
}

// ReadMemory copies len(buf) bytes from addr in the process. ReadProcessMemory signals
// failure with FALSE; a partial copy returns the count read with the error.
func (p *Process) ReadMemory(addr uintptr, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	h, err := p.live()
	if err != nil {
		return 0, err
	}

	var n uintptr
	err = w32.ReadProcessMemory(h, addr, &buf[0], uintptr(len(buf)), &n)
	runtime.KeepAlive(p)

	if err != nil {
		return int(n), winerr.FromCall("ReadProcessMemory", err)
	}

	return int(n), nil
}

// WriteMemory copies data to addr in the process. WriteProcessMemory signals failure with FALSE.
func (p *Process) WriteMemory(addr uintptr, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	h, err := p.live()
	if err != nil {
		return 0, err
	}

	var n uintptr
	err = w32.WriteProcessMemory(h, addr, &data[0], uintptr(len(data)), &n)
	runtime.KeepAlive(p)

	if err != nil {
		return int(n), winerr.FromCall("WriteProcessMemory", err)
	}

	return int(n), nil
}

// TerminateProcess forcefully terminates a process by its PID
func TerminateProcess(pid uint32, exitCode uint32) error {
	p, err := OpenProcess(pid, PROCESS_TERMINATE)
	if err != nil {
		return fmt.Errorf("failed to open process: %w", err)
	}

	defer func() { _ = p.Close() }()

	if err := w32.TerminateProcess(p.Handle(), exitCode); err != nil {
		return fmt.Errorf("failed to terminate process: %w", winerr.FromCall("TerminateProcess", err))
	}

	return nil
}
