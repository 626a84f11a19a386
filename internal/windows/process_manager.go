//go:build windows

package windows

import (
	"fmt"
	"log/slog"

	"github.com/Norgate-AV/wintool/internal/logger"
)

// processManager implements the ProcessInspector interface
type processManager struct {
	log logger.LoggerInterface
}

func newProcessManager(log logger.LoggerInterface) *processManager {
	return &processManager{log: log}
}

// Info opens pid for a limited query and reports its image path and main window
func (p *processManager) Info(pid uint32) (ProcessInfo, error) {
	proc, err := OpenProcess(pid, PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return ProcessInfo{}, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	defer p.closeProcess(proc)

	info := ProcessInfo{Pid: pid}

	if info.ExePath, err = proc.ExePath(); err != nil {
		return info, err
	}

	hwnd, found, err := proc.Window()
	if err != nil {
		p.log.Debug("Window lookup failed", slog.Uint64("pid", uint64(pid)), slog.Any("error", err))
	}

	if found {
		info.Window = hwnd
		info.Title, _ = Text(hwnd)
	}

	return info, nil
}

func (p *processManager) ReadMemory(pid uint32, addr uintptr, size int) ([]byte, error) {
	proc, err := OpenProcess(pid, PROCESS_VM_READ|PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	defer p.closeProcess(proc)

	buf := make([]byte, size)

	n, err := proc.ReadMemory(addr, buf)
	if err != nil {
		return buf[:n], err
	}

	p.log.Debug("Memory read",
		slog.Uint64("pid", uint64(pid)),
		slog.String("addr", fmt.Sprintf("%#x", addr)),
		slog.Int("bytes", n))

	return buf[:n], nil
}

func (p *processManager) WriteMemory(pid uint32, addr uintptr, data []byte) (int, error) {
	proc, err := OpenProcess(pid, PROCESS_VM_WRITE|PROCESS_VM_OPERATION|PROCESS_QUERY_LIMITED_INFORMATION)
	if err != nil {
		return 0, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	defer p.closeProcess(proc)

	n, err := proc.WriteMemory(addr, data)
	if err != nil {
		return n, err
	}

	p.log.Info("Memory written",
		slog.Uint64("pid", uint64(pid)),
		slog.String("addr", fmt.Sprintf("%#x", addr)),
		slog.Int("bytes", n))

	return n, nil
}

func (p *processManager) Regions(pid uint32) ([]MemoryInfo, error) {
	proc, err := OpenProcess(pid, PROCESS_QUERY_INFORMATION)
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	defer p.closeProcess(proc)

	var regions []MemoryInfo
	for info, err := range Regions(proc) {
		if err != nil {
			return regions, err
		}

		regions = append(regions, info)
	}

	return regions, nil
}

func (p *processManager) Terminate(pid uint32) error {
	p.log.Info("Terminating process", slog.Uint64("pid", uint64(pid)))
	return TerminateProcess(pid, 1)
}

func (p *processManager) closeProcess(proc *Process) {
	if err := proc.Close(); err != nil {
		p.log.Debug("Failed to close process handle",
			slog.Uint64("pid", uint64(proc.PID())),
			slog.Any("error", err))
	}
}
