//go:build integration && windows

package integration

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/wintool/internal/logger"
	"github.com/Norgate-AV/wintool/internal/timeouts"
	"github.com/Norgate-AV/wintool/internal/windows"
)

// startNotepad launches notepad and waits for its main window through the watcher
func startNotepad(t *testing.T, api *windows.API) (uint32, windows.HWND) {
	t.Helper()

	cmd := exec.Command("notepad.exe")
	require.NoError(t, cmd.Start())

	pid := uint32(cmd.Process.Pid)
	t.Cleanup(func() {
		_ = api.Terminate(pid)
		_ = cmd.Wait()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	watcher := api.NewWatcher(windows.Filter{Pid: pid, VisibleOnly: true}, timeouts.WatchPollingInterval)
	events := make(chan windows.WindowEvent, 16)

	go func() { _ = watcher.Run(ctx, events) }()

	ev, ok := watcher.WaitFor(ctx, events, func(ev windows.WindowEvent) bool { return ev.Pid == pid })
	require.True(t, ok, "notepad window did not appear")

	return pid, ev.Hwnd
}

func TestIntegration_NotepadRoundTrip(t *testing.T) {
	api := windows.NewAPI(logger.NewNoOpLogger())
	pid, hwnd := startNotepad(t, api)

	hwndByPID, found, err := api.FindByPID(pid)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, hwnd, hwndByPID)

	info, err := api.Info(pid)
	require.NoError(t, err)
	assert.Contains(t, info.ExePath, "otepad")

	// Classic notepad hosts an Edit control; the Windows 11 app uses RichEditD2DPT
	var edit windows.HWND
	for _, child := range api.CollectChildInfos(hwnd) {
		if child.ClassName == "Edit" || child.ClassName == "RichEditD2DPT" {
			edit = child.Hwnd
			break
		}
	}

	if edit == 0 {
		t.Skip("notepad edit control not found")
	}

	require.NoError(t, api.SetText(edit, "wintool integration"))
	assert.Equal(t, "wintool integration", api.GetText(edit))
}

func TestIntegration_OwnProcessMemory(t *testing.T) {
	api := windows.NewAPI(logger.NewNoOpLogger())

	proc := windows.CurrentProcess()
	regions, err := api.Regions(proc.PID())
	require.NoError(t, err)
	require.NotEmpty(t, regions)

	var readable *windows.MemoryInfo
	for i := range regions {
		if regions[i].Readable() && regions[i].Type == windows.MEM_IMAGE {
			readable = &regions[i]
			break
		}
	}

	require.NotNil(t, readable, "no readable image region")

	data, err := api.ReadMemory(proc.PID(), readable.Base, 16)
	require.NoError(t, err)
	assert.Len(t, data, 16)
}
