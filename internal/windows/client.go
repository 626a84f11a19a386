//go:build windows

package windows

import (
	"time"

	"github.com/Norgate-AV/wintool/internal/logger"
)

// Client provides methods for interacting with Windows APIs
// It composes specialized managers for different categories of functionality
type Client struct {
	log      logger.LoggerInterface
	Window   *windowManager
	Messages *messenger
	Keyboard *keyboardInjector
	Process  *processManager
}

// NewClient creates a new Windows API client
func NewClient(log logger.LoggerInterface) *Client {
	return &Client{
		log:      log,
		Window:   newWindowManager(log),
		Messages: newMessenger(log),
		Keyboard: newKeyboardInjector(log),
		Process:  newProcessManager(log),
	}
}

// NewWatcher creates a watcher polling the live window list
func (c *Client) NewWatcher(filter Filter, interval time.Duration) *Watcher {
	return NewWatcher(c.log, c.Window.List, filter, interval)
}

// API is a concrete implementation of all Windows-related interfaces
// It wraps a Client to provide the required functionality
type API struct {
	client *Client
}

// NewAPI creates a new API with the provided logger
func NewAPI(log logger.LoggerInterface) *API {
	return &API{client: NewClient(log)}
}

// WindowManager interface implementation
func (a *API) List(filter Filter) ([]WindowInfo, error) { return a.client.Window.List(filter) }
func (a *API) FindByPID(pid uint32) (HWND, bool, error) { return a.client.Window.FindByPID(pid) }
func (a *API) CollectChildInfos(hwnd HWND) []ChildInfo {
	return a.client.Window.CollectChildInfos(hwnd)
}
func (a *API) Close(hwnd HWND, title string) error { return a.client.Window.Close(hwnd, title) }
func (a *API) SetForeground(hwnd HWND) bool         { return a.client.Window.SetForeground(hwnd) }
func (a *API) ClickButton(parent HWND, text string) bool {
	return a.client.Window.ClickButton(parent, text)
}
func (a *API) IsElevated() bool { return a.client.Window.IsElevated() }

// MessageSender interface implementation
func (a *API) Send(hwnd HWND, msg uint32, wparam, lparam uintptr) uintptr {
	return a.client.Messages.Send(hwnd, msg, wparam, lparam)
}

func (a *API) SendTimeout(hwnd HWND, msg uint32, wparam, lparam uintptr, timeout time.Duration) (uintptr, error) {
	return a.client.Messages.SendTimeout(hwnd, msg, wparam, lparam, timeout)
}

func (a *API) Post(hwnd HWND, msg uint32, wparam, lparam uintptr) error {
	return a.client.Messages.Post(hwnd, msg, wparam, lparam)
}
func (a *API) SetText(hwnd HWND, text string) error { return a.client.Messages.SetText(hwnd, text) }
func (a *API) GetText(hwnd HWND) string             { return a.client.Messages.GetText(hwnd) }

// KeyboardInjector interface implementation
func (a *API) SendKey(vk uint16) bool { return a.client.Keyboard.SendKey(vk) }
func (a *API) SendKeyToWindow(hwnd HWND, vk uint16) bool {
	return a.client.Keyboard.SendKeyToWindow(hwnd, vk)
}

// ProcessInspector interface implementation
func (a *API) Info(pid uint32) (ProcessInfo, error) { return a.client.Process.Info(pid) }
func (a *API) ReadMemory(pid uint32, addr uintptr, size int) ([]byte, error) {
	return a.client.Process.ReadMemory(pid, addr, size)
}

func (a *API) WriteMemory(pid uint32, addr uintptr, data []byte) (int, error) {
	return a.client.Process.WriteMemory(pid, addr, data)
}
func (a *API) Regions(pid uint32) ([]MemoryInfo, error) { return a.client.Process.Regions(pid) }
func (a *API) Terminate(pid uint32) error               { return a.client.Process.Terminate(pid) }

// NewWatcher creates a watcher polling the live window list
func (a *API) NewWatcher(filter Filter, interval time.Duration) *Watcher {
	return a.client.NewWatcher(filter, interval)
}
