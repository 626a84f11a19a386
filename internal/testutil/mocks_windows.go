package testutil

import (
	"errors"
	"time"

	"github.com/Norgate-AV/wintool/internal/windows"
)

// MockWindowManager records all calls for verification
type MockWindowManager struct {
	Windows             []windows.WindowInfo
	ListErr             error
	CloseCalls          []CloseCall
	CloseErr            error
	SetForegroundCalls  []windows.HWND
	SetForegroundResult bool
	ClickButtonCalls    []ClickButtonCall
	ClickButtonResult   bool
	IsElevatedResult    bool
	ChildInfos          []windows.ChildInfo
	ChildInfosMap       map[windows.HWND][]windows.ChildInfo
}

type CloseCall struct {
	Hwnd  windows.HWND
	Title string
}

type ClickButtonCall struct {
	Parent windows.HWND
	Text   string
}

func NewMockWindowManager() *MockWindowManager {
	return &MockWindowManager{
		SetForegroundResult: true,
		ClickButtonResult:   true,
		IsElevatedResult:    true,
		ChildInfosMap:       make(map[windows.HWND][]windows.ChildInfo),
	}
}

func (m *MockWindowManager) List(filter windows.Filter) ([]windows.WindowInfo, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var out []windows.WindowInfo
	for _, w := range m.Windows {
		if filter.Match(w) {
			out = append(out, w)
		}
	}

	return out, nil
}

func (m *MockWindowManager) FindByPID(pid uint32) (windows.HWND, bool, error) {
	if m.ListErr != nil {
		return 0, false, m.ListErr
	}

	for _, w := range m.Windows {
		if w.Pid == pid && w.Visible {
			return w.Hwnd, true, nil
		}
	}

	return 0, false, nil
}

func (m *MockWindowManager) CollectChildInfos(hwnd windows.HWND) []windows.ChildInfo {
	if infos, ok := m.ChildInfosMap[hwnd]; ok {
		return infos
	}

	return m.ChildInfos
}

func (m *MockWindowManager) Close(hwnd windows.HWND, title string) error {
	m.CloseCalls = append(m.CloseCalls, CloseCall{hwnd, title})
	return m.CloseErr
}

func (m *MockWindowManager) SetForeground(hwnd windows.HWND) bool {
	m.SetForegroundCalls = append(m.SetForegroundCalls, hwnd)
	return m.SetForegroundResult
}

func (m *MockWindowManager) ClickButton(parent windows.HWND, text string) bool {
	m.ClickButtonCalls = append(m.ClickButtonCalls, ClickButtonCall{parent, text})
	return m.ClickButtonResult
}

func (m *MockWindowManager) IsElevated() bool {
	return m.IsElevatedResult
}

// Helper methods for fluent configuration
func (m *MockWindowManager) WithWindow(hwnd windows.HWND, title, class string, pid uint32) *MockWindowManager {
	m.Windows = append(m.Windows, windows.WindowInfo{
		Hwnd:    hwnd,
		Title:   title,
		Class:   class,
		Pid:     pid,
		Visible: true,
	})

	return m
}

func (m *MockWindowManager) WithListError(err error) *MockWindowManager {
	m.ListErr = err
	return m
}

func (m *MockWindowManager) WithCloseError(err error) *MockWindowManager {
	m.CloseErr = err
	return m
}

func (m *MockWindowManager) WithElevated(elevated bool) *MockWindowManager {
	m.IsElevatedResult = elevated
	return m
}

func (m *MockWindowManager) WithSetForegroundResult(result bool) *MockWindowManager {
	m.SetForegroundResult = result
	return m
}

func (m *MockWindowManager) WithClickButtonResult(result bool) *MockWindowManager {
	m.ClickButtonResult = result
	return m
}

func (m *MockWindowManager) WithChildInfo(className, text string) *MockWindowManager {
	m.ChildInfos = append(m.ChildInfos, windows.ChildInfo{
		ClassName: className,
		Text:      text,
	})

	return m
}

func (m *MockWindowManager) WithChildInfoItems(className string, items []string) *MockWindowManager {
	m.ChildInfos = append(m.ChildInfos, windows.ChildInfo{
		ClassName: className,
		Items:     items,
	})

	return m
}

func (m *MockWindowManager) WithChildInfosForHwnd(hwnd windows.HWND, infos ...windows.ChildInfo) *MockWindowManager {
	m.ChildInfosMap[hwnd] = infos
	return m
}

// MockMessageSender records sent and posted messages
type MockMessageSender struct {
	Sent        []MessageCall
	Posted      []MessageCall
	SendResult  uintptr
	SendErr     error
	PostErr     error
	Texts       map[windows.HWND]string
	SetTextErr  error
	SendTimeout time.Duration
}

type MessageCall struct {
	Hwnd   windows.HWND
	Msg    uint32
	WParam uintptr
	LParam uintptr
}

func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{Texts: make(map[windows.HWND]string)}
}

func (m *MockMessageSender) Send(hwnd windows.HWND, msg uint32, wparam, lparam uintptr) uintptr {
	m.Sent = append(m.Sent, MessageCall{hwnd, msg, wparam, lparam})
	return m.SendResult
}

func (m *MockMessageSender) SendTimeout(hwnd windows.HWND, msg uint32, wparam, lparam uintptr, timeout time.Duration) (uintptr, error) {
	m.Sent = append(m.Sent, MessageCall{hwnd, msg, wparam, lparam})
	m.SendTimeout = timeout
	return m.SendResult, m.SendErr
}

func (m *MockMessageSender) Post(hwnd windows.HWND, msg uint32, wparam, lparam uintptr) error {
	m.Posted = append(m.Posted, MessageCall{hwnd, msg, wparam, lparam})
	return m.PostErr
}

func (m *MockMessageSender) SetText(hwnd windows.HWND, text string) error {
	if m.SetTextErr != nil {
		return m.SetTextErr
	}

	m.Texts[hwnd] = text
	return nil
}

func (m *MockMessageSender) GetText(hwnd windows.HWND) string {
	return m.Texts[hwnd]
}

func (m *MockMessageSender) WithSendResult(result uintptr, err error) *MockMessageSender {
	m.SendResult = result
	m.SendErr = err
	return m
}

func (m *MockMessageSender) WithPostError(err error) *MockMessageSender {
	m.PostErr = err
	return m
}

func (m *MockMessageSender) WithText(hwnd windows.HWND, text string) *MockMessageSender {
	m.Texts[hwnd] = text
	return m
}

// MockKeyboardInjector records injected keys
type MockKeyboardInjector struct {
	Keys               []uint16
	WindowKeys         []WindowKeyCall
	SendInputResult    bool
	SendToWindowResult bool
}

type WindowKeyCall struct {
	Hwnd windows.HWND
	VK   uint16
}

func NewMockKeyboardInjector() *MockKeyboardInjector {
	return &MockKeyboardInjector{
		SendInputResult:    true, // Default to success
		SendToWindowResult: true,
	}
}

func (m *MockKeyboardInjector) SendKey(vk uint16) bool {
	m.Keys = append(m.Keys, vk)
	return m.SendInputResult
}

func (m *MockKeyboardInjector) SendKeyToWindow(hwnd windows.HWND, vk uint16) bool {
	m.WindowKeys = append(m.WindowKeys, WindowKeyCall{hwnd, vk})
	return m.SendToWindowResult
}

func (m *MockKeyboardInjector) WithSendInputResult(result bool) *MockKeyboardInjector {
	m.SendInputResult = result
	return m
}

func (m *MockKeyboardInjector) WithSendToWindowResult(result bool) *MockKeyboardInjector {
	m.SendToWindowResult = result
	return m
}

// ErrNoProcess is returned by MockProcessInspector for unknown pids
var ErrNoProcess = errors.New("no such process")

// MockProcessInspector serves process info and memory from in-memory maps
type MockProcessInspector struct {
	Processes  map[uint32]windows.ProcessInfo
	Memory     map[uint32][]byte // process memory starting at address 0
	RegionMap  map[uint32][]windows.MemoryInfo
	Terminated []uint32
}

func NewMockProcessInspector() *MockProcessInspector {
	return &MockProcessInspector{
		Processes: make(map[uint32]windows.ProcessInfo),
		Memory:    make(map[uint32][]byte),
		RegionMap: make(map[uint32][]windows.MemoryInfo),
	}
}

func (m *MockProcessInspector) Info(pid uint32) (windows.ProcessInfo, error) {
	info, ok := m.Processes[pid]
	if !ok {
		return windows.ProcessInfo{}, ErrNoProcess
	}

	return info, nil
}

func (m *MockProcessInspector) ReadMemory(pid uint32, addr uintptr, size int) ([]byte, error) {
	mem, ok := m.Memory[pid]
	if !ok {
		return nil, ErrNoProcess
	}

	if int(addr) >= len(mem) {
		return nil, errors.New("address out of range")
	}

	end := min(int(addr)+size, len(mem))
	return append([]byte(nil), mem[addr:end]...), nil
}

func (m *MockProcessInspector) WriteMemory(pid uint32, addr uintptr, data []byte) (int, error) {
	mem, ok := m.Memory[pid]
	if !ok {
		return 0, ErrNoProcess
	}

	if int(addr) >= len(mem) {
		return 0, errors.New("address out of range")
	}

	return copy(mem[addr:], data), nil
}

func (m *MockProcessInspector) Regions(pid uint32) ([]windows.MemoryInfo, error) {
	if _, ok := m.Processes[pid]; !ok {
		return nil, ErrNoProcess
	}

	return m.RegionMap[pid], nil
}

func (m *MockProcessInspector) Terminate(pid uint32) error {
	if _, ok := m.Processes[pid]; !ok {
		return ErrNoProcess
	}

	m.Terminated = append(m.Terminated, pid)
	return nil
}

func (m *MockProcessInspector) WithProcess(pid uint32, exePath string) *MockProcessInspector {
	m.Processes[pid] = windows.ProcessInfo{Pid: pid, ExePath: exePath}
	return m
}

func (m *MockProcessInspector) WithMemory(pid uint32, data []byte) *MockProcessInspector {
	m.Memory[pid] = data
	return m
}

func (m *MockProcessInspector) WithRegions(pid uint32, regions ...windows.MemoryInfo) *MockProcessInspector {
	m.RegionMap[pid] = regions
	return m
}
