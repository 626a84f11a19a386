package windows

import (
	"fmt"
	"time"
)

// HWND is a native window handle.
type HWND uintptr

// WindowInfo describes a window found by enumeration
type WindowInfo struct {
	Hwnd    HWND
	Title   string
	Class   string
	Pid     uint32
	Visible bool
}

// WindowEvent is emitted by a Watcher the first time it sees a window
type WindowEvent struct {
	Hwnd  HWND
	Title string
	Pid   uint32
	Class string
	Seen  time.Time
}

// ChildInfo describes one child control of a window
type ChildInfo struct {
	Hwnd      HWND
	ClassName string
	Text      string
	Items     []string // For ListBox controls, stores items directly
}

// Filter selects windows when listing. Zero fields match everything.
type Filter struct {
	Class       string
	Title       string
	Pid         uint32
	Parent      HWND
	VisibleOnly bool
}

// Match reports whether w passes the filter. Parent is applied by the enumeration scope.
func (f Filter) Match(w WindowInfo) bool {
	if f.Class != "" && f.Class != w.Class {
		return false
	}

	if f.Title != "" && f.Title != w.Title {
		return false
	}

	if f.Pid != 0 && f.Pid != w.Pid {
		return false
	}

	if f.VisibleOnly && !w.Visible {
		return false
	}

	return true
}

// ProcessInfo is what the proc command reports about a process
type ProcessInfo struct {
	Pid     uint32
	ExePath string
	Window  HWND
	Title   string
}

// Memory states and page protections reported by VirtualQueryEx.
const (
	MEM_COMMIT  = 0x00001000
	MEM_RESERVE = 0x00002000
	MEM_FREE    = 0x00010000

	MEM_PRIVATE = 0x00020000
	MEM_MAPPED  = 0x00040000
	MEM_IMAGE   = 0x01000000

	PAGE_NOACCESS          = 0x01
	PAGE_READONLY          = 0x02
	PAGE_READWRITE         = 0x04
	PAGE_EXECUTE_READ      = 0x20
	PAGE_EXECUTE_READWRITE = 0x40
	PAGE_GUARD             = 0x100
)

// MemoryInfo describes one region of a process address space.
type MemoryInfo struct {
	Base              uintptr
	AllocationBase    uintptr
	AllocationProtect uint32
	Size              uintptr
	State             uint32
	Protect           uint32
	Type              uint32
}

func (m MemoryInfo) IsFree() bool      { return m.State == MEM_FREE }
func (m MemoryInfo) IsCommitted() bool { return m.State == MEM_COMMIT }
func (m MemoryInfo) IsReserved() bool  { return m.State == MEM_RESERVE }

// Readable reports whether the region is committed and can be read without faulting.
func (m MemoryInfo) Readable() bool {
	return m.IsCommitted() && m.Protect&(PAGE_NOACCESS|PAGE_GUARD) == 0 && m.Protect != 0
}

// End returns the first address past the region.
func (m MemoryInfo) End() uintptr {
	return m.Base + m.Size
}

func (m MemoryInfo) String() string {
	state := "reserved"
	switch {
	case m.IsFree():
		state = "free"
	case m.IsCommitted():
		state = "committed"
	}

	kind := ""
	switch m.Type {
	case MEM_IMAGE:
		kind = " image"
	case MEM_MAPPED:
		kind = " mapped"
	case MEM_PRIVATE:
		kind = " private"
	}

	return fmt.Sprintf("%#016x-%#016x %s%s protect=%#x", m.Base, m.End(), state, kind, m.Protect)
}

const fileAttributeDirectory = 0x10

// FileEntry is one result of a file search.
type FileEntry struct {
	Name       string
	Attributes uint32
	Size       int64
	ModTime    time.Time
}

func (e FileEntry) IsDir() bool  { return e.Attributes&fileAttributeDirectory != 0 }
func (e FileEntry) IsFile() bool { return !e.IsDir() }

// IsDotEntry reports whether the entry is the "." or ".." pseudo directory.
func (e FileEntry) IsDotEntry() bool {
	return e.IsDir() && (e.Name == "." || e.Name == "..")
}

// MsgBoxResult is the button a user pressed to dismiss a message box.
type MsgBoxResult int32

const (
	IDOK       MsgBoxResult = 1
	IDCANCEL   MsgBoxResult = 2
	IDABORT    MsgBoxResult = 3
	IDRETRY    MsgBoxResult = 4
	IDIGNORE   MsgBoxResult = 5
	IDYES      MsgBoxResult = 6
	IDNO       MsgBoxResult = 7
	IDTRYAGAIN MsgBoxResult = 10
	IDCONTINUE MsgBoxResult = 11
)

func (r MsgBoxResult) String() string {
	switch r {
	case IDOK:
		return "ok"
	case IDCANCEL:
		return "cancel"
	case IDABORT:
		return "abort"
	case IDRETRY:
		return "retry"
	case IDIGNORE:
		return "ignore"
	case IDYES:
		return "yes"
	case IDNO:
		return "no"
	case IDTRYAGAIN:
		return "tryagain"
	case IDCONTINUE:
		return "continue"
	default:
		return fmt.Sprintf("code(%d)", int32(r))
	}
}

// Message box button sets.
const (
	MB_OK                = 0x00000000
	MB_OKCANCEL          = 0x00000001
	MB_ABORTRETRYIGNORE  = 0x00000002
	MB_YESNOCANCEL       = 0x00000003
	MB_YESNO             = 0x00000004
	MB_RETRYCANCEL       = 0x00000005
	MB_CANCELTRYCONTINUE = 0x00000006
	MB_ICONERROR         = 0x00000010
	MB_ICONQUESTION      = 0x00000020
	MB_ICONWARNING       = 0x00000030
	MB_ICONINFORMATION   = 0x00000040
)

// ButtonSets maps the names accepted on the command line to MB_* button flags.
var ButtonSets = map[string]uint32{
	"ok":                MB_OK,
	"okcancel":          MB_OKCANCEL,
	"abortretryignore":  MB_ABORTRETRYIGNORE,
	"yesnocancel":       MB_YESNOCANCEL,
	"yesno":             MB_YESNO,
	"retrycancel":       MB_RETRYCANCEL,
	"canceltrycontinue": MB_CANCELTRYCONTINUE,
}
