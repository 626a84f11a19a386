//go:build windows

package windows

import (
	"strings"
	"syscall"
	"unsafe"

	"github.com/Norgate-AV/wintool/internal/enum"
)

// Scope selects which windows an enumeration visits.
type Scope struct {
	parent HWND
	child  bool
}

// Desktop visits every top-level window.
func Desktop() Scope {
	return Scope{}
}

// ChildrenOf visits the descendants of parent.
func ChildrenOf(parent HWND) Scope {
	return Scope{parent: parent, child: true}
}

func (s Scope) op() string {
	if s.child {
		return "EnumChildWindows"
	}

	return "EnumWindows"
}

func (s Scope) native() enum.Native {
	return func(param uintptr) (bool, syscall.Errno) {
		if s.child {
			r, _, err := procEnumChildWindows.Call(uintptr(s.parent), enumCallback, param)
			return r != 0, errnoOf(err)
		}

		r, _, err := procEnumWindows.Call(enumCallback, param)
		return r != 0, errnoOf(err)
	}
}

// EnumWindows calls fn for every window in scope. EnumWindows signals failure with FALSE.
func EnumWindows(scope Scope, fn func(HWND)) error {
	return enum.All(scope.op(), scope.native(), threadLastError{}, func(item uintptr) {
		fn(HWND(item))
	})
}

// EnumWindowsUntil calls fn for each window in scope until fn returns false. Stopping early
// is not an error even when fn itself made failing Win32 calls.
func EnumWindowsUntil(scope Scope, fn func(HWND) bool) error {
	return enum.Until(scope.op(), scope.native(), threadLastError{}, func(item uintptr) bool {
		return fn(HWND(item))
	})
}

// FindByClass returns every window in scope whose class is exactly class.
func FindByClass(class string, scope Scope) ([]HWND, error) {
	var found []HWND

	err := EnumWindows(scope, func(hwnd HWND) {
		if c, err := Class(hwnd); err == nil && c == class {
			found = append(found, hwnd)
		}
	})

	return found, err
}

// FindByTitle returns every window in scope whose title is exactly title.
func FindByTitle(title string, scope Scope) ([]HWND, error) {
	var found []HWND

	err := EnumWindows(scope, func(hwnd HWND) {
		if t, err := Text(hwnd); err == nil && t == title {
			found = append(found, hwnd)
		}
	})

	return found, err
}

// FindByPID returns the first top-level window owned by pid.
func FindByPID(pid uint32) (HWND, bool, error) {
	var match HWND

	err := EnumWindowsUntil(Desktop(), func(hwnd HWND) bool {
		owner, _, err := ThreadProcessID(hwnd)
		if err != nil || owner != pid {
			return true
		}

		match = hwnd
		return false
	})
	if err != nil {
		return 0, false, err
	}

	return match, match != 0, nil
}

// List describes the windows matching filter. Windows that vanish during the walk are
// reported with whatever could still be read.
func List(filter Filter) ([]WindowInfo, error) {
	scope := Desktop()
	if filter.Parent != 0 {
		scope = ChildrenOf(filter.Parent)
	}

	var infos []WindowInfo

	err := EnumWindows(scope, func(hwnd HWND) {
		info := describe(hwnd)
		if filter.Match(info) {
			infos = append(infos, info)
		}
	})

	return infos, err
}

func describe(hwnd HWND) WindowInfo {
	info := WindowInfo{Hwnd: hwnd, Visible: IsVisible(hwnd)}
	info.Title, _ = Text(hwnd)
	info.Class, _ = Class(hwnd)
	info.Pid, _, _ = ThreadProcessID(hwnd)

	return info
}

// ControlExtractor is a function that extracts text and items from a specific control type
type ControlExtractor func(hwnd HWND) (text string, items []string)

// controlExtractors is a table-driven map of control-specific extraction logic
var controlExtractors = map[string]ControlExtractor{
	"Edit": func(hwnd HWND) (string, []string) {
		return GetText(hwnd), nil
	},
	"ListBox": func(hwnd HWND) (string, []string) {
		items := ListBoxItems(hwnd)
		return strings.Join(items, "\n"), items
	},
}

func extractControlInfo(hwnd HWND, className string) ChildInfo {
	extractor, exists := controlExtractors[className]
	if !exists {
		text, _ := Text(hwnd)
		return ChildInfo{Hwnd: hwnd, ClassName: className, Text: text}
	}

	text, items := extractor(hwnd)
	return ChildInfo{
		Hwnd:      hwnd,
		ClassName: className,
		Text:      text,
		Items:     items,
	}
}

// CollectChildInfos returns a ChildInfo for every child control of hwnd
func CollectChildInfos(hwnd HWND) ([]ChildInfo, error) {
	infos := []ChildInfo{}

	err := EnumWindows(ChildrenOf(hwnd), func(child HWND) {
		className, _ := Class(child)
		infos = append(infos, extractControlInfo(child, className))
	})

	return infos, err
}

// ListBoxItems retrieves all items from a ListBox control
func ListBoxItems(hwnd HWND) []string {
	count := int(SendMessage(hwnd, LB_GETCOUNT, 0, 0))
	if count <= 0 {
		return nil
	}

	items := make([]string, 0, count)
	for i := range count {
		itemLen := int(SendMessage(hwnd, LB_GETTEXTLEN, uintptr(i), 0))
		if itemLen <= 0 {
			continue
		}

		buf := make([]uint16, itemLen+1)
		_, _, _ = procSendMessageW.Call(uintptr(hwnd), LB_GETTEXT, uintptr(i), uintptr(unsafe.Pointer(&buf[0])))
		items = append(items, syscall.UTF16ToString(buf))
	}

	return items
}
