package windows

import (
	"fmt"
	"strings"
)

// Virtual-key codes accepted by ParseKey.
const (
	VK_BACK   = 0x08
	VK_TAB    = 0x09
	VK_RETURN = 0x0D
	VK_MENU   = 0x12 // Alt key
	VK_ESCAPE = 0x1B
	VK_SPACE  = 0x20
	VK_LEFT   = 0x25
	VK_UP     = 0x26
	VK_RIGHT  = 0x27
	VK_DOWN   = 0x28
	VK_DELETE = 0x2E
	VK_F1     = 0x70
)

var namedKeys = map[string]uint16{
	"BACKSPACE": VK_BACK,
	"TAB":       VK_TAB,
	"ENTER":     VK_RETURN,
	"RETURN":    VK_RETURN,
	"ALT":       VK_MENU,
	"ESC":       VK_ESCAPE,
	"ESCAPE":    VK_ESCAPE,
	"SPACE":     VK_SPACE,
	"LEFT":      VK_LEFT,
	"UP":        VK_UP,
	"RIGHT":     VK_RIGHT,
	"DOWN":      VK_DOWN,
	"DELETE":    VK_DELETE,
}

// extendedKeys need KEYEVENTF_EXTENDEDKEY and bit 24 of the key message lParam.
var extendedKeys = map[uint16]bool{
	VK_LEFT:   true,
	VK_UP:     true,
	VK_RIGHT:  true,
	VK_DOWN:   true,
	VK_DELETE: true,
}

// ParseKey maps a key name (ENTER, ESC, F1..F24, A..Z, 0..9) to its virtual-key code.
func ParseKey(name string) (uint16, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))

	if vk, ok := namedKeys[upper]; ok {
		return vk, nil
	}

	var n int
	if _, err := fmt.Sscanf(upper, "F%d", &n); err == nil && n >= 1 && n <= 24 && upper == fmt.Sprintf("F%d", n) {
		return uint16(VK_F1 + n - 1), nil
	}

	if len(upper) == 1 {
		c := upper[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return uint16(c), nil
		}
	}

	return 0, fmt.Errorf("unknown key %q", name)
}

// keyLParam builds the lParam of WM_KEYDOWN/WM_KEYUP: repeat count 1, scan code in bits
// 16-23, extended flag in bit 24, and previous-state plus transition bits for key up.
func keyLParam(scan uint32, extended, up bool) uintptr {
	lparam := uint32(1) | scan<<16
	if extended {
		lparam |= 1 << 24
	}

	if up {
		lparam |= 1<<30 | 1<<31
	}

	return uintptr(lparam)
}
