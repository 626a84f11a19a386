//go:build windows

package windows

import (
	"iter"
	"runtime"
	"unsafe"

	w32 "golang.org/x/sys/windows"

	"github.com/Norgate-AV/wintool/internal/winerr"
)

const errorInvalidParameter = w32.ERROR_INVALID_PARAMETER

// VirtualQuery describes the region containing addr. VirtualQueryEx signals failure with 0.
func VirtualQuery(p *Process, addr uintptr) (MemoryInfo, error) {
	h, err := p.live()
	if err != nil {
		return MemoryInfo{}, err
	}

	var mbi w32.MemoryBasicInformation

	err = w32.VirtualQueryEx(h, addr, &mbi, unsafe.Sizeof(mbi))
	runtime.KeepAlive(p)

	if err != nil {
		return MemoryInfo{}, winerr.FromCall("VirtualQueryEx", err)
	}

	return MemoryInfo{
		Base:              mbi.BaseAddress,
		AllocationBase:    mbi.AllocationBase,
		AllocationProtect: mbi.AllocationProtect,
		Size:              mbi.RegionSize,
		State:             mbi.State,
		Protect:           mbi.Protect,
		Type:              mbi.Type,
	}, nil
}

// Regions walks the address space of p from zero. The walk ends quietly at the top of the
// user address space, where VirtualQueryEx reports ERROR_INVALID_PARAMETER.
func Regions(p *Process) iter.Seq2[MemoryInfo, error] {
	return func(yield func(MemoryInfo, error) bool) {
		var addr uintptr

		for {
			info, err := VirtualQuery(p, addr)
			if err != nil {
				if code, ok := winerr.Code(err); ok && code == errorInvalidParameter {
					return
				}

				yield(MemoryInfo{}, err)
				return
			}

			if !yield(info, nil) {
				return
			}

			next := info.End()
			if info.Size == 0 || next <= addr {
				return
			}

			addr = next
		}
	}
}
