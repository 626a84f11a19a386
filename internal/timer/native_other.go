//go:build !windows

package timer

import (
	"errors"

	"github.com/Norgate-AV/wintool/internal/handle"
)

type unsupportedBackend struct{}

func newNativeBackend() backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Adapter() uintptr { return 0 }

func (unsupportedBackend) CreateQueue() (handle.Handle, error) {
	return handle.Null, errors.ErrUnsupported
}

func (unsupportedBackend) DeleteQueue(handle.Handle, handle.Handle) error {
	return errors.ErrUnsupported
}

func (unsupportedBackend) CreateTimer(handle.Handle, uintptr, uintptr, uint32, uint32, Flags) (handle.Handle, error) {
	return handle.Null, errors.ErrUnsupported
}

func (unsupportedBackend) ChangeTimer(handle.Handle, handle.Handle, uint32, uint32) error {
	return errors.ErrUnsupported
}

func (unsupportedBackend) DeleteTimer(handle.Handle, handle.Handle, handle.Handle) error {
	return errors.ErrUnsupported
}

// PerformanceCounter is only available on Windows.
func PerformanceCounter() (int64, error) {
	return 0, errors.ErrUnsupported
}

// PerformanceFrequency is only available on Windows.
func PerformanceFrequency() (int64, error) {
	return 0, errors.ErrUnsupported
}
