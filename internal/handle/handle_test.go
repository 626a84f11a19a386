package handle

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closer struct {
	mu     sync.Mutex
	closed []Handle
	err    error
}

func (c *closer) release(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = append(c.closed, h)
	return c.err
}

func (c *closer) calls() []Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Handle(nil), c.closed...)
}

func TestSentinels_AreDistinct(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, Null, Invalid)
	assert.Equal(t, Handle(0), Null)
	assert.Equal(t, ^uintptr(0), uintptr(Invalid))
}

func TestResource_Close(t *testing.T) {
	t.Parallel()

	c := &closer{}
	r := New("process", 0x44, Null, c.release)

	assert.True(t, r.Valid())
	assert.Equal(t, Handle(0x44), r.Handle())

	require.NoError(t, r.Close())
	assert.False(t, r.Valid())
	assert.Equal(t, Null, r.Handle())
	assert.Equal(t, []Handle{0x44}, c.calls())

	// A second close must not reach the native layer again.
	assert.ErrorIs(t, r.Close(), ErrReleased)
	assert.Len(t, c.calls(), 1)
}

func TestResource_CloseReportsFailure(t *testing.T) {
	t.Parallel()

	c := &closer{err: errors.New("access denied")}
	r := New("process", 0x10, Null, c.release)

	err := r.Close()
	assert.EqualError(t, err, "access denied")
}

func TestResource_Leak(t *testing.T) {
	t.Parallel()

	c := &closer{}
	r := New("search", 0x99, Invalid, c.release)

	h := r.Leak()
	assert.Equal(t, Handle(0x99), h)
	assert.False(t, r.Valid())
	assert.Equal(t, Invalid, r.Handle())
	assert.ErrorIs(t, r.Close(), ErrReleased)
	assert.Empty(t, c.calls())
}

func TestResource_SentinelIsNotOwned(t *testing.T) {
	t.Parallel()

	c := &closer{}
	r := New("search", Invalid, Invalid, c.release)

	assert.False(t, r.Valid())
	assert.ErrorIs(t, r.Close(), ErrReleased)
	assert.Empty(t, c.calls())
}

func TestResource_ImplicitRelease(t *testing.T) {
	c := &closer{}

	func() {
		_ = New("process", 0x77, Null, c.release)
	}()

	assert.Eventually(t, func() bool {
		runtime.GC()
		return len(c.calls()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []Handle{0x77}, c.calls())
}

func TestReleaseOrAbort_FailureIsFatal(t *testing.T) {
	var called atomic.Value

	orig := fatal
	fatal = func(v any) { called.Store(v) }
	t.Cleanup(func() { fatal = orig })

	releaseOrAbort(cleanupArg{
		h:       0x5,
		name:    "process",
		release: func(Handle) error { return errors.New("invalid handle") },
	})

	msg, ok := called.Load().(string)
	require.True(t, ok, "fatal hook should be called with a message")
	assert.Contains(t, msg, "process")
	assert.Contains(t, msg, "invalid handle")
}

func TestReleaseOrAbort_SuccessIsQuiet(t *testing.T) {
	orig := fatal
	fatal = func(v any) { t.Errorf("unexpected fatal: %v", v) }
	t.Cleanup(func() { fatal = orig })

	releaseOrAbort(cleanupArg{h: 0x5, name: "process", release: func(Handle) error { return nil }})
}

func TestResource_ConcurrentCloseReleasesOnce(t *testing.T) {
	t.Parallel()

	c := &closer{}
	r := New("timer", 0x31, Null, c.release)

	var wg sync.WaitGroup
	var ok atomic.Int32

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Close() == nil {
				ok.Add(1)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), ok.Load())
	assert.Len(t, c.calls(), 1)
}
