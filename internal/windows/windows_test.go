//go:build windows

package windows

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/wintool/internal/handle"
	"github.com/Norgate-AV/wintool/internal/testutil"
	"github.com/Norgate-AV/wintool/internal/winerr"
)

func TestEnumWindows_Desktop(t *testing.T) {
	var seen []HWND
	require.NoError(t, EnumWindows(Desktop(), func(hwnd HWND) { seen = append(seen, hwnd) }))

	require.NotEmpty(t, seen, "a desktop always has top-level windows")
	assert.True(t, IsWindow(seen[0]))
}

func TestEnumWindowsUntil_StopIsNotAnError(t *testing.T) {
	calls := 0
	err := EnumWindowsUntil(Desktop(), func(HWND) bool {
		calls++
		return false
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestEnumWindowsUntil_StaleLastErrorIsIgnored(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// ERROR_ACCESS_DENIED left over from an earlier call on this thread
	_, _, _ = procSetLastError.Call(5)

	calls := 0
	err := EnumWindowsUntil(Desktop(), func(HWND) bool {
		calls++

		// A failing call inside the closure sets the last error right before stopping
		_, classErr := Class(0)
		assert.Error(t, classErr)

		return false
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestEnumWindows_Nested(t *testing.T) {
	outer := 0
	err := EnumWindowsUntil(Desktop(), func(hwnd HWND) bool {
		outer++
		require.NoError(t, EnumWindows(ChildrenOf(hwnd), func(HWND) {}))
		return outer < 5
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, outer, 5)
}

func TestWindowQueries(t *testing.T) {
	var first HWND
	require.NoError(t, EnumWindowsUntil(Desktop(), func(hwnd HWND) bool {
		first = hwnd
		return false
	}))

	class, err := Class(first)
	require.NoError(t, err)
	assert.NotEmpty(t, class)

	_, err = Text(first)
	assert.NoError(t, err, "an empty title is not an error")

	pid, tid, err := ThreadProcessID(first)
	require.NoError(t, err)
	assert.NotZero(t, pid)
	assert.NotZero(t, tid)

	assert.False(t, IsWindow(0))
}

func TestFind_NotFound(t *testing.T) {
	_, err := Find("wintool-no-such-class", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FindChild(0, 0, "wintool-no-such-class", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPeekMessage_Empty(t *testing.T) {
	_, ok := PeekMessage(0, 0, 0, PM_REMOVE)
	assert.False(t, ok)

	_, ok, err := NewMessageReader().NonBlocking().Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCurrentProcess(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	p := CurrentProcess()
	assert.Equal(t, uint32(os.Getpid()), p.PID())

	path, err := p.ExePath()
	require.NoError(t, err)
	assert.True(t, strings.EqualFold(exe, path), "want %s, got %s", exe, path)

	// The pseudo handle is not owned, so it stays usable
	assert.ErrorIs(t, p.Close(), handle.ErrReleased)

	_, err = p.ExePath()
	assert.NoError(t, err)
}

func TestProcess_MemoryRoundTrip(t *testing.T) {
	p := CurrentProcess()

	src := []byte("wintool memory")
	dst := make([]byte, len(src))

	n, err := p.ReadMemory(uintptr(unsafe.Pointer(&src[0])), dst)
	require.NoError(t, err)
	assert.Equal(t, len(src), n)
	assert.Equal(t, src, dst)

	n, err = p.WriteMemory(uintptr(unsafe.Pointer(&dst[0])), []byte("WIN"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "WINtool memory", string(dst))

	n, err = p.ReadMemory(0, dst)
	assert.Error(t, err, "page zero is never mapped")
	assert.Zero(t, n)
}

func TestOpenProcess(t *testing.T) {
	p, err := OpenProcess(uint32(os.Getpid()), PROCESS_QUERY_LIMITED_INFORMATION)
	require.NoError(t, err)

	_, err = p.ExePath()
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Close(), handle.ErrReleased)

	_, err = p.ExePath()
	assert.ErrorIs(t, err, handle.ErrReleased)

	_, err = p.ReadMemory(0x1000, make([]byte, 4))
	assert.ErrorIs(t, err, handle.ErrReleased)

	_, err = p.WriteMemory(0x1000, []byte{1})
	assert.ErrorIs(t, err, handle.ErrReleased)

	_, err = VirtualQuery(p, 0)
	assert.ErrorIs(t, err, handle.ErrReleased)

	_, err = OpenProcess(0, PROCESS_QUERY_LIMITED_INFORMATION)
	var werr *winerr.Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "OpenProcess", werr.Op)
}

func TestVirtualQueryAndRegions(t *testing.T) {
	p := CurrentProcess()
	buf := make([]byte, 64)

	info, err := VirtualQuery(p, uintptr(unsafe.Pointer(&buf[0])))
	require.NoError(t, err)
	assert.True(t, info.IsCommitted())
	assert.True(t, info.Readable())

	var prev uintptr
	count := 0
	for region, err := range Regions(p) {
		require.NoError(t, err)

		if count > 0 {
			assert.Greater(t, region.Base, prev, "regions are ascending")
		}

		prev = region.Base
		count++
	}

	assert.Greater(t, count, 1)
}

func TestModuleFromAddress(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	module, err := OwnModule()
	require.NoError(t, err)

	path, err := ModuleFileName(module)
	require.NoError(t, err)
	assert.True(t, strings.EqualFold(exe, path), "want %s, got %s", exe, path)

	_, err = ModuleFromAddress(0)
	assert.Error(t, err)
}

func collect(t *testing.T, pattern string, opts SearchOptions) []string {
	t.Helper()

	s, err := Search(pattern, opts)
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()

	var names []string
	for entry, err := range s.All() {
		require.NoError(t, err)
		names = append(names, entry.Name)
	}

	slices.Sort(names)
	return names
}

func TestSearch(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.CreateTestFile(t, dir, "a.log")
	testutil.CreateTestFile(t, dir, "b.log")
	testutil.CreateTestFile(t, dir, "c.txt")
	testutil.CreateTestFile(t, dir, filepath.Join("sub", "d.log"))

	assert.Equal(t, []string{"a.log", "b.log", "c.txt", "sub"}, collect(t, filepath.Join(dir, "*"), SearchOptions{}))
	assert.Equal(t, []string{"a.log", "b.log"}, collect(t, filepath.Join(dir, "*.log"), SearchOptions{LargeFetch: true}))
	assert.Equal(t, []string{"sub"}, collect(t, filepath.Join(dir, "*"), SearchOptions{DirectoriesOnly: true}))
	assert.Empty(t, collect(t, filepath.Join(dir, "*.none"), SearchOptions{}))
}

func TestSearch_Next(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.CreateTestFile(t, dir, "only.txt")

	s, err := Search(filepath.Join(dir, "only.txt"), SearchOptions{})
	require.NoError(t, err)

	entry, err := s.Next()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "only.txt", entry.Name)
	assert.Equal(t, int64(len("test content")), entry.Size)
	assert.True(t, entry.IsFile())

	entry, err = s.Next()
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "closing an exhausted search twice is harmless")
}

func TestSearch_MissingDirectory(t *testing.T) {
	_, err := Search(filepath.Join(testutil.CreateTempDir(t), "missing", "*"), SearchOptions{})

	var werr *winerr.Error
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "FindFirstFileExW", werr.Op)
}
