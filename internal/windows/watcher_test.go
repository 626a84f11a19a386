package windows

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/wintool/internal/logger"
)

// fakeDesktop is a mutable window list standing in for the real enumeration
type fakeDesktop struct {
	mu      sync.Mutex
	windows []WindowInfo
	err     error
	filters []Filter
}

func (d *fakeDesktop) open(hwnd HWND, title string, pid uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.windows = append(d.windows, WindowInfo{Hwnd: hwnd, Title: title, Pid: pid, Visible: true})
}

func (d *fakeDesktop) close(hwnd HWND) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.windows = slices.DeleteFunc(d.windows, func(w WindowInfo) bool { return w.Hwnd == hwnd })
}

func (d *fakeDesktop) list(filter Filter) ([]WindowInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.filters = append(d.filters, filter)
	if d.err != nil {
		return nil, d.err
	}

	var out []WindowInfo
	for _, w := range d.windows {
		if filter.Match(w) {
			out = append(out, w)
		}
	}

	return out, nil
}

func newTestWatcher(d *fakeDesktop, filter Filter) *Watcher {
	w := NewWatcher(logger.NewNoOpLogger(), d.list, filter, 10*time.Millisecond)
	w.now = func() time.Time { return time.Unix(1700000000, 0) }
	return w
}

func drain(ch <-chan WindowEvent) []HWND {
	var out []HWND
	for {
		select {
		case ev := <-ch:
			out = append(out, ev.Hwnd)
		default:
			return out
		}
	}
}

func TestWatcher_PollReportsEachWindowOnce(t *testing.T) {
	d := &fakeDesktop{}
	d.open(1, "one", 10)
	d.open(2, "two", 10)

	w := newTestWatcher(d, Filter{})
	out := make(chan WindowEvent, 8)

	require.NoError(t, w.Poll(out))
	require.NoError(t, w.Poll(out))

	d.open(3, "three", 10)
	require.NoError(t, w.Poll(out))

	if diff := cmp.Diff([]HWND{1, 2, 3}, drain(out)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcher_ReusedHandleIsReportedAgain(t *testing.T) {
	d := &fakeDesktop{}
	d.open(1, "one", 10)
	d.open(2, "two", 10)

	w := newTestWatcher(d, Filter{})
	out := make(chan WindowEvent, 8)

	require.NoError(t, w.Poll(out))

	d.close(2)
	require.NoError(t, w.Poll(out))
	assert.Len(t, w.seen, 1, "closed windows are forgotten")

	d.open(2, "reused", 30)
	require.NoError(t, w.Poll(out))

	if diff := cmp.Diff([]HWND{1, 2, 2}, drain(out)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "reused", w.Recent()[2].Title)
}

func TestWatcher_PollErrorKeepsSeen(t *testing.T) {
	d := &fakeDesktop{}
	d.open(1, "one", 10)

	w := newTestWatcher(d, Filter{})
	out := make(chan WindowEvent, 8)

	require.NoError(t, w.Poll(out))

	d.err = errors.New("enumeration failed")
	require.Error(t, w.Poll(out))

	d.err = nil
	require.NoError(t, w.Poll(out))
	assert.Equal(t, []HWND{1}, drain(out))
}

func TestWatcher_PollAppliesFilter(t *testing.T) {
	d := &fakeDesktop{}
	d.open(1, "one", 10)
	d.open(2, "two", 20)

	w := newTestWatcher(d, Filter{Pid: 20})
	out := make(chan WindowEvent, 8)

	require.NoError(t, w.Poll(out))

	assert.Equal(t, []HWND{2}, drain(out))
	assert.Equal(t, []Filter{{Pid: 20}}, d.filters)
}

func TestWatcher_FullBufferDropsButCaches(t *testing.T) {
	d := &fakeDesktop{}
	d.open(1, "one", 10)
	d.open(2, "two", 10)

	w := newTestWatcher(d, Filter{})
	out := make(chan WindowEvent, 1)

	require.NoError(t, w.Poll(out))

	assert.Equal(t, []HWND{1}, drain(out))
	assert.Len(t, w.Recent(), 2)

	ev, ok := w.FindRecent(func(ev WindowEvent) bool { return ev.Title == "two" })
	require.True(t, ok)
	assert.Equal(t, HWND(2), ev.Hwnd)
	assert.Equal(t, time.Unix(1700000000, 0), ev.Seen)
}

func TestWatcher_PollError(t *testing.T) {
	d := &fakeDesktop{err: errors.New("access denied")}
	w := newTestWatcher(d, Filter{})

	assert.EqualError(t, w.Poll(make(chan WindowEvent, 1)), "access denied")
	assert.Empty(t, w.Recent())
}

func TestWatcher_RecentIsBounded(t *testing.T) {
	d := &fakeDesktop{}
	for i := range recentLimit + 10 {
		d.open(HWND(i+1), "w", 1)
	}

	w := newTestWatcher(d, Filter{})
	require.NoError(t, w.Poll(make(chan WindowEvent, recentLimit+10)))

	recent := w.Recent()
	require.Len(t, recent, recentLimit)
	assert.Equal(t, HWND(11), recent[0].Hwnd)
	assert.Equal(t, HWND(recentLimit+10), recent[len(recent)-1].Hwnd)
}

func TestWatcher_WaitForUsesRecentCache(t *testing.T) {
	d := &fakeDesktop{}
	d.open(1, "target", 10)

	w := newTestWatcher(d, Filter{})
	require.NoError(t, w.Poll(make(chan WindowEvent, 1)))

	// Nothing will arrive on the channel; the cache must answer
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ev, ok := w.WaitFor(ctx, make(chan WindowEvent), func(ev WindowEvent) bool { return ev.Title == "target" })
	require.True(t, ok)
	assert.Equal(t, HWND(1), ev.Hwnd)
}

func TestWatcher_RunAndWaitFor(t *testing.T) {
	d := &fakeDesktop{}
	w := newTestWatcher(d, Filter{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan WindowEvent, 8)
	done := make(chan error, 1)

	go func() { done <- w.Run(ctx, events) }()

	time.AfterFunc(30*time.Millisecond, func() { d.open(7, "late", 3) })

	ev, ok := w.WaitFor(ctx, events, func(ev WindowEvent) bool { return ev.Pid == 3 })
	require.True(t, ok)
	assert.Equal(t, HWND(7), ev.Hwnd)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_WaitForCanceled(t *testing.T) {
	w := newTestWatcher(&fakeDesktop{}, Filter{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := w.WaitFor(ctx, make(chan WindowEvent), func(WindowEvent) bool { return true })
	assert.False(t, ok)
}
