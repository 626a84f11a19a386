package windows

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Norgate-AV/wintool/internal/logger"
)

// recentLimit bounds the cache of recently seen windows.
const recentLimit = 256

// ListFunc lists the windows a Watcher polls.
type ListFunc func(Filter) ([]WindowInfo, error)

// Watcher polls the window list and reports every window the first time it is seen. A window
// that leaves the listing is forgotten, so a handle the OS reuses is reported again.
type Watcher struct {
	log      logger.LoggerInterface
	list     ListFunc
	filter   Filter
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	seen   map[HWND]bool
	recent []WindowEvent
}

// NewWatcher creates a watcher for windows matching filter.
func NewWatcher(log logger.LoggerInterface, list ListFunc, filter Filter, interval time.Duration) *Watcher {
	return &Watcher{
		log:      log,
		list:     list,
		filter:   filter,
		interval: interval,
		now:      time.Now,
		seen:     make(map[HWND]bool),
	}
}

// Run polls until ctx is canceled, sending new windows to out without blocking. Events that
// do not fit are dropped with a warning but stay in the recent cache.
func (w *Watcher) Run(ctx context.Context, out chan<- WindowEvent) error {
	w.log.Debug("Window watcher started",
		slog.Uint64("pid", uint64(w.filter.Pid)),
		slog.Duration("interval", w.interval),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.Poll(out); err != nil {
			w.log.Warn("Window enumeration failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			w.log.Debug("Window watcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Poll runs one enumeration pass.
func (w *Watcher) Poll(out chan<- WindowEvent) error {
	infos, err := w.list(w.filter)
	if err != nil {
		return err
	}

	for _, info := range infos {
		ev, ok := w.record(info)
		if !ok {
			continue
		}

		w.log.Debug("Window detected",
			slog.Uint64("hwnd", uint64(ev.Hwnd)),
			slog.Uint64("pid", uint64(ev.Pid)),
			slog.String("class", ev.Class),
			slog.String("title", ev.Title),
		)

		select {
		case out <- ev:
		default:
			w.log.Warn("window watcher buffer full, event dropped",
				slog.String("title", ev.Title),
				slog.Uint64("hwnd", uint64(ev.Hwnd)),
			)
		}
	}

	w.forget(infos)

	return nil
}

// forget drops seen handles that are absent from the latest listing.
func (w *Watcher) forget(infos []WindowInfo) {
	present := make(map[HWND]bool, len(infos))
	for _, info := range infos {
		present[info.Hwnd] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for hwnd := range w.seen {
		if !present[hwnd] {
			delete(w.seen, hwnd)
		}
	}
}

func (w *Watcher) record(info WindowInfo) (WindowEvent, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.seen[info.Hwnd] {
		return WindowEvent{}, false
	}

	w.seen[info.Hwnd] = true

	ev := WindowEvent{
		Hwnd:  info.Hwnd,
		Title: info.Title,
		Pid:   info.Pid,
		Class: info.Class,
		Seen:  w.now(),
	}

	w.recent = append(w.recent, ev)
	if len(w.recent) > recentLimit {
		w.recent = w.recent[len(w.recent)-recentLimit:]
	}

	return ev, true
}

// Recent returns the most recent events, oldest first.
func (w *Watcher) Recent() []WindowEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]WindowEvent(nil), w.recent...)
}

// FindRecent returns the newest cached event accepted by any matcher.
func (w *Watcher) FindRecent(matchers ...func(WindowEvent) bool) (WindowEvent, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := len(w.recent) - 1; i >= 0; i-- {
		for _, m := range matchers {
			if m(w.recent[i]) {
				return w.recent[i], true
			}
		}
	}

	return WindowEvent{}, false
}

// WaitFor waits for a window accepted by any matcher, checking the recent cache first so
// windows that appeared before the call are not missed.
func (w *Watcher) WaitFor(ctx context.Context, events <-chan WindowEvent, matchers ...func(WindowEvent) bool) (WindowEvent, bool) {
	if ev, ok := w.FindRecent(matchers...); ok {
		return ev, true
	}

	for {
		select {
		case ev := <-events:
			for _, m := range matchers {
				if m(ev) {
					return ev, true
				}
			}
		case <-ctx.Done():
			return WindowEvent{}, false
		}
	}
}
