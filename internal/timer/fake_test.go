package timer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Norgate-AV/wintool/internal/handle"
	"github.com/Norgate-AV/wintool/internal/winerr"
)

const fakeAdapter uintptr = 0xF1

// fakeTimer emulates one pool-backed timer. gen invalidates ticks scheduled before a change.
type fakeTimer struct {
	queue   handle.Handle
	fn      uintptr
	param   uintptr
	period  time.Duration
	gen     int
	fired   bool
	deleted bool
	running int
	tm      *time.Timer
	wg      sync.WaitGroup
}

// fakeBackend behaves like the thread-pool timer queue: callbacks run on their own
// goroutines, Wait deletions block on in-flight callbacks, NoWait deletions report
// ERROR_IO_PENDING while callbacks are running, and resetting a fired one-shot is a no-op.
type fakeBackend struct {
	mu     sync.Mutex
	next   handle.Handle
	queues map[handle.Handle]bool
	timers map[handle.Handle]*fakeTimer
	calls  []string

	// raw receives parameters of timers registered with a non-adapter callback.
	raw func(param uintptr)

	failDeleteTimer error
	failDeleteQueue error
}

func useFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	f := &fakeBackend{
		next:   0x100,
		queues: map[handle.Handle]bool{handle.Null: true},
		timers: make(map[handle.Handle]*fakeTimer),
	}

	prev := native
	native = f
	t.Cleanup(func() { native = prev })

	return f
}

func (f *fakeBackend) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Adapter() uintptr {
	return fakeAdapter
}

func (f *fakeBackend) CreateQueue() (handle.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	f.queues[f.next] = true
	f.record("CreateQueue")

	return f.next, nil
}

func (f *fakeBackend) DeleteQueue(queue, event handle.Handle) error {
	f.mu.Lock()
	f.record("DeleteQueue:%s", eventName(event))

	if f.failDeleteQueue != nil {
		err := f.failDeleteQueue
		f.mu.Unlock()
		return err
	}

	if !f.queues[queue] {
		f.mu.Unlock()
		return winerr.New("DeleteTimerQueueEx", 6)
	}

	delete(f.queues, queue)

	var owned []*fakeTimer
	running := 0
	for h, tm := range f.timers {
		if tm.queue == queue {
			f.stopLocked(tm)
			owned = append(owned, tm)
			running += tm.running
			delete(f.timers, h)
		}
	}
	f.mu.Unlock()

	return f.finish("DeleteTimerQueueEx", owned, running, event)
}

func (f *fakeBackend) CreateTimer(queue handle.Handle, fn, param uintptr, dueMs, periodMs uint32, _ Flags) (handle.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.queues[queue] {
		return handle.Null, winerr.New("CreateTimerQueueTimer", 6)
	}

	f.next++
	tm := &fakeTimer{queue: queue, fn: fn, param: param, period: ms(periodMs)}
	f.timers[f.next] = tm
	f.scheduleLocked(tm, ms(dueMs))
	f.record("CreateTimer:%d,%d", dueMs, periodMs)

	return f.next, nil
}

func (f *fakeBackend) ChangeTimer(queue, timer handle.Handle, dueMs, periodMs uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("ChangeTimer:%d,%d", dueMs, periodMs)

	tm, ok := f.timers[timer]
	if !ok || tm.queue != queue {
		return winerr.New("ChangeTimerQueueTimer", 6)
	}

	if tm.fired && tm.period == 0 {
		return nil
	}

	tm.period = ms(periodMs)
	f.scheduleLocked(tm, ms(dueMs))

	return nil
}

func (f *fakeBackend) DeleteTimer(queue, timer, event handle.Handle) error {
	f.mu.Lock()
	f.record("DeleteTimer:%s", eventName(event))

	if f.failDeleteTimer != nil {
		err := f.failDeleteTimer
		f.mu.Unlock()
		return err
	}

	tm, ok := f.timers[timer]
	if !ok || tm.queue != queue {
		f.mu.Unlock()
		return winerr.New("DeleteTimerQueueTimer", 6)
	}

	f.stopLocked(tm)
	delete(f.timers, timer)
	running := tm.running
	f.mu.Unlock()

	return f.finish("DeleteTimerQueueTimer", []*fakeTimer{tm}, running, event)
}

func (f *fakeBackend) finish(op string, timers []*fakeTimer, running int, event handle.Handle) error {
	if event == handle.Invalid {
		for _, tm := range timers {
			tm.wg.Wait()
		}

		return nil
	}

	if running > 0 {
		return winerr.New(op, errIOPending)
	}

	return nil
}

func (f *fakeBackend) stopLocked(tm *fakeTimer) {
	tm.deleted = true
	tm.gen++

	if tm.tm != nil {
		tm.tm.Stop()
	}
}

func (f *fakeBackend) scheduleLocked(tm *fakeTimer, due time.Duration) {
	if tm.tm != nil {
		tm.tm.Stop()
	}

	tm.gen++
	tm.fired = false
	gen := tm.gen
	tm.tm = time.AfterFunc(due, func() { f.tick(tm, gen) })
}

func (f *fakeBackend) tick(tm *fakeTimer, gen int) {
	f.mu.Lock()
	if tm.deleted || tm.gen != gen {
		f.mu.Unlock()
		return
	}

	tm.running++
	tm.wg.Add(1)

	if tm.period > 0 {
		next := tm.gen
		tm.tm = time.AfterFunc(tm.period, func() { f.tick(tm, next) })
	} else {
		tm.fired = true
	}

	fn, param, raw := tm.fn, tm.param, f.raw
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		tm.running--
		f.mu.Unlock()
		tm.wg.Done()
	}()

	if fn == fakeAdapter {
		fire(param, 1)
	} else if raw != nil {
		raw(param)
	}
}

func ms(v uint32) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func eventName(event handle.Handle) string {
	if event == handle.Invalid {
		return "wait"
	}

	return "nowait"
}
