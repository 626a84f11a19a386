package timer

import "time"

// Builder assembles a timer registration. The zero configuration is a no-op callback on the
// default queue that fires once, immediately.
type Builder struct {
	fn      uintptr
	param   uintptr
	closure func()
	queue   *TimerQueue
	timeout Timeout
	flags   Flags
}

// NewBuilder returns a Builder targeting the default queue.
func NewBuilder() *Builder {
	return &Builder{queue: DefaultQueue(), flags: DefaultFlags}
}

// Func sets a Go closure as the callback, replacing any native one.
func (b *Builder) Func(f func()) *Builder {
	b.closure = f
	b.fn, b.param = 0, 0
	return b
}

// Native sets a raw WAITORTIMERCALLBACK address and its parameter, replacing any closure.
func (b *Builder) Native(fn, param uintptr) *Builder {
	b.fn, b.param = fn, param
	b.closure = nil
	return b
}

// Queue selects the queue. A nil queue means the default queue.
func (b *Builder) Queue(q *TimerQueue) *Builder {
	if q == nil {
		q = DefaultQueue()
	}

	b.queue = q
	return b
}

// Single sets the delay before the first call.
func (b *Builder) Single(d time.Duration) *Builder {
	b.timeout = b.timeout.Single(Millis(d))
	return b
}

// Interval sets the period between calls.
func (b *Builder) Interval(d time.Duration) *Builder {
	b.timeout = b.timeout.Interval(Millis(d))
	return b
}

// Flags replaces the execution flags.
func (b *Builder) Flags(f Flags) *Builder {
	b.flags = f
	return b
}

// Timeout returns the timeout accumulated so far.
func (b *Builder) Timeout() Timeout {
	return b.timeout
}

// Build registers the timer.
func (b *Builder) Build() (*QueueTimer, error) {
	due, period := b.timeout.Resolve()

	if b.fn != 0 {
		return b.queue.Timer(b.fn, b.param, due, period, b.flags)
	}

	f := b.closure
	if f == nil {
		f = func() {}
	}

	return b.queue.TimerFunc(f, due, period, b.flags)
}
