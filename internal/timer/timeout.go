package timer

import (
	"fmt"
	"time"
)

// TimeoutKind says which parts of a Timeout are set.
type TimeoutKind int

const (
	TimeoutNone TimeoutKind = iota
	TimeoutSingle
	TimeoutInterval
	TimeoutBoth
)

// maxMillis is the largest millisecond value accepted; 0xFFFFFFFF means INFINITE to the OS.
const maxMillis = 0xFFFFFFFE

// Timeout is the due time and period of a timer, built up one part at a time.
// Setting a part keeps the other one, so Single(d).Interval(p) equals Interval(p).Single(d).
type Timeout struct {
	kind   TimeoutKind
	delay  uint32
	period uint32
}

// Both returns a Timeout with a first delay and a period.
func Both(delayMs, periodMs uint32) Timeout {
	return Timeout{kind: TimeoutBoth, delay: delayMs, period: periodMs}
}

// Kind returns which parts are set.
func (t Timeout) Kind() TimeoutKind {
	return t.kind
}

// Single sets the first delay, keeping any period.
func (t Timeout) Single(delayMs uint32) Timeout {
	switch t.kind {
	case TimeoutInterval, TimeoutBoth:
		return Timeout{kind: TimeoutBoth, delay: delayMs, period: t.period}
	default:
		return Timeout{kind: TimeoutSingle, delay: delayMs}
	}
}

// Interval sets the period, keeping any first delay.
func (t Timeout) Interval(periodMs uint32) Timeout {
	switch t.kind {
	case TimeoutSingle, TimeoutBoth:
		return Timeout{kind: TimeoutBoth, delay: t.delay, period: periodMs}
	default:
		return Timeout{kind: TimeoutInterval, period: periodMs}
	}
}

// Resolve returns the (due, period) pair passed to CreateTimerQueueTimer.
// An interval without a delay fires immediately and then every period.
func (t Timeout) Resolve() (dueMs, periodMs uint32) {
	switch t.kind {
	case TimeoutSingle:
		return t.delay, 0
	case TimeoutInterval:
		return 0, t.period
	case TimeoutBoth:
		return t.delay, t.period
	default:
		return 0, 0
	}
}

func (t Timeout) String() string {
	switch t.kind {
	case TimeoutSingle:
		return fmt.Sprintf("single(%dms)", t.delay)
	case TimeoutInterval:
		return fmt.Sprintf("interval(%dms)", t.period)
	case TimeoutBoth:
		return fmt.Sprintf("single(%dms)+interval(%dms)", t.delay, t.period)
	default:
		return "none"
	}
}

// Millis converts d to whole milliseconds clamped to what the timer API accepts.
func Millis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	if ms < 0 {
		return 0
	}

	if ms > maxMillis {
		return maxMillis
	}

	return uint32(ms)
}
