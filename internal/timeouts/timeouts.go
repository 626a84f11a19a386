// Package timeouts defines timeout and delay constants for window and timer operations.
package timeouts

import "time"

const (
	// Windows API Interaction Delays

	// WindowMessageDelay is the delay after sending window messages (WM_CLOSE,
	// WM_SETFOCUS, etc.) to allow the target application to process the message.
	WindowMessageDelay = 500 * time.Millisecond

	// KeystrokeDelay is the delay between keyboard events (key down/up) to ensure
	// the target application reliably receives and processes the input.
	KeystrokeDelay = 50 * time.Millisecond

	// MessageTimeout bounds SendMessageTimeout calls so a hung target window
	// cannot block the caller indefinitely.
	MessageTimeout = 5 * time.Second

	// Polling Intervals

	// WatchPollingInterval is the default interval at which the window watcher
	// enumerates windows looking for new ones.
	WatchPollingInterval = 500 * time.Millisecond

	// SearchDebounce coalesces bursts of file system notifications before a
	// watched file search is re-run.
	SearchDebounce = 250 * time.Millisecond

	// Timer Command Defaults

	// TimerDelay is the default delay before the first firing of the timer command.
	TimerDelay = 100 * time.Millisecond

	// TimerInterval is the default period of the timer command.
	TimerInterval = 250 * time.Millisecond

	// TimerFirings is the default number of firings the timer command waits for.
	TimerFirings = 5

	// TimerDeadlineSlack is added to the expected run time of the timer command
	// before it gives up waiting for firings.
	TimerDeadlineSlack = 5 * time.Second
)
