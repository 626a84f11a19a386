package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/wintool/internal/timeouts"
	"github.com/Norgate-AV/wintool/internal/timer"
)

type timerOptions struct {
	delay    time.Duration
	interval time.Duration
	count    int
	wait     bool
	queue    bool
	long     bool
}

func newTimerCmd() *cobra.Command {
	opts := &timerOptions{}

	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Schedule a timer-queue timer and report each firing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(ctx context.Context, ec *ExecutionContext) error {
				return runTimer(ctx, cmd.OutOrStdout(), ec, opts)
			})
		},
	}

	cmd.Flags().DurationVar(&opts.delay, "delay", timeouts.TimerDelay, "delay before the first firing")
	cmd.Flags().DurationVar(&opts.interval, "interval", timeouts.TimerInterval, "period between firings (0 fires once)")
	cmd.Flags().IntVar(&opts.count, "count", timeouts.TimerFirings, "number of firings to wait for")
	cmd.Flags().BoolVar(&opts.wait, "wait", false, "delete with Wait, blocking until running callbacks return")
	cmd.Flags().BoolVar(&opts.queue, "queue", false, "use a dedicated queue instead of the process default")
	cmd.Flags().BoolVar(&opts.long, "long", false, "hint that the callback runs for a long time")

	return cmd
}

// firing is one callback invocation, stamped with the performance counter
type firing struct {
	n     int64
	ticks int64
}

func runTimer(ctx context.Context, out io.Writer, ec *ExecutionContext, opts *timerOptions) (err error) {
	if opts.count <= 0 {
		return fmt.Errorf("count must be positive, got %d", opts.count)
	}

	count := opts.count
	if opts.interval == 0 && count > 1 {
		ec.log.Warn("One-shot timer fires once", slog.Int("count", count))
		count = 1
	}

	freq, err := timer.PerformanceFrequency()
	if err != nil {
		return fmt.Errorf("performance counter unavailable: %w", err)
	}

	start, err := timer.PerformanceCounter()
	if err != nil {
		return fmt.Errorf("performance counter unavailable: %w", err)
	}

	completion := timer.NoWait
	if opts.wait {
		completion = timer.Wait
	}

	flags := timer.DefaultFlags
	if opts.long {
		flags = flags.LongFunction()
	}

	firings := make(chan firing, count)

	var n atomic.Int64

	b := timer.NewBuilder().
		Single(opts.delay).
		Interval(opts.interval).
		Flags(flags).
		Func(func() {
			ticks, err := timer.PerformanceCounter()
			if err != nil {
				return
			}

			select {
			case firings <- firing{n: n.Add(1), ticks: ticks}:
			default:
			}
		})

	if opts.queue {
		q, qerr := timer.NewQueue()
		if qerr != nil {
			return fmt.Errorf("failed to create timer queue: %w", qerr)
		}

		defer func() {
			if derr := q.Delete(completion); derr != nil {
				ec.log.Error("Timer queue delete failed", slog.Any("error", derr))
				err = errors.Join(err, derr)
			}
		}()

		b.Queue(q)
	}

	ec.log.Debug("Scheduling timer",
		slog.String("timeout", b.Timeout().String()),
		slog.Bool("dedicatedQueue", opts.queue),
		slog.String("completion", completion.String()))

	t, err := b.Build()
	if err != nil {
		return fmt.Errorf("failed to create timer: %w", err)
	}

	deadline := opts.delay + opts.interval*time.Duration(count) + timeouts.TimerDeadlineSlack
	waitCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	t0 := start
	received := 0

	for received < count {
		select {
		case f := <-firings:
			received++
			fmt.Fprintf(out, "#%d  +%s  (since previous %s)\n", f.n, ticksToDuration(f.ticks-start, freq), ticksToDuration(f.ticks-t0, freq))
			t0 = f.ticks

		case <-waitCtx.Done():
			ec.log.Warn("Stopped waiting for firings", slog.Int("received", received), slog.Int("expected", count))
			received = count
		}
	}

	if err := t.Delete(completion); err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}

	ec.log.Debug("Timer deleted", slog.String("completion", completion.String()))
	return nil
}

// ticksToDuration converts a performance-counter delta to a duration
func ticksToDuration(ticks, freq int64) time.Duration {
	if freq <= 0 {
		return 0
	}

	sec := ticks / freq
	rem := ticks % freq

	return time.Duration(sec)*time.Second + time.Duration(rem*int64(time.Second)/freq)
}
