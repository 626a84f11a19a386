package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Norgate-AV/wintool/internal/timeouts"
	"github.com/Norgate-AV/wintool/internal/windows"
)

// watchBuffer is the number of window events queued between the watcher and the printer
const watchBuffer = 64

type watchOptions struct {
	class    string
	title    string
	pid      uint32
	interval time.Duration
	waitFor  string
	timeout  time.Duration
}

func newWatchCmd() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print windows as they appear until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(ctx context.Context, ec *ExecutionContext) error {
				return runWatch(ctx, cmd, ec, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.class, "class", "", "only windows with this class name")
	cmd.Flags().StringVar(&opts.title, "title", "", "only windows with exactly this title")
	cmd.Flags().Uint32Var(&opts.pid, "pid", 0, "only windows owned by this process")
	cmd.Flags().DurationVar(&opts.interval, "interval", timeouts.WatchPollingInterval, "polling interval")
	cmd.Flags().StringVar(&opts.waitFor, "for", "", "exit once a window with this title appears")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "give up waiting after this long (with --for)")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, ec *ExecutionContext, opts *watchOptions) error {
	if opts.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", opts.interval)
	}

	watcher := ec.deps.Watcher(windows.Filter{
		Class:       opts.class,
		Title:       opts.title,
		Pid:         opts.pid,
		VisibleOnly: true,
	}, opts.interval)

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan windows.WindowEvent, watchBuffer)
	out := cmd.OutOrStdout()

	var found bool

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watcher.Run(gctx, events)
	})

	g.Go(func() error {
		if opts.waitFor != "" {
			ev, ok := watcher.WaitFor(gctx, events, func(ev windows.WindowEvent) bool {
				return ev.Title == opts.waitFor
			})

			if ok {
				found = true
				printEvent(out, ev)
			}

			// Stop the watcher once the wait is over
			cancel()
			return nil
		}

		for {
			select {
			case ev := <-events:
				printEvent(out, ev)
			case <-gctx.Done():
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if opts.waitFor != "" && !found {
		ec.log.Warn("Window did not appear", slog.String("title", opts.waitFor))
		return fmt.Errorf("window %q did not appear", opts.waitFor)
	}

	return nil
}

func printEvent(w io.Writer, ev windows.WindowEvent) {
	dimColor.Fprintf(w, "%s ", ev.Seen.Format("15:04:05.000"))
	fmt.Fprintf(w, "%s  pid=%d  class=%s  %q\n", hexHWND(uintptr(ev.Hwnd)), ev.Pid, ev.Class, ev.Title)
}
