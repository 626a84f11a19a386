package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Norgate-AV/wintool/internal/timeouts"
	"github.com/Norgate-AV/wintool/internal/windows"
)

// findFiles runs one search to completion. Tests replace it.
var findFiles = func(pattern string, opts windows.SearchOptions) (entries []windows.FileEntry, err error) {
	s, err := windows.Search(pattern, opts)
	if err != nil {
		return nil, err
	}

	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for entry, err := range s.All() {
		if err != nil {
			return entries, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

type searchOptions struct {
	dirs          bool
	caseSensitive bool
	watch         bool
	debounce      time.Duration
}

func newSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search PATTERN",
		Short: "Find files matching a wildcard pattern (e.g. C:\\logs\\*.log)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, func(ctx context.Context, ec *ExecutionContext) error {
				return runSearch(ctx, cmd, ec, args[0], opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.dirs, "dirs", false, "only directories")
	cmd.Flags().BoolVar(&opts.caseSensitive, "case-sensitive", false, "match names case sensitively")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-run the search whenever the directory changes")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", timeouts.SearchDebounce, "quiet period before a watched search re-runs")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, ec *ExecutionContext, pattern string, opts *searchOptions) error {
	searchOpts := windows.SearchOptions{
		DirectoriesOnly: opts.dirs,
		CaseSensitive:   opts.caseSensitive,
		LargeFetch:      true,
	}

	out := cmd.OutOrStdout()

	if err := printSearch(out, ec, pattern, searchOpts); err != nil {
		return err
	}

	if !opts.watch {
		return nil
	}

	return watchSearch(ctx, out, ec, pattern, searchOpts, opts.debounce)
}

func printSearch(out io.Writer, ec *ExecutionContext, pattern string, opts windows.SearchOptions) error {
	entries, err := findFiles(pattern, opts)
	if err != nil {
		ec.log.Error("Search failed", slog.String("pattern", pattern), slog.Any("error", err))
		return fmt.Errorf("search %q failed: %w", pattern, err)
	}

	ec.log.Debug("Search complete", slog.String("pattern", pattern), slog.Int("matches", len(entries)))

	t := newTable("MODIFIED", "SIZE", "NAME")
	for _, e := range entries {
		size := strconv.FormatInt(e.Size, 10)
		if e.IsDir() {
			size = "<dir>"
		}

		t.add(e.ModTime.Format(time.DateTime), size, e.Name)
	}

	t.write(out)
	return nil
}

// watchSearch re-runs the search after each burst of changes in the pattern's directory
func watchSearch(ctx context.Context, out io.Writer, ec *ExecutionContext, pattern string, opts windows.SearchOptions, debounce time.Duration) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	defer fw.Close()

	dir := filepath.Dir(pattern)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ec.log.Info("Watching for changes", slog.String("dir", dir))

	rerun := make(chan struct{}, 1)

	g, gctx := errgroup.WithContext(ctx)

	// Collapse bursts of events into a single re-run
	g.Go(func() error {
		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-gctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return nil

			case ev, ok := <-fw.Events:
				if !ok {
					return nil
				}

				ec.log.Trace("File system event", slog.String("name", ev.Name), slog.String("op", ev.Op.String()))

				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C

			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}

				ec.log.Warn("File watcher error", slog.Any("error", err))

			case <-fire:
				fire = nil

				select {
				case rerun <- struct{}{}:
				default:
				}
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-rerun:
				dimColor.Fprintf(out, "-- %s --\n", time.Now().Format(time.TimeOnly))

				if err := printSearch(out, ec, pattern, opts); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}
