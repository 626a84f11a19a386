package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/wintool/internal/windows"
)

type windowsOptions struct {
	class    string
	title    string
	pid      uint32
	parent   string
	visible  bool
	children string
}

func newWindowsCmd() *cobra.Command {
	opts := &windowsOptions{}

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List top-level windows or the child controls of a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(_ context.Context, ec *ExecutionContext) error {
				return runWindows(cmd, ec, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.class, "class", "", "only windows with this class name")
	cmd.Flags().StringVar(&opts.title, "title", "", "only windows with exactly this title")
	cmd.Flags().Uint32Var(&opts.pid, "pid", 0, "only windows owned by this process")
	cmd.Flags().StringVar(&opts.parent, "parent", "", "enumerate the children of this window handle")
	cmd.Flags().BoolVar(&opts.visible, "visible", false, "only visible windows")
	cmd.Flags().StringVar(&opts.children, "children", "", "list the child controls of this window handle")

	return cmd
}

func (o *windowsOptions) filter() (windows.Filter, error) {
	filter := windows.Filter{
		Class:       o.class,
		Title:       o.title,
		Pid:         o.pid,
		VisibleOnly: o.visible,
	}

	if o.parent != "" {
		parent, err := parseHWND(o.parent)
		if err != nil {
			return filter, err
		}

		filter.Parent = parent
	}

	return filter, nil
}

func runWindows(cmd *cobra.Command, ec *ExecutionContext, opts *windowsOptions) error {
	if opts.children != "" {
		hwnd, err := parseHWND(opts.children)
		if err != nil {
			return err
		}

		return printChildren(cmd, ec, hwnd)
	}

	filter, err := opts.filter()
	if err != nil {
		return err
	}

	infos, err := ec.deps.Windows.List(filter)
	if err != nil {
		ec.log.Error("Window enumeration failed", slog.Any("error", err))
		return fmt.Errorf("failed to list windows: %w", err)
	}

	ec.log.Debug("Windows listed", slog.Int("count", len(infos)))

	t := newTable("HWND", "PID", "VISIBLE", "CLASS", "TITLE")
	for _, info := range infos {
		t.add(hexHWND(uintptr(info.Hwnd)), strconv.FormatUint(uint64(info.Pid), 10), strconv.FormatBool(info.Visible), info.Class, info.Title)
	}

	t.write(cmd.OutOrStdout())
	return nil
}

func printChildren(cmd *cobra.Command, ec *ExecutionContext, hwnd windows.HWND) error {
	children := ec.deps.Windows.CollectChildInfos(hwnd)

	ec.log.Debug("Child controls collected",
		slog.Uint64("hwnd", uint64(hwnd)),
		slog.Int("count", len(children)))

	t := newTable("HWND", "CLASS", "TEXT")
	for _, child := range children {
		text := child.Text
		if len(child.Items) > 0 {
			text = strings.Join(child.Items, " | ")
		}

		t.add(hexHWND(uintptr(child.Hwnd)), child.ClassName, text)
	}

	t.write(cmd.OutOrStdout())
	return nil
}
