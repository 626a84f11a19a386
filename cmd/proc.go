package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

type procOptions struct {
	pid  uint32
	kill bool
}

func newProcCmd() *cobra.Command {
	opts := &procOptions{}

	cmd := &cobra.Command{
		Use:   "proc",
		Short: "Show a process's executable and main window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(_ context.Context, ec *ExecutionContext) error {
				return runProc(cmd, ec, opts)
			})
		},
	}

	cmd.Flags().Uint32Var(&opts.pid, "pid", 0, "process id")
	cmd.Flags().BoolVar(&opts.kill, "kill", false, "terminate the process")
	_ = cmd.MarkFlagRequired("pid")

	return cmd
}

func runProc(cmd *cobra.Command, ec *ExecutionContext, opts *procOptions) error {
	if opts.kill {
		if err := ec.deps.Process.Terminate(opts.pid); err != nil {
			ec.log.Error("Terminate failed", slog.Uint64("pid", uint64(opts.pid)), slog.Any("error", err))
			return fmt.Errorf("failed to terminate process %d: %w", opts.pid, err)
		}

		return nil
	}

	info, err := ec.deps.Process.Info(opts.pid)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	headerColor.Fprint(out, "pid     ")
	fmt.Fprintln(out, info.Pid)
	headerColor.Fprint(out, "exe     ")
	fmt.Fprintln(out, info.ExePath)

	headerColor.Fprint(out, "window  ")
	if info.Window == 0 {
		dimColor.Fprintln(out, "(none)")
		return nil
	}

	fmt.Fprintf(out, "%s %q\n", hexHWND(uintptr(info.Window)), info.Title)
	return nil
}
