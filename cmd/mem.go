package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/wintool/internal/windows"
)

type memOptions struct {
	pid       uint32
	addr      string
	size      int
	data      string
	committed bool
}

func newMemCmd() *cobra.Command {
	opts := &memOptions{}

	cmd := &cobra.Command{
		Use:   "mem",
		Short: "Read, write and map another process's memory",
	}

	cmd.PersistentFlags().Uint32Var(&opts.pid, "pid", 0, "process id")
	_ = cmd.MarkPersistentFlagRequired("pid")

	read := &cobra.Command{
		Use:   "read",
		Short: "Hex dump memory at an address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(_ context.Context, ec *ExecutionContext) error {
				return runMemRead(cmd, ec, opts)
			})
		},
	}
	read.Flags().StringVar(&opts.addr, "addr", "", "address (decimal or 0x hex)")
	read.Flags().IntVar(&opts.size, "size", 64, "number of bytes to read")
	_ = read.MarkFlagRequired("addr")

	write := &cobra.Command{
		Use:   "write",
		Short: "Write hex-encoded bytes at an address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(_ context.Context, ec *ExecutionContext) error {
				return runMemWrite(cmd, ec, opts)
			})
		},
	}
	write.Flags().StringVar(&opts.addr, "addr", "", "address (decimal or 0x hex)")
	write.Flags().StringVar(&opts.data, "data", "", "bytes to write, hex encoded (e.g. 90c3)")
	_ = write.MarkFlagRequired("addr")
	_ = write.MarkFlagRequired("data")

	regions := &cobra.Command{
		Use:   "regions",
		Short: "List the virtual memory regions of a process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(_ context.Context, ec *ExecutionContext) error {
				return runMemRegions(cmd, ec, opts)
			})
		},
	}
	regions.Flags().BoolVar(&opts.committed, "committed", false, "only committed regions")

	cmd.AddCommand(read, write, regions)
	return cmd
}

func runMemRead(cmd *cobra.Command, ec *ExecutionContext, opts *memOptions) error {
	addr, err := parseAddr(opts.addr)
	if err != nil {
		return err
	}

	if opts.size <= 0 {
		return fmt.Errorf("size must be positive, got %d", opts.size)
	}

	data, err := ec.deps.Process.ReadMemory(opts.pid, addr, opts.size)
	if len(data) > 0 {
		fmt.Fprint(cmd.OutOrStdout(), hex.Dump(data))
	}

	if err != nil {
		ec.log.Error("Memory read failed",
			slog.Uint64("pid", uint64(opts.pid)),
			slog.Int("read", len(data)),
			slog.Any("error", err))
		return fmt.Errorf("failed to read memory at %#x: %w", addr, err)
	}

	return nil
}

func runMemWrite(cmd *cobra.Command, ec *ExecutionContext, opts *memOptions) error {
	addr, err := parseAddr(opts.addr)
	if err != nil {
		return err
	}

	data, err := hex.DecodeString(strings.ReplaceAll(opts.data, " ", ""))
	if err != nil {
		return fmt.Errorf("invalid hex data: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("no data to write")
	}

	n, err := ec.deps.Process.WriteMemory(opts.pid, addr, data)
	if err != nil {
		return fmt.Errorf("failed to write memory at %#x: %w", addr, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d of %d bytes at %#x\n", n, len(data), addr)
	return nil
}

func runMemRegions(cmd *cobra.Command, ec *ExecutionContext, opts *memOptions) error {
	regions, err := ec.deps.Process.Regions(opts.pid)
	if err != nil && len(regions) == 0 {
		return fmt.Errorf("failed to query memory regions: %w", err)
	}

	t := newTable("BASE", "SIZE", "STATE", "PROTECT", "TYPE")
	for _, r := range regions {
		if opts.committed && !r.IsCommitted() {
			continue
		}

		t.add(fmt.Sprintf("%#x", r.Base), fmt.Sprintf("%#x", r.Size), regionState(r), fmt.Sprintf("%#x", r.Protect), fmt.Sprintf("%#x", r.Type))
	}

	t.write(cmd.OutOrStdout())

	if err != nil {
		ec.log.Warn("Region walk stopped early", slog.Any("error", err))
		return fmt.Errorf("region walk incomplete: %w", err)
	}

	return nil
}

func regionState(r windows.MemoryInfo) string {
	switch {
	case r.IsCommitted():
		return "commit"
	case r.IsReserved():
		return "reserve"
	case r.IsFree():
		return "free"
	default:
		return fmt.Sprintf("%#x", r.State)
	}
}
