package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/wintool/internal/windows"
)

func newModuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "module",
		Short: "Print the path of the running executable, resolved from one of its code addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(_ context.Context, ec *ExecutionContext) error {
				module, err := windows.OwnModule()
				if err != nil {
					return fmt.Errorf("failed to resolve module: %w", err)
				}

				path, err := windows.ModuleFileName(module)
				if err != nil {
					return fmt.Errorf("failed to read module path: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%#x  %s\n", uintptr(module), path)
				return nil
			})
		},
	}
}
