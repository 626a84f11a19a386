package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/wintool/internal/windows"
)

// iconFlags maps --icon values to MB_ICON* flags
var iconFlags = map[string]uint32{
	"":            0,
	"error":       windows.MB_ICONERROR,
	"question":    windows.MB_ICONQUESTION,
	"warning":     windows.MB_ICONWARNING,
	"information": windows.MB_ICONINFORMATION,
}

type msgBoxOptions struct {
	text    string
	caption string
	buttons string
	icon    string
	owner   string
}

func newMsgBoxCmd() *cobra.Command {
	opts := &msgBoxOptions{}

	cmd := &cobra.Command{
		Use:   "msgbox",
		Short: "Show a message box and print the button that dismissed it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(_ context.Context, ec *ExecutionContext) error {
				return runMsgBox(cmd, ec, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "message text")
	cmd.Flags().StringVar(&opts.caption, "caption", "wintool", "title bar text")
	cmd.Flags().StringVar(&opts.buttons, "buttons", "ok", "button set ("+strings.Join(buttonSetNames(), ", ")+")")
	cmd.Flags().StringVar(&opts.icon, "icon", "", "icon (error, question, warning, information)")
	cmd.Flags().StringVar(&opts.owner, "owner", "", "owner window handle")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func buttonSetNames() []string {
	names := make([]string, 0, len(windows.ButtonSets))
	for name := range windows.ButtonSets {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

// msgBoxFlags combines the button set and icon names into MB_* flags
func msgBoxFlags(buttons, icon string) (uint32, error) {
	b, ok := windows.ButtonSets[strings.ToLower(buttons)]
	if !ok {
		return 0, fmt.Errorf("unknown button set %q", buttons)
	}

	i, ok := iconFlags[strings.ToLower(icon)]
	if !ok {
		return 0, fmt.Errorf("unknown icon %q", icon)
	}

	return b | i, nil
}

func runMsgBox(cmd *cobra.Command, ec *ExecutionContext, opts *msgBoxOptions) error {
	flags, err := msgBoxFlags(opts.buttons, opts.icon)
	if err != nil {
		return err
	}

	box := windows.NewMessageBox(opts.text).Caption(opts.caption).Flags(flags)

	if opts.owner != "" {
		owner, err := parseHWND(opts.owner)
		if err != nil {
			return err
		}

		box.Owner(owner)
	}

	result, err := box.Show()
	if err != nil {
		return fmt.Errorf("message box failed: %w", err)
	}

	ec.log.Debug("Message box dismissed", slog.String("result", result.String()))
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}
