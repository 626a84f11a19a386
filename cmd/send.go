package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/wintool/internal/timeouts"
	"github.com/Norgate-AV/wintool/internal/windows"
)

// messageNames are the symbolic message names accepted by --msg
var messageNames = map[string]uint32{
	"null":       windows.WM_NULL,
	"close":      windows.WM_CLOSE,
	"quit":       windows.WM_QUIT,
	"command":    windows.WM_COMMAND,
	"syscommand": windows.WM_SYSCOMMAND,
}

type sendOptions struct {
	hwnd       string
	msg        string
	wparam     string
	lparam     string
	timeout    time.Duration
	post       bool
	click      string
	setText    string
	getText    bool
	key        string
	foreground bool
	close      bool
}

func newSendCmd() *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message, click, text or key to a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(_ context.Context, ec *ExecutionContext) error {
				return runSend(cmd, ec, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.hwnd, "hwnd", "", "target window handle (decimal or 0x hex)")
	cmd.Flags().StringVar(&opts.msg, "msg", "", "message number or name (null, close, quit, command, syscommand)")
	cmd.Flags().StringVar(&opts.wparam, "wparam", "0", "message wParam")
	cmd.Flags().StringVar(&opts.lparam, "lparam", "0", "message lParam")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", timeouts.MessageTimeout, "give up on a hung window after this long (0 waits forever)")
	cmd.Flags().BoolVar(&opts.post, "post", false, "post the message instead of sending it")
	cmd.Flags().StringVar(&opts.click, "click", "", "click the child button with this caption")
	cmd.Flags().StringVar(&opts.setText, "set-text", "", "set the window text")
	cmd.Flags().BoolVar(&opts.getText, "get-text", false, "print the window text")
	cmd.Flags().StringVar(&opts.key, "key", "", "press a key (ENTER, ESC, F1..F24, A..Z, 0..9)")
	cmd.Flags().BoolVar(&opts.foreground, "foreground", false, "with --key, focus the window and use SendInput")
	cmd.Flags().BoolVar(&opts.close, "close", false, "close the window gracefully")

	_ = cmd.MarkFlagRequired("hwnd")
	cmd.MarkFlagsMutuallyExclusive("msg", "click", "set-text", "get-text", "key", "close")
	cmd.MarkFlagsOneRequired("msg", "click", "set-text", "get-text", "key", "close")

	return cmd
}

// parseMessage accepts a symbolic name or a numeric message
func parseMessage(s string) (uint32, error) {
	if msg, ok := messageNames[strings.ToLower(s)]; ok {
		return msg, nil
	}

	v, err := parseUint(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid message %q: %w", s, err)
	}

	return uint32(v), nil
}

func runSend(cmd *cobra.Command, ec *ExecutionContext, opts *sendOptions) error {
	hwnd, err := parseHWND(opts.hwnd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch {
	case opts.close:
		return ec.deps.Windows.Close(hwnd, ec.deps.Messages.GetText(hwnd))

	case opts.click != "":
		if !ec.deps.Windows.ClickButton(hwnd, opts.click) {
			return fmt.Errorf("button %q not found", opts.click)
		}

		return nil

	case cmd.Flags().Changed("set-text"):
		if err := ec.deps.Messages.SetText(hwnd, opts.setText); err != nil {
			return fmt.Errorf("failed to set text: %w", err)
		}

		return nil

	case opts.getText:
		fmt.Fprintln(out, ec.deps.Messages.GetText(hwnd))
		return nil

	case opts.key != "":
		return sendKey(ec, hwnd, opts)
	}

	msg, err := parseMessage(opts.msg)
	if err != nil {
		return err
	}

	wparam, err := parseAddr(opts.wparam)
	if err != nil {
		return err
	}

	lparam, err := parseAddr(opts.lparam)
	if err != nil {
		return err
	}

	ec.log.Debug("Delivering message",
		slog.Uint64("hwnd", uint64(hwnd)),
		slog.Uint64("msg", uint64(msg)),
		slog.Bool("post", opts.post))

	if opts.post {
		return ec.deps.Messages.Post(hwnd, msg, wparam, lparam)
	}

	var result uintptr
	if opts.timeout > 0 {
		result, err = ec.deps.Messages.SendTimeout(hwnd, msg, wparam, lparam, opts.timeout)
		if err != nil {
			return fmt.Errorf("message not delivered: %w", err)
		}
	} else {
		result = ec.deps.Messages.Send(hwnd, msg, wparam, lparam)
	}

	fmt.Fprintf(out, "%#x\n", result)
	return nil
}

func sendKey(ec *ExecutionContext, hwnd windows.HWND, opts *sendOptions) error {
	vk, err := windows.ParseKey(opts.key)
	if err != nil {
		return err
	}

	if !opts.foreground {
		if !ec.deps.Keyboard.SendKeyToWindow(hwnd, vk) {
			return errors.New("key was not delivered")
		}

		return nil
	}

	if !ec.deps.Windows.SetForeground(hwnd) {
		ec.log.Warn("Window could not be brought to the foreground", slog.Uint64("hwnd", uint64(hwnd)))
	}

	time.Sleep(timeouts.KeystrokeDelay)

	if !ec.deps.Keyboard.SendKey(vk) {
		return errors.New("key was not delivered")
	}

	return nil
}
