package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/wintool/internal/interfaces"
	"github.com/Norgate-AV/wintool/internal/logger"
	"github.com/Norgate-AV/wintool/internal/version"
	"github.com/Norgate-AV/wintool/internal/windows"
)

// Dependencies are the Windows services the commands act on
type Dependencies struct {
	Windows  interfaces.WindowManager
	Messages interfaces.MessageSender
	Keyboard interfaces.KeyboardInjector
	Process  interfaces.ProcessInspector
	Watcher  func(filter windows.Filter, interval time.Duration) *windows.Watcher
}

// ExecutionContext holds the per-invocation state shared by a command and its
// signal handlers
type ExecutionContext struct {
	log      logger.LoggerInterface
	deps     *Dependencies
	exitFunc func(int) // Injectable for testing; defaults to os.Exit
}

// newExecution builds the logger and Windows services for one invocation.
// Tests replace it to inject mocks.
var newExecution = func(cfg *Config) (*ExecutionContext, error) {
	log, err := initializeLogger(cfg)
	if err != nil {
		return nil, err
	}

	api := windows.NewAPI(log)

	return &ExecutionContext{
		log: log,
		deps: &Dependencies{
			Windows:  api,
			Messages: api,
			Keyboard: api,
			Process:  api,
			Watcher:  api.NewWatcher,
		},
		exitFunc: os.Exit,
	}, nil
}

// RootCmd is the root command for the wintool CLI application.
var RootCmd = &cobra.Command{
	Use:          "wintool",
	Short:        "wintool - Inspect and drive Windows windows, processes and timers",
	Version:      version.GetVersion(),
	Args:         cobra.NoArgs,
	RunE:         Execute,
	SilenceUsage: true, // Don't show usage on runtime errors
}

func init() {
	// Set custom version template to show full version info
	RootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// Add flags
	RootCmd.PersistentFlags().BoolP("verbose", "V", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolP("logs", "l", false, "print the current log file to stdout and exit")
	RootCmd.PersistentFlags().Bool("elevate", false, "relaunch with administrator privileges when not elevated")

	RootCmd.AddCommand(
		newWindowsCmd(),
		newWatchCmd(),
		newSendCmd(),
		newProcCmd(),
		newMemCmd(),
		newSearchCmd(),
		newModuleCmd(),
		newTimerCmd(),
		newMsgBoxCmd(),
	)
}

// handleLogsFlag processes the --logs flag and exits if needed
func handleLogsFlag(cfg *Config, exitFunc func(int)) error {
	if !cfg.ShowLogs {
		return nil
	}

	if err := logger.PrintLogFile(nil, logger.LoggerOptions{}); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logPath := logger.GetLogPath(logger.LoggerOptions{})
			fmt.Fprintf(os.Stderr, "Log file does not exist: %s\n", logPath)
			exitFunc(1)
			return nil
		}

		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		exitFunc(1)
		return nil
	}

	exitFunc(0)
	return nil
}

// initializeLogger creates a logger writing to the default (or WINTOOL_LOG_DIR) location
func initializeLogger(cfg *Config) (logger.LoggerInterface, error) {
	log, err := logger.NewLogger(logger.LoggerOptions{
		Verbose:  cfg.Verbose,
		Compress: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// ensureElevated checks for admin privileges and relaunches if needed
func ensureElevated(log logger.LoggerInterface, exitFunc func(int)) error {
	return ensureElevatedWithDeps(log, windows.IsElevated, windows.RelaunchAsAdmin, exitFunc)
}

// ensureElevatedWithDeps is the testable version with injected dependencies
func ensureElevatedWithDeps(
	log logger.LoggerInterface,
	isElevated func() bool,
	relaunchAsAdmin func() error,
	exitFunc func(int),
) error {
	log.Debug("Checking elevation status")
	if !isElevated() {
		log.Info("Relaunching as administrator")

		if err := relaunchAsAdmin(); err != nil {
			log.Error("RelaunchAsAdmin failed", slog.Any("error", err))
			return fmt.Errorf("error relaunching as admin: %w", err)
		}

		// Exit this instance, the elevated one will continue
		log.Debug("Relaunched successfully, exiting non-elevated instance")
		log.Close()
		exitFunc(0)
		return nil
	}

	log.Debug("Running with administrator privileges")
	return nil
}

// setupSignalHandlers returns a context that is canceled on Ctrl+C, console close
// or SIGTERM. The returned stop function releases the signal subscription.
func setupSignalHandlers(ec *ExecutionContext) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	// Set up Windows console control handler to catch window close events
	if err := windows.SetConsoleCtrlHandler(func(ctrlType uint32) uintptr {
		ec.log.Debug("Received console control event",
			slog.String("type", windows.GetCtrlTypeName(ctrlType)),
			slog.Uint64("code", uint64(ctrlType)),
		)

		cancel()
		return 1
	}); err != nil {
		ec.log.Debug("Console control handler unavailable", slog.Any("error", err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			ec.log.Debug("Received signal", slog.Any("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// runWith prepares logging, elevation and panic recovery, then runs fn
func runWith(cmd *cobra.Command, fn func(ctx context.Context, ec *ExecutionContext) error) (err error) {
	cfg := NewConfigFromFlags(cmd)

	ec, err := newExecution(cfg)
	if err != nil {
		return err
	}

	defer ec.log.Close()

	if cfg.ShowLogs {
		return handleLogsFlag(cfg, ec.exitFunc)
	}

	ec.log.Debug("Starting wintool",
		slog.String("command", cmd.CommandPath()),
		slog.String("version", version.GetFullVersion()),
		slog.Bool("verbose", cfg.Verbose),
	)

	// Recover from panics and log them
	defer func() {
		if r := recover(); r != nil {
			ec.log.Error("PANIC RECOVERED",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)

			fmt.Fprintf(os.Stderr, "\n*** PANIC: %v ***\n", r)
			fmt.Fprintf(os.Stderr, "Check log file for details\n")
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if cfg.Elevate {
		if err := ensureElevated(ec.log, ec.exitFunc); err != nil {
			return err
		}
	}

	ctx, stop := setupSignalHandlers(ec)
	defer stop()

	return fn(ctx, ec)
}

// Execute runs the root command: with --logs it prints the log file, otherwise usage.
func Execute(cmd *cobra.Command, args []string) error {
	cfg := NewConfigFromFlags(cmd)

	if err := handleLogsFlag(cfg, os.Exit); err != nil {
		return err
	}

	return cmd.Help()
}
