// Package cmd implements the command-line interface for wintool.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/wintool/internal/windows"
)

// Config holds all application configuration
type Config struct {
	Verbose  bool
	ShowLogs bool
	Elevate  bool
}

// NewConfigFromFlags creates a Config from parsed command flags
func NewConfigFromFlags(cmd *cobra.Command) *Config {
	return &Config{
		Verbose:  getBoolFlag(cmd, "verbose"),
		ShowLogs: getBoolFlag(cmd, "logs"),
		Elevate:  getBoolFlag(cmd, "elevate"),
	}
}

// getBoolFlag retrieves a boolean flag, checking both local and persistent flags
func getBoolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		// Try persistent flags if not found in local flags
		val, _ = cmd.PersistentFlags().GetBool(name)
	}

	return val
}

// parseHWND accepts decimal or 0x-prefixed hexadecimal window handles
func parseHWND(s string) (windows.HWND, error) {
	v, err := parseUint(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window handle %q: %w", s, err)
	}

	return windows.HWND(v), nil
}

// parseAddr accepts decimal or 0x-prefixed hexadecimal addresses
func parseAddr(s string) (uintptr, error) {
	v, err := parseUint(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}

	return uintptr(v), nil
}

// parseUint parses decimal, 0x hex, 0o octal or 0b binary values
func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 0, bits)
}
