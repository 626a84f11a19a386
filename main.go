// Package main is the entry point for the wintool command-line tool.
package main

import (
	"os"

	"github.com/Norgate-AV/wintool/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
