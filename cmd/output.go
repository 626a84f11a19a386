package cmd

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	dimColor    = color.New(color.FgHiBlack)
)

// table prints aligned columns with a coloured header row
type table struct {
	header []string
	rows   [][]string
}

func newTable(header ...string) *table {
	return &table{header: header}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	w := make([]int, len(t.header))
	for i, h := range t.header {
		w[i] = utf8.RuneCountInString(h)
	}

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(w) {
				w[i] = max(w[i], utf8.RuneCountInString(cell))
			}
		}
	}

	return w
}

func (t *table) line(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		// The last column is not padded
		if i == len(cells)-1 || i >= len(widths) {
			parts[i] = cell
			continue
		}

		parts[i] = cell + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
	}

	return strings.Join(parts, "  ")
}

func (t *table) write(w io.Writer) {
	widths := t.widths()

	headerColor.Fprintln(w, t.line(t.header, widths))
	for _, row := range t.rows {
		fmt.Fprintln(w, t.line(row, widths))
	}

	if len(t.rows) == 0 {
		dimColor.Fprintln(w, "(none)")
	}
}

func hexHWND(v uintptr) string {
	return fmt.Sprintf("0x%x", v)
}
