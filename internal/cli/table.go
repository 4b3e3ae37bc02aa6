package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table renders aligned columns for list commands
type Table struct {
	headers []string
	rows    [][]string
	writer  io.Writer
}

// NewTable creates a table with the given column headers
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{headers: headers, writer: w}
}

// AddRow appends a row. Missing cells render empty, extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the table
func (t *Table) Render() {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	t.printRow(t.headers, widths)
	sep := make([]string, len(t.headers))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	t.printRow(sep, widths)
	for _, row := range t.rows {
		t.printRow(row, widths)
	}
}

func (t *Table) printRow(cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := widths[i] - utf8.RuneCountInString(cell)
		parts[i] = cell + strings.Repeat(" ", pad)
	}
	fmt.Fprintln(t.writer, strings.TrimRight(strings.Join(parts, "  "), " "))
}
