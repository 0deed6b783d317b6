package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

type TableColumn struct {
	Header string
	Align  Align
}

// Table renders rows under a header with columns sized to their widest cell.
type Table struct {
	Columns []TableColumn
	Rows    [][]string
}

func NewTable(columns ...TableColumn) *Table {
	return &Table{Columns: columns}
}

// AddRow appends a row. Missing cells render empty and extra cells are
// dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = lipgloss.Width(col.Header)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder

	header := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = pad(col.Header, widths[i], AlignLeft)
		rule[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(StyleTableHeader.Render(strings.Join(header, "  ")))
	b.WriteString("\n")
	b.WriteString(StyleTableBorder.Render(strings.Join(rule, "  ")))
	b.WriteString("\n")

	for idx, row := range t.Rows {
		parts := make([]string, len(row))
		for i, cell := range row {
			parts[i] = pad(cell, widths[i], t.Columns[i].Align)
		}
		style := StyleTableRow
		if idx%2 == 1 {
			style = StyleTableRowAlt
		}
		b.WriteString(style.Render(strings.Join(parts, "  ")))
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int, align Align) string {
	n := width - lipgloss.Width(s)
	if n <= 0 {
		return s
	}
	if align == AlignRight {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}
