package table

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	apperrors "github.com/segyhp/loan-e2e/pkg/errors"
)

// Table is a Gherkin data table: a header row followed by data rows
type Table struct {
	Header []string
	Rows   [][]string
}

// New builds a table from raw cells; the first row is the header
func New(cells [][]string) (*Table, error) {
	if len(cells) == 0 {
		return nil, apperrors.WrapInvalidTable("table has no header row")
	}

	t := &Table{Header: trimAll(cells[0])}
	for i, row := range cells[1:] {
		if len(row) != len(t.Header) {
			return nil, apperrors.WrapInvalidTable(fmt.Sprintf("row %d has %d cells, header has %d", i+1, len(row), len(t.Header)))
		}
		t.Rows = append(t.Rows, trimAll(row))
	}
	return t, nil
}

// FromGodog converts a step's data table
func FromGodog(dt *godog.Table) (*Table, error) {
	return New(Cells(dt))
}

// Cells flattens a godog table into strings
func Cells(dt *godog.Table) [][]string {
	if dt == nil {
		return nil
	}
	cells := make([][]string, 0, len(dt.Rows))
	for _, row := range dt.Rows {
		values := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			values = append(values, cell.Value)
		}
		cells = append(cells, values)
	}
	return cells
}

// Maps returns one header-keyed map per data row
func (t *Table) Maps() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			m[h] = row[i]
		}
		out = append(out, m)
	}
	return out
}

// KeyValues reads a two-column table without header semantics:
// | principal | 1000 |
func KeyValues(cells [][]string) (map[string]string, error) {
	out := make(map[string]string, len(cells))
	for i, row := range cells {
		if len(row) != 2 {
			return nil, apperrors.WrapInvalidTable(fmt.Sprintf("row %d must have exactly 2 cells, has %d", i+1, len(row)))
		}
		out[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
	}
	return out, nil
}

// Format renders rows as a Gherkin table, used in mismatch reports
func Format(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteString("\n")
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
