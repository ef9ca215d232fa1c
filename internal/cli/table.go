package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table renders rows with go-pretty.
type Table struct {
	tw table.Writer
}

// NewTable creates a table with the given headers that renders to w.
// Terminals get box drawing, other writers a plain layout that is easy
// to pipe into grep or awk.
func NewTable(w io.Writer, headers ...string) *Table {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	tw.AppendHeader(row)

	if IsTerminal(w) {
		tw.SetStyle(table.StyleLight)
	} else {
		style := table.StyleDefault
		style.Options = table.OptionsNoBordersAndSeparators
		style.Box.PaddingLeft = ""
		style.Box.PaddingRight = "   "
		tw.SetStyle(style)
	}
	return &Table{tw: tw}
}

// Append adds a row.
func (t *Table) Append(cells ...interface{}) {
	t.tw.AppendRow(table.Row(cells))
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.tw.Length()
}

// Render writes the table.
func (t *Table) Render() {
	t.tw.Render()
}
