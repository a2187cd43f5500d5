package field

import "efprobe/internal/fragment"

// Table accumulates rows for one field kind across the whole trajectory.
// Append-only: rows arrive in (frame, probe) order and are never rebuilt.
type Table struct {
	Kind      Kind
	Fragments []string
	Rows      []Row
}

// NewTable creates an empty table whose columns follow fragment order.
func NewTable(kind Kind, frags []fragment.Fragment) *Table {
	labels := make([]string, len(frags))
	for i, f := range frags {
		labels[i] = f.Label
	}
	return &Table{Kind: kind, Fragments: labels}
}

// Append adds one frame's rows.
func (t *Table) Append(rows []Row) {
	t.Rows = append(t.Rows, rows...)
}

// Frames returns the number of distinct frames recorded.
func (t *Table) Frames() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return t.Rows[len(t.Rows)-1].Frame + 1
}
