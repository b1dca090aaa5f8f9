package domain

// TableRegion is a grid of cells detected on a page.
// Row 0 is the header row.
type TableRegion struct {
	// Page is the 0-based page the table was found on.
	Page int

	// Rows holds the cell values, row-major.
	Rows [][]string
}

// NumRows returns the number of rows including the header.
func (t TableRegion) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the width of the widest row.
func (t TableRegion) NumColumns() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// Cell returns the value at (row, col), or "" when the cell is absent.
func (t TableRegion) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// ForwardFill returns a copy of the table in which every empty cell below
// the header takes the nearest preceding non-empty value of its column.
// The header row is copied unchanged. Ragged rows are padded to full width.
func (t TableRegion) ForwardFill() TableRegion {
	cols := t.NumColumns()
	filled := TableRegion{
		Page: t.Page,
		Rows: make([][]string, len(t.Rows)),
	}

	last := make([]string, cols)
	for r := range t.Rows {
		row := make([]string, cols)
		for c := 0; c < cols; c++ {
			v := t.Cell(r, c)
			if v == "" && r > 0 {
				v = last[c]
			}
			row[c] = v
			if v != "" {
				last[c] = v
			}
		}
		filled.Rows[r] = row
	}

	return filled
}

// TableSurrogate is the flattened text form of a table.
type TableSurrogate struct {
	// Index is the table's position in detection order on its page.
	Index int

	// Text is the serialized table.
	Text string
}
