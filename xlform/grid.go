package xlform

// Grid supplies cell values to the evaluator. NRows and NCols bound the
// populated region: aggregates clamp whole-row and whole-column ranges to
// them instead of walking the full worksheet extent.
type Grid interface {
	// CellValue returns the value stored at the 1-based coordinate. Cells
	// outside the populated region are empty, not errors.
	CellValue(row, col int) Value
	// NRows is the number of populated rows: the highest 1-based row
	// index holding a value.
	NRows() int
	// NCols is the number of populated columns: the highest 1-based
	// column index holding a value.
	NCols() int
}

// MapGrid is a sparse in-memory Grid keyed by cell position. The zero value
// is not usable; call NewMapGrid. MapGrid is not safe for concurrent use.
type MapGrid struct {
	cells map[Position]Value
	nrows int
	ncols int
}

// NewMapGrid returns an empty grid.
func NewMapGrid() *MapGrid {
	return &MapGrid{cells: make(map[Position]Value)}
}

// Set stores v at the 1-based coordinate. Storing an empty Value clears the
// cell. Coordinates outside the worksheet extent are ignored.
func (g *MapGrid) Set(row, col int, v Value) {
	p := Position{Row: row, Col: col}
	if !p.Valid() {
		return
	}
	if v.IsEmpty() {
		delete(g.cells, p)
		return
	}
	g.cells[p] = v
	if row > g.nrows {
		g.nrows = row
	}
	if col > g.ncols {
		g.ncols = col
	}
}

// SetNumber stores a numeric cell.
func (g *MapGrid) SetNumber(row, col int, n float64) { g.Set(row, col, Number(n)) }

// SetText stores a text cell.
func (g *MapGrid) SetText(row, col int, s string) { g.Set(row, col, Text(s)) }

// SetBool stores a boolean cell.
func (g *MapGrid) SetBool(row, col int, b bool) { g.Set(row, col, Bool(b)) }

// SetError stores a typed error cell.
func (g *MapGrid) SetError(row, col int, code ErrorCode) { g.Set(row, col, NewError(code)) }

// CellValue returns the value at the coordinate, or the empty Value.
func (g *MapGrid) CellValue(row, col int) Value {
	return g.cells[Position{Row: row, Col: col}]
}

// NRows returns the highest populated row index.
func (g *MapGrid) NRows() int { return g.nrows }

// NCols returns the highest populated column index.
func (g *MapGrid) NCols() int { return g.ncols }

// Len returns the number of populated cells.
func (g *MapGrid) Len() int { return len(g.cells) }
