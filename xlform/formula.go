package xlform

import (
	"fmt"
	"strings"
)

// FormulaKind classifies how a formula is stored on its cell.
type FormulaKind uint8

const (
	// FormulaNormal is an ordinary single-cell formula.
	FormulaNormal FormulaKind = iota
	// FormulaShared is reserved. Shared formula groups are expanded to
	// per-cell normal formulas before they reach this layer, so no setter
	// produces this kind.
	FormulaShared
	// FormulaArray is a formula entered over a rectangular range.
	FormulaArray
	// FormulaDataTable is a what-if data table over a rectangular range.
	FormulaDataTable
)

// Notation names the two reference notations formula text can use.
type Notation uint8

const (
	// NotationA1 is letter notation: columns as letters, rows as numbers.
	NotationA1 Notation = iota
	// NotationR1C1 is offset notation: coordinates spelled R and C, with
	// bracketed deltas for components relative to the owning cell.
	NotationR1C1
)

// TableOrientation describes how a data table substitutes its inputs.
type TableOrientation uint8

const (
	// TableRow is a one-dimensional table whose input feeds across a row.
	TableRow TableOrientation = iota
	// TableColumn is a one-dimensional table whose input feeds down a
	// column.
	TableColumn
	// Table2D is a two-dimensional table with both a row and a column
	// input.
	Table2D
)

// ArrayInfo is the payload of an array formula.
type ArrayInfo struct {
	// Range is the rectangle the array formula was entered over.
	Range Ref
	// AlwaysRecalculate forces recalculation on every pass.
	AlwaysRecalculate bool
}

// DataTableInfo is the payload of a data-table formula.
type DataTableInfo struct {
	// Range is the rectangle the table fills.
	Range Ref
	// Orientation selects row, column or two-dimensional substitution.
	Orientation TableOrientation
	// Input1 is the row input cell for row-oriented and two-dimensional
	// tables, and the column input cell for column-oriented ones.
	Input1 Position
	// Input2 is the column input cell of a two-dimensional table.
	Input2 Position
	// Input1Deleted and Input2Deleted record that the input cell was
	// deleted after the table was built.
	Input1Deleted bool
	Input2Deleted bool
}

// Formula is a cell's stored formula: its text in one of two notations plus
// kind-specific state. The notation not supplied at the last mutation is
// derived on first request, by translating the stored text anchored at the
// owning cell, and cached until the next mutation. Formula is not safe for
// concurrent use.
type Formula struct {
	cell  Position
	kind  FormulaKind
	a1    string
	r1c1  string
	array *ArrayInfo
	table *DataTableInfo
}

// NewFormula builds a normal formula owned by cell.
func NewFormula(cell Position, n Notation, text string) *Formula {
	f := &Formula{cell: cell}
	f.SetNormal(n, text)
	return f
}

// NewArrayFormula builds an array formula entered over rng.
func NewArrayFormula(cell Position, n Notation, text string, rng Ref, alwaysRecalc bool) *Formula {
	f := &Formula{cell: cell}
	f.SetArray(n, text, rng, alwaysRecalc)
	return f
}

// NewDataTable1D builds a one-dimensional data-table formula.
func NewDataTable1D(cell Position, rng Ref, rowOriented bool, input Position, inputDeleted bool) *Formula {
	f := &Formula{cell: cell}
	f.SetDataTable1D(rng, rowOriented, input, inputDeleted)
	return f
}

// NewDataTable2D builds a two-dimensional data-table formula.
func NewDataTable2D(cell Position, rng Ref, rowInput, colInput Position, rowDeleted, colDeleted bool) *Formula {
	f := &Formula{cell: cell}
	f.SetDataTable2D(rng, rowInput, colInput, rowDeleted, colDeleted)
	return f
}

// SetNormal replaces the record with a normal formula. Like every setter it
// overwrites the kind, both notation caches and all kind-specific payloads.
func (f *Formula) SetNormal(n Notation, text string) {
	f.kind = FormulaNormal
	f.array = nil
	f.table = nil
	f.setText(n, text)
}

// SetArray replaces the record with an array formula over rng.
func (f *Formula) SetArray(n Notation, text string, rng Ref, alwaysRecalc bool) {
	f.kind = FormulaArray
	f.array = &ArrayInfo{Range: rng, AlwaysRecalculate: alwaysRecalc}
	f.table = nil
	f.setText(n, text)
}

// SetDataTable1D replaces the record with a one-dimensional data table.
// rowOriented selects whether input feeds across a row or down a column.
func (f *Formula) SetDataTable1D(rng Ref, rowOriented bool, input Position, inputDeleted bool) {
	orient := TableColumn
	if rowOriented {
		orient = TableRow
	}
	f.kind = FormulaDataTable
	f.array = nil
	f.table = &DataTableInfo{
		Range:         rng,
		Orientation:   orient,
		Input1:        input,
		Input1Deleted: inputDeleted,
	}
	f.a1 = ""
	f.r1c1 = ""
}

// SetDataTable2D replaces the record with a two-dimensional data table
// taking both a row input and a column input cell.
func (f *Formula) SetDataTable2D(rng Ref, rowInput, colInput Position, rowDeleted, colDeleted bool) {
	f.kind = FormulaDataTable
	f.array = nil
	f.table = &DataTableInfo{
		Range:         rng,
		Orientation:   Table2D,
		Input1:        rowInput,
		Input2:        colInput,
		Input1Deleted: rowDeleted,
		Input2Deleted: colDeleted,
	}
	f.a1 = ""
	f.r1c1 = ""
}

func (f *Formula) setText(n Notation, text string) {
	text = stripFormulaMarkers(text)
	if n == NotationR1C1 {
		f.r1c1 = text
		f.a1 = ""
	} else {
		f.a1 = text
		f.r1c1 = ""
	}
}

// stripFormulaMarkers removes the "=" and "{=...}" storage markers from
// formula text handed to a setter.
func stripFormulaMarkers(text string) string {
	if strings.HasPrefix(text, "{=") && strings.HasSuffix(text, "}") {
		return text[2 : len(text)-1]
	}
	return strings.TrimPrefix(text, "=")
}

// Cell returns the owning cell, the anchor for notation derivation.
func (f *Formula) Cell() Position { return f.cell }

// Kind returns the formula kind.
func (f *Formula) Kind() FormulaKind { return f.kind }

// Array returns the array payload, nil unless Kind is FormulaArray.
func (f *Formula) Array() *ArrayInfo { return f.array }

// DataTable returns the data-table payload, nil unless Kind is
// FormulaDataTable.
func (f *Formula) DataTable() *DataTableInfo { return f.table }

// Is2DDataTable reports whether the record is a two-dimensional data table.
func (f *Formula) Is2DDataTable() bool {
	return f.table != nil && f.table.Orientation == Table2D
}

// Text returns the formula in letter notation, deriving and caching it from
// the offset-notation text when that is all the record holds.
func (f *Formula) Text() string {
	if f.kind == FormulaDataTable {
		return f.tableText()
	}
	if f.a1 == "" && f.r1c1 != "" {
		f.a1 = Translate(f.r1c1, OffsetToLetter, f.cell)
	}
	return f.a1
}

// TextR1C1 returns the formula in offset notation relative to the owning
// cell, deriving and caching it from the letter-notation text when needed.
func (f *Formula) TextR1C1() string {
	if f.kind == FormulaDataTable {
		return f.tableText()
	}
	if f.r1c1 == "" && f.a1 != "" {
		f.r1c1 = Translate(f.a1, LetterToOffset, f.cell)
	}
	return f.r1c1
}

// WireText returns the external form: array formulas wrapped in braces,
// data tables as their placeholder, normal formulas as plain text.
func (f *Formula) WireText() string {
	switch f.kind {
	case FormulaArray:
		return "{" + f.Text() + "}"
	case FormulaDataTable:
		return f.tableText()
	}
	return f.Text()
}

// tableText renders the data-table placeholder, "{TABLE(row,col}" with each
// input in letter notation. The unbalanced bracket pair is deliberate: the
// placeholder marks the cell for display and must never parse as a formula.
// A deleted input renders as #REF!, an absent one as nothing.
func (f *Formula) tableText() string {
	t := f.table
	if t == nil {
		return ""
	}
	var row, col string
	switch t.Orientation {
	case TableRow:
		row = tableInputName(t.Input1, t.Input1Deleted)
	case TableColumn:
		col = tableInputName(t.Input1, t.Input1Deleted)
	case Table2D:
		row = tableInputName(t.Input1, t.Input1Deleted)
		col = tableInputName(t.Input2, t.Input2Deleted)
	}
	return "{TABLE(" + row + "," + col + "}"
}

func tableInputName(p Position, deleted bool) string {
	if deleted {
		return ErrorRef.String()
	}
	return p.Name()
}

// Eval parses the letter-notation text and evaluates it with the owning
// cell as anchor. Data-table formulas carry no evaluable text.
func (f *Formula) Eval(ctx *Context) (Value, error) {
	if f.kind == FormulaDataTable {
		return Value{}, fmt.Errorf("data table at %s has no evaluable text", f.cell.Name())
	}
	expr, err := Parse(f.Text())
	if err != nil {
		return Value{}, err
	}
	var sub Context
	if ctx != nil {
		sub = *ctx
	} else {
		sub = *NewContext(nil, f.cell)
	}
	sub.Anchor = f.cell
	return derefScalar(&sub, expr.Eval(&sub)), nil
}
