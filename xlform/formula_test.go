package xlform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormulaNotationDerivation(t *testing.T) {
	f := NewFormula(Position{5, 3}, NotationA1, "=A1+$B$2")
	assert.Equal(t, "A1+$B$2", f.Text(), "marker must be stripped")
	assert.Equal(t, "R[-4]C[-2]+R2C2", f.TextR1C1())

	f = NewFormula(Position{2, 2}, NotationR1C1, "R1C1*2")
	assert.Equal(t, "$A$1*2", f.Text())
	assert.Equal(t, "R1C1*2", f.TextR1C1())
}

func TestFormulaDerivedTextIsCached(t *testing.T) {
	f := NewFormula(Position{5, 3}, NotationA1, "A1")
	require.Empty(t, f.r1c1)
	require.Equal(t, "R[-4]C[-2]", f.TextR1C1())
	assert.Equal(t, "R[-4]C[-2]", f.r1c1, "derived text must be stored on the record")
	assert.Equal(t, "A1", f.a1, "stored notation must survive derivation")
}

func TestFormulaSetterInvalidatesDerivedText(t *testing.T) {
	f := NewFormula(Position{1, 1}, NotationA1, "A1")
	require.Equal(t, "RC", f.TextR1C1())

	f.SetNormal(NotationA1, "B2")
	assert.Equal(t, "R[1]C[1]", f.TextR1C1(), "stale derived text survived the setter")

	f.SetNormal(NotationR1C1, "R[2]C")
	assert.Equal(t, "A3", f.Text())
}

func TestFormulaKindTransitionsClearPayloads(t *testing.T) {
	cell := Position{1, 1}
	rng := NewRef(Position{1, 1}, Position{3, 3})

	f := NewArrayFormula(cell, NotationA1, "{=A1+1}", rng, true)
	require.Equal(t, FormulaArray, f.Kind())
	require.NotNil(t, f.Array())
	assert.True(t, f.Array().AlwaysRecalculate)
	assert.Equal(t, rng, f.Array().Range)
	assert.Equal(t, "A1+1", f.Text(), "array markers must be stripped")
	assert.Equal(t, "{A1+1}", f.WireText())

	f.SetNormal(NotationA1, "=B1")
	assert.Equal(t, FormulaNormal, f.Kind())
	assert.Nil(t, f.Array())
	assert.Equal(t, "B1", f.WireText())

	f.SetDataTable1D(rng, true, Position{1, 2}, false)
	assert.Equal(t, FormulaDataTable, f.Kind())
	assert.Nil(t, f.Array())
	require.NotNil(t, f.DataTable())
	assert.False(t, f.Is2DDataTable())

	f.SetNormal(NotationA1, "C1")
	assert.Nil(t, f.DataTable())
	assert.Equal(t, "C1", f.Text())
}

func TestFormulaDataTable2D(t *testing.T) {
	cell := Position{5, 5}
	rng := NewRef(Position{5, 5}, Position{9, 9})
	rowInput := Position{1, 2}
	colInput := Position{2, 1}

	tests := []struct {
		name       string
		rowDeleted bool
		colDeleted bool
		wantText   string
	}{
		{"both inputs live", false, false, "{TABLE(B1,A2}"},
		{"row input deleted", true, false, "{TABLE(#REF!,A2}"},
		{"both deleted", true, true, "{TABLE(#REF!,#REF!}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDataTable2D(cell, rng, rowInput, colInput, tt.rowDeleted, tt.colDeleted)
			require.True(t, f.Is2DDataTable())
			dt := f.DataTable()
			require.NotNil(t, dt)
			assert.Equal(t, rowInput, dt.Input1)
			assert.Equal(t, colInput, dt.Input2)
			assert.Equal(t, rng, dt.Range)
			assert.Equal(t, tt.wantText, f.Text())
			assert.Equal(t, tt.wantText, f.WireText())
		})
	}
}

func TestFormulaDataTable1DText(t *testing.T) {
	cell := Position{3, 3}
	rng := NewRef(Position{3, 3}, Position{3, 9})
	input := Position{1, 2}

	f := NewDataTable1D(cell, rng, true, input, false)
	assert.Equal(t, "{TABLE(B1,}", f.Text(), "row-oriented input goes in the row slot")

	f = NewDataTable1D(cell, rng, false, input, false)
	assert.Equal(t, "{TABLE(,B1}", f.Text(), "column-oriented input goes in the column slot")

	f = NewDataTable1D(cell, rng, false, input, true)
	assert.Equal(t, "{TABLE(,#REF!}", f.Text())
}

func TestFormulaEval(t *testing.T) {
	f := NewFormula(Position{1, 1}, NotationA1, "=1+2")
	v, err := f.Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, Number(3), v)

	// The owning cell is the anchor regardless of the context's anchor.
	f = NewFormula(Position{5, 3}, NotationR1C1, "ROW()+COLUMN()")
	require.Equal(t, "ROW()+COLUMN()", f.Text())
	ctx := NewContext(nil, Position{9, 9})
	v, err = f.Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, Number(8), v)

	g := gridOf(t, map[string]Value{"A1": Number(2), "B1": Number(3)})
	f = NewFormula(Position{2, 1}, NotationR1C1, "SUM(R[-1]C:R[-1]C[1])")
	v, err = f.Eval(NewContext(g, Position{2, 1}))
	require.NoError(t, err)
	assert.Equal(t, Number(5), v)
}

func TestFormulaDataTableHasNoEvaluableText(t *testing.T) {
	rng := NewRef(Position{1, 1}, Position{2, 2})
	f := NewDataTable1D(Position{1, 1}, rng, true, Position{1, 2}, false)
	_, err := f.Eval(nil)
	assert.Error(t, err)
}
