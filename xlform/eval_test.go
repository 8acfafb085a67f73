package xlform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallDispatch(t *testing.T) {
	ctx := NewContext(nil, Position{1, 1})
	tests := []struct {
		name    string
		formula string
		want    Value
	}{
		{"case insensitive lookup", "=sum(1,2,3)", Number(6)},
		{"mixed case", "=Sum(1,2)", Number(3)},
		{"too few arguments", "=ABS()", NewError(ErrorNA)},
		{"too many arguments", "=ABS(1,2)", NewError(ErrorNA)},
		{"zero argument function", "=PI(1)", NewError(ErrorNA)},
		{"below minimum", "=IF(1)", NewError(ErrorNA)},
		{"unknown function", "=BOGUS(1)", NewError(ErrorName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalText(t, ctx, tt.formula))
		})
	}
}

func TestArithmeticAndCoercion(t *testing.T) {
	ctx := NewContext(nil, Position{1, 1})
	tests := []struct {
		name    string
		formula string
		want    Value
	}{
		{"divide", "=7/2", Number(3.5)},
		{"divide by zero", "=1/0", NewError(ErrorDiv0)},
		{"zero to the zero", "=0^0", NewError(ErrorNum)},
		{"power", "=2^10", Number(1024)},
		{"numeric text coerces", `="3"+4`, Number(7)},
		{"padded numeric text", `=" 3 "+4`, Number(7)},
		{"non-numeric text", `="x"+1`, NewError(ErrorValue)},
		{"logical coerces", "=TRUE+1", Number(2)},
		{"unary minus coerces", `=-"5"`, Number(-5)},
		{"unary minus rejects text", `=-"x"`, NewError(ErrorValue)},
		{"percent", "=50%", Number(0.5)},
		{"concat renders numbers", `=1.5&"x"`, Text("1.5x")},
		{"concat renders logicals", "=TRUE&1", Text("TRUE1")},
		{"error propagates left first", "=NA()+1/0", NewError(ErrorNA)},
		{"error in right operand", "=1+NA()", NewError(ErrorNA)},
		{"error through unary", "=-NA()", NewError(ErrorNA)},
		{"error through percent", "=NA()%", NewError(ErrorNA)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalText(t, ctx, tt.formula))
		})
	}
}

func TestComparisonOrdering(t *testing.T) {
	g := gridOf(t, map[string]Value{"A1": Number(2)})
	ctx := NewContext(g, Position{1, 1})
	tests := []struct {
		name    string
		formula string
		want    Value
	}{
		{"numbers", "=1<2", Bool(true)},
		{"number below text", `=2<"1"`, Bool(true)},
		{"text below logical", `="z"<TRUE`, Bool(true)},
		{"logical above number", "=TRUE>100", Bool(true)},
		{"false below true", "=FALSE<TRUE", Bool(true)},
		{"text case insensitive", `="abc"="ABC"`, Bool(true)},
		{"text ordering", `="a"<"b"`, Bool(true)},
		{"empty equals zero", "=D9=0", Bool(true)},
		{"empty equals empty text", `=D9=""`, Bool(true)},
		{"empty equals false", "=D9=FALSE", Bool(true)},
		{"cell comparison", "=A1>=2", Bool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalText(t, ctx, tt.formula))
		})
	}
}

func TestRangeValuesClamping(t *testing.T) {
	g := gridOf(t, map[string]Value{
		"A1": Number(1),
		"B2": Number(2),
	})
	ctx := NewContext(g, Position{1, 1})

	got := rangeValues(ctx, NewRef(Position{1, 1}, Position{MaxRows, 2}))
	assert.Len(t, got, 4, "whole-column walk must clamp to the populated region")

	assert.Empty(t, rangeValues(ctx, NewRef(Position{5, 5}, Position{9, 9})))
	assert.Empty(t, rangeValues(NewContext(nil, Position{1, 1}), CellRef(Position{1, 1})))
}
