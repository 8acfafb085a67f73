package xlform

import (
	"testing"
	"time"
)

// evalText parses and evaluates formula text against ctx, failing the test
// on a parse error.
func evalText(t *testing.T, ctx *Context, text string) Value {
	t.Helper()
	expr, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return expr.Eval(ctx)
}

// gridOf builds a MapGrid from cell-name/value pairs.
func gridOf(t *testing.T, cells map[string]Value) *MapGrid {
	t.Helper()
	g := NewMapGrid()
	for name, v := range cells {
		p, err := ParseCellName(name)
		if err != nil {
			t.Fatalf("ParseCellName(%q): %v", name, err)
		}
		g.Set(p.Row, p.Col, v)
	}
	return g
}

// fixedClock pins NOW and TODAY.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// fixedRand pins RAND.
type fixedRand struct {
	n float64
}

func (r fixedRand) Float64() float64 { return r.n }

// probeExpr records whether it was evaluated; laziness checks use it.
type probeExpr struct {
	evaluated bool
}

func (p *probeExpr) Eval(*Context) Value {
	p.evaluated = true
	return Number(0)
}

func (p *probeExpr) IsRef() bool { return false }
