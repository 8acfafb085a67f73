package xlform

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Clock supplies the current time to NOW and TODAY so tests can pin it.
type Clock interface {
	Now() time.Time
}

// WallClock is the real time.Now clock.
type WallClock struct{}

func (WallClock) Now() time.Time { return time.Now() }

// RandomGenerator supplies random numbers to RAND so tests can pin them.
type RandomGenerator interface {
	Float64() float64
}

type defaultRandom struct{}

func (defaultRandom) Float64() float64 { return rand.Float64() }

// Context carries everything a formula needs while it evaluates: the grid
// its references resolve against, the anchor cell the formula belongs to,
// the workbook date system and the injectable clock and random source.
type Context struct {
	Grid       Grid
	Anchor     Position
	DateSystem DateSystem
	Clock      Clock
	Rand       RandomGenerator
}

// NewContext returns a Context with the wall clock, the default random
// source and the 1900 date system.
func NewContext(g Grid, anchor Position) *Context {
	return &Context{
		Grid:   g,
		Anchor: anchor,
		Clock:  WallClock{},
		Rand:   defaultRandom{},
	}
}

func (ctx *Context) now() time.Time {
	if ctx.Clock == nil {
		return time.Now()
	}
	return ctx.Clock.Now()
}

func (ctx *Context) random() float64 {
	if ctx.Rand == nil {
		return rand.Float64()
	}
	return ctx.Rand.Float64()
}

// Fn is the implementation of a built-in function. Arguments arrive as
// unevaluated expression nodes; implementations evaluate only what they
// need, which is what makes IF and IFERROR lazy and ISREF able to inspect
// its argument without evaluating it.
type Fn func(ctx *Context, args []Expr) Value

// NoMaxArgs marks a function without an upper argument limit.
const NoMaxArgs = -1

type fnDef struct {
	min  int
	max  int
	impl Fn
}

// registry holds the built-in functions, keyed by upper-case name. It is
// populated from init functions and must not be mutated afterwards.
var registry = make(map[string]fnDef)

// Register installs a function under name. minArgs and maxArgs bound the
// accepted argument count; pass NoMaxArgs for variadic functions. Calls
// outside the bounds evaluate to #N/A without invoking impl.
func Register(name string, minArgs, maxArgs int, impl Fn) {
	registry[strings.ToUpper(name)] = fnDef{min: minArgs, max: maxArgs, impl: impl}
}

// callFunction dispatches a function call by name. Unknown names evaluate
// to #NAME? and argument counts outside the registered bounds to #N/A.
func callFunction(ctx *Context, name string, args []Expr) Value {
	def, ok := registry[strings.ToUpper(name)]
	if !ok {
		return NewError(ErrorName)
	}
	if len(args) < def.min || (def.max != NoMaxArgs && len(args) > def.max) {
		return NewError(ErrorNA)
	}
	return def.impl(ctx, args)
}

// evalScalar evaluates an argument to a single value, dereferencing a range
// to its top-left cell.
func evalScalar(ctx *Context, e Expr) Value {
	return derefScalar(ctx, e.Eval(ctx))
}

// derefScalar collapses a reference Value to the referenced top-left cell.
func derefScalar(ctx *Context, v Value) Value {
	if v.Kind() != KindRef {
		return v
	}
	if ctx.Grid == nil {
		return Value{}
	}
	r := v.Ref()
	return ctx.Grid.CellValue(r.From.Row, r.From.Col)
}

// rangeValues returns the cell values of ref in row-major order, clamped to
// the populated region of the grid so whole-column references stay cheap.
func rangeValues(ctx *Context, ref Ref) []Value {
	if ctx.Grid == nil {
		return nil
	}
	r2 := min(ref.To.Row, ctx.Grid.NRows())
	c2 := min(ref.To.Col, ctx.Grid.NCols())
	var out []Value
	for r := ref.From.Row; r <= r2; r++ {
		for c := ref.From.Col; c <= c2; c++ {
			out = append(out, ctx.Grid.CellValue(r, c))
		}
	}
	return out
}

// toNumber coerces a scalar value to a number: numbers pass through, TRUE
// and FALSE become 1 and 0, numeric text parses, the empty cell is 0.
func toNumber(v Value) (float64, bool) {
	switch v.Kind() {
	case KindNumber:
		return v.Number(), true
	case KindBool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
		return n, err == nil
	case KindEmpty:
		return 0, true
	}
	return 0, false
}

// toBool coerces a scalar value to a boolean: booleans pass through,
// numbers test against zero, the literals TRUE and FALSE parse, the empty
// cell is false.
func toBool(v Value) (bool, bool) {
	switch v.Kind() {
	case KindBool:
		return v.Bool(), true
	case KindNumber:
		return v.Number() != 0, true
	case KindText:
		switch strings.ToUpper(strings.TrimSpace(v.Text())) {
		case "TRUE":
			return true, true
		case "FALSE":
			return false, true
		}
		return false, false
	case KindEmpty:
		return false, true
	}
	return false, false
}

// applyBinary evaluates an infix operation. The left operand is evaluated
// first and errors propagate left to right.
func applyBinary(ctx *Context, op string, left, right Expr) Value {
	l := evalScalar(ctx, left)
	if l.IsError() {
		return l
	}
	r := evalScalar(ctx, right)
	if r.IsError() {
		return r
	}

	switch op {
	case "+", "-", "*", "/", "^":
		ln, ok := toNumber(l)
		if !ok {
			return NewError(ErrorValue)
		}
		rn, ok := toNumber(r)
		if !ok {
			return NewError(ErrorValue)
		}
		return arithmetic(op, ln, rn)
	case "&":
		return Text(l.String() + r.String())
	case "=":
		return Bool(compareValues(l, r) == 0)
	case "<>":
		return Bool(compareValues(l, r) != 0)
	case "<":
		return Bool(compareValues(l, r) < 0)
	case "<=":
		return Bool(compareValues(l, r) <= 0)
	case ">":
		return Bool(compareValues(l, r) > 0)
	case ">=":
		return Bool(compareValues(l, r) >= 0)
	}
	return NewError(ErrorName)
}

func arithmetic(op string, l, r float64) Value {
	var n float64
	switch op {
	case "+":
		n = l + r
	case "-":
		n = l - r
	case "*":
		n = l * r
	case "/":
		if r == 0 {
			return NewError(ErrorDiv0)
		}
		n = l / r
	case "^":
		if l == 0 && r == 0 {
			return NewError(ErrorNum)
		}
		n = math.Pow(l, r)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return NewError(ErrorNum)
	}
	return Number(n)
}

// applyUnary evaluates a prefix operation. Unary plus is the identity, as
// in the big spreadsheet applications; unary minus coerces to a number.
func applyUnary(ctx *Context, op string, operand Expr) Value {
	v := evalScalar(ctx, operand)
	if v.IsError() {
		return v
	}
	if op == "+" {
		return v
	}
	n, ok := toNumber(v)
	if !ok {
		return NewError(ErrorValue)
	}
	return Number(-n)
}

// applyPercent evaluates the postfix percent operator.
func applyPercent(ctx *Context, operand Expr) Value {
	v := evalScalar(ctx, operand)
	if v.IsError() {
		return v
	}
	n, ok := toNumber(v)
	if !ok {
		return NewError(ErrorValue)
	}
	return Number(n / 100)
}

// compareValues orders two scalar values the way comparison operators do:
// numbers sort below text, text below booleans, FALSE below TRUE, and text
// compares case-insensitively. The empty cell coerces to the zero of the
// other side's type.
func compareValues(l, r Value) int {
	if l.Kind() == KindEmpty && r.Kind() == KindEmpty {
		return 0
	}
	if l.Kind() == KindEmpty {
		l = zeroOf(r.Kind())
	}
	if r.Kind() == KindEmpty {
		r = zeroOf(l.Kind())
	}
	lr, rr := compareRank(l.Kind()), compareRank(r.Kind())
	if lr != rr {
		return cmpInt(lr, rr)
	}
	switch l.Kind() {
	case KindNumber:
		switch {
		case l.Number() < r.Number():
			return -1
		case l.Number() > r.Number():
			return 1
		}
		return 0
	case KindText:
		return strings.Compare(strings.ToUpper(l.Text()), strings.ToUpper(r.Text()))
	case KindBool:
		return cmpInt(boolInt(l.Bool()), boolInt(r.Bool()))
	}
	return 0
}

func zeroOf(k Kind) Value {
	switch k {
	case KindText:
		return Text("")
	case KindBool:
		return Bool(false)
	default:
		return Number(0)
	}
}

func compareRank(k Kind) int {
	switch k {
	case KindText:
		return 1
	case KindBool:
		return 2
	default:
		return 0
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
