package xlform

import (
	"math"
	"strconv"
	"strings"
)

func init() {
	Register("ERROR.TYPE", 1, 1, fnErrorType)
	Register("ERRORTYPE", 1, 1, fnErrorType)
	Register("ISBLANK", 1, NoMaxArgs, fnIsBlank)
	Register("ISERR", 1, 1, fnIsErr)
	Register("ISERROR", 1, 1, fnIsError)
	Register("ISEVEN", 1, 1, fnIsEven)
	Register("ISLOGICAL", 1, NoMaxArgs, fnIsLogical)
	Register("ISNA", 1, 1, fnIsNA)
	Register("ISNONTEXT", 1, NoMaxArgs, fnIsNonText)
	Register("ISNUMBER", 1, NoMaxArgs, fnIsNumber)
	Register("ISODD", 1, 1, fnIsOdd)
	Register("ISREF", 1, 1, fnIsRef)
	Register("ISTEXT", 1, NoMaxArgs, fnIsText)
	Register("N", 1, 1, fnN)
	Register("NA", 0, NoMaxArgs, fnNA)
	Register("TYPE", 1, NoMaxArgs, fnType)
}

// foldPredicate evaluates each argument and ANDs the predicate across them.
// An argument that evaluates to an error propagates immediately; these
// predicates test values, they do not inspect errors.
func foldPredicate(ctx *Context, args []Expr, pred func(Value) bool) Value {
	for _, arg := range args {
		v := evalScalar(ctx, arg)
		if v.IsError() {
			return v
		}
		if !pred(v) {
			return Bool(false)
		}
	}
	return Bool(true)
}

// fnErrorType reports the 1-based code of an error value: 1 for #NULL!
// through 7 for #N/A. A non-error argument yields #N/A.
func fnErrorType(ctx *Context, args []Expr) Value {
	v := evalScalar(ctx, args[0])
	if v.IsError() {
		return Number(float64(v.ErrorCode()))
	}
	return NewError(ErrorNA)
}

func fnIsBlank(ctx *Context, args []Expr) Value {
	return foldPredicate(ctx, args, isBlankValue)
}

func isBlankValue(v Value) bool {
	return strings.TrimSpace(v.String()) == ""
}

// fnIsErr is true for every error except #N/A.
func fnIsErr(ctx *Context, args []Expr) Value {
	v := evalScalar(ctx, args[0])
	return Bool(v.IsError() && v.ErrorCode() != ErrorNA)
}

// fnIsError is true for any error value.
func fnIsError(ctx *Context, args []Expr) Value {
	return Bool(evalScalar(ctx, args[0]).IsError())
}

// fnIsEven is true when the numeric coercion of the argument has an even
// integer part. A value that does not coerce yields #VALUE!.
func fnIsEven(ctx *Context, args []Expr) Value {
	v := evalScalar(ctx, args[0])
	if v.IsError() {
		return v
	}
	n, ok := toNumber(v)
	if !ok {
		return NewError(ErrorValue)
	}
	return Bool(math.Abs(math.Mod(n, 2)) < 1)
}

func fnIsOdd(ctx *Context, args []Expr) Value {
	v := fnIsEven(ctx, args)
	if v.IsError() {
		return v
	}
	return Bool(!v.Bool())
}

func fnIsLogical(ctx *Context, args []Expr) Value {
	return foldPredicate(ctx, args, func(v Value) bool { return v.Kind() == KindBool })
}

// fnIsNA is true only for the #N/A error.
func fnIsNA(ctx *Context, args []Expr) Value {
	v := evalScalar(ctx, args[0])
	return Bool(v.ErrorCode() == ErrorNA)
}

func fnIsNumber(ctx *Context, args []Expr) Value {
	return foldPredicate(ctx, args, isNumberValue)
}

// isNumberValue accepts numbers and text that parses fully as a number once
// trailing percent signs and spaces are trimmed, so "12 %" counts.
func isNumberValue(v Value) bool {
	switch v.Kind() {
	case KindNumber:
		return true
	case KindText:
		t := strings.TrimRight(v.Text(), "% ")
		if t == "" {
			return false
		}
		_, err := strconv.ParseFloat(t, 64)
		return err == nil
	}
	return false
}

// fnIsText is the conjunction of not-blank, not-number and not-logical,
// each judged over the full argument list.
func fnIsText(ctx *Context, args []Expr) Value {
	blank := fnIsBlank(ctx, args)
	if blank.IsError() {
		return blank
	}
	number := fnIsNumber(ctx, args)
	if number.IsError() {
		return number
	}
	logical := fnIsLogical(ctx, args)
	if logical.IsError() {
		return logical
	}
	return Bool(!blank.Bool() && !number.Bool() && !logical.Bool())
}

func fnIsNonText(ctx *Context, args []Expr) Value {
	v := fnIsText(ctx, args)
	if v.IsError() {
		return v
	}
	return Bool(!v.Bool())
}

// fnIsRef inspects the argument expression without evaluating it: only a
// genuine cell or range reference qualifies, never a computed value.
func fnIsRef(ctx *Context, args []Expr) Value {
	return Bool(args[0].IsRef())
}

// fnN coerces the argument to a number; #VALUE! when it cannot be.
func fnN(ctx *Context, args []Expr) Value {
	v := evalScalar(ctx, args[0])
	if v.IsError() {
		return v
	}
	n, ok := toNumber(v)
	if !ok {
		return NewError(ErrorValue)
	}
	return Number(n)
}

// fnNA yields #N/A regardless of its arguments.
func fnNA(ctx *Context, args []Expr) Value {
	return NewError(ErrorNA)
}

// fnType reports 1 for a number, 2 for text, 4 for a logical, 16 for an
// error and 64 for a range or for more than one argument position. Anything
// else has no defined type and comes back as the empty Value.
func fnType(ctx *Context, args []Expr) Value {
	if len(args) > 1 {
		return Number(64)
	}
	switch args[0].Eval(ctx).Kind() {
	case KindNumber:
		return Number(1)
	case KindText:
		return Number(2)
	case KindBool:
		return Number(4)
	case KindError:
		return Number(16)
	case KindRef:
		return Number(64)
	}
	return Value{}
}
