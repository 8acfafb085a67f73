package xlform

import "strings"

func init() {
	Register("CONCATENATE", 1, NoMaxArgs, fnConcatenate)
	Register("EXACT", 2, 2, fnExact)
	Register("LEFT", 1, 2, fnLeft)
	Register("LEN", 1, 1, fnLen)
	Register("LOWER", 1, 1, fnLower)
	Register("MID", 3, 3, fnMid)
	Register("RIGHT", 1, 2, fnRight)
	Register("TRIM", 1, 1, fnTrim)
	Register("UPPER", 1, 1, fnUpper)
}

// oneText renders a single argument as text using the display form of the
// value, so numbers and logicals concatenate the way they print.
func oneText(ctx *Context, arg Expr) (string, Value) {
	v := evalScalar(ctx, arg)
	if v.IsError() {
		return "", v
	}
	return v.String(), Value{}
}

func fnConcatenate(ctx *Context, args []Expr) Value {
	var b strings.Builder
	for _, arg := range args {
		s, errv := oneText(ctx, arg)
		if errv.IsError() {
			return errv
		}
		b.WriteString(s)
	}
	return Text(b.String())
}

func fnExact(ctx *Context, args []Expr) Value {
	a, errv := oneText(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	b, errv := oneText(ctx, args[1])
	if errv.IsError() {
		return errv
	}
	return Bool(a == b)
}

func fnLeft(ctx *Context, args []Expr) Value {
	s, errv := oneText(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	n := 1
	if len(args) == 2 {
		f, errv := oneNumber(ctx, args[1])
		if errv.IsError() {
			return errv
		}
		if f < 0 {
			return NewError(ErrorValue)
		}
		n = int(f)
	}
	r := []rune(s)
	if n > len(r) {
		n = len(r)
	}
	return Text(string(r[:n]))
}

func fnRight(ctx *Context, args []Expr) Value {
	s, errv := oneText(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	n := 1
	if len(args) == 2 {
		f, errv := oneNumber(ctx, args[1])
		if errv.IsError() {
			return errv
		}
		if f < 0 {
			return NewError(ErrorValue)
		}
		n = int(f)
	}
	r := []rune(s)
	if n > len(r) {
		n = len(r)
	}
	return Text(string(r[len(r)-n:]))
}

func fnMid(ctx *Context, args []Expr) Value {
	s, errv := oneText(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	start, errv := oneNumber(ctx, args[1])
	if errv.IsError() {
		return errv
	}
	length, errv := oneNumber(ctx, args[2])
	if errv.IsError() {
		return errv
	}
	if start < 1 || length < 0 {
		return NewError(ErrorValue)
	}
	r := []rune(s)
	from := int(start) - 1
	if from >= len(r) {
		return Text("")
	}
	to := from + int(length)
	if to > len(r) {
		to = len(r)
	}
	return Text(string(r[from:to]))
}

func fnLen(ctx *Context, args []Expr) Value {
	s, errv := oneText(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	return Number(float64(len([]rune(s))))
}

func fnLower(ctx *Context, args []Expr) Value {
	s, errv := oneText(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	return Text(strings.ToLower(s))
}

func fnUpper(ctx *Context, args []Expr) Value {
	s, errv := oneText(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	return Text(strings.ToUpper(s))
}

// fnTrim strips leading and trailing whitespace and collapses interior runs
// to a single space.
func fnTrim(ctx *Context, args []Expr) Value {
	s, errv := oneText(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	return Text(strings.Join(strings.Fields(s), " "))
}
