package xlform

func init() {
	Register("AND", 1, NoMaxArgs, fnAnd)
	Register("FALSE", 0, 0, fnFalse)
	Register("IF", 2, 3, fnIf)
	Register("IFERROR", 2, 2, fnIfError)
	Register("NOT", 1, 1, fnNot)
	Register("OR", 1, NoMaxArgs, fnOr)
	Register("TRUE", 0, 0, fnTrue)
	Register("XOR", 1, NoMaxArgs, fnXor)
}

// collectBools gathers the logical view of an argument list. Direct
// arguments must coerce to logicals, while inside a range only numeric and
// logical cells participate and text and empties are skipped. Errors
// anywhere propagate.
func collectBools(ctx *Context, args []Expr) ([]bool, Value) {
	var bools []bool
	for _, arg := range args {
		v := arg.Eval(ctx)
		if v.IsError() {
			return nil, v
		}
		if v.Kind() == KindRef {
			for _, cv := range rangeValues(ctx, v.Ref()) {
				if cv.IsError() {
					return nil, cv
				}
				switch cv.Kind() {
				case KindNumber, KindBool:
					b, _ := toBool(cv)
					bools = append(bools, b)
				}
			}
			continue
		}
		b, ok := toBool(v)
		if !ok {
			return nil, NewError(ErrorValue)
		}
		bools = append(bools, b)
	}
	if len(bools) == 0 {
		return nil, NewError(ErrorValue)
	}
	return bools, Value{}
}

func fnAnd(ctx *Context, args []Expr) Value {
	bools, errv := collectBools(ctx, args)
	if errv.IsError() {
		return errv
	}
	for _, b := range bools {
		if !b {
			return Bool(false)
		}
	}
	return Bool(true)
}

func fnOr(ctx *Context, args []Expr) Value {
	bools, errv := collectBools(ctx, args)
	if errv.IsError() {
		return errv
	}
	for _, b := range bools {
		if b {
			return Bool(true)
		}
	}
	return Bool(false)
}

func fnXor(ctx *Context, args []Expr) Value {
	bools, errv := collectBools(ctx, args)
	if errv.IsError() {
		return errv
	}
	trues := 0
	for _, b := range bools {
		if b {
			trues++
		}
	}
	return Bool(trues%2 == 1)
}

func fnNot(ctx *Context, args []Expr) Value {
	v := evalScalar(ctx, args[0])
	if v.IsError() {
		return v
	}
	b, ok := toBool(v)
	if !ok {
		return NewError(ErrorValue)
	}
	return Bool(!b)
}

func fnTrue(ctx *Context, args []Expr) Value {
	return Bool(true)
}

func fnFalse(ctx *Context, args []Expr) Value {
	return Bool(false)
}

// fnIf evaluates only the branch the condition selects, so errors in the
// untaken branch never surface. A missing else branch yields FALSE.
func fnIf(ctx *Context, args []Expr) Value {
	cond := evalScalar(ctx, args[0])
	if cond.IsError() {
		return cond
	}
	b, ok := toBool(cond)
	if !ok {
		return NewError(ErrorValue)
	}
	if b {
		return args[1].Eval(ctx)
	}
	if len(args) == 3 {
		return args[2].Eval(ctx)
	}
	return Bool(false)
}

// fnIfError evaluates the fallback only when the first argument errors.
func fnIfError(ctx *Context, args []Expr) Value {
	v := args[0].Eval(ctx)
	if v.IsError() {
		return args[1].Eval(ctx)
	}
	return v
}
