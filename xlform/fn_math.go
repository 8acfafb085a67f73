package xlform

import "math"

func init() {
	Register("ABS", 1, 1, fnAbs)
	Register("AVERAGE", 1, NoMaxArgs, fnAverage)
	Register("COUNT", 1, NoMaxArgs, fnCount)
	Register("COUNTA", 1, NoMaxArgs, fnCountA)
	Register("INT", 1, 1, fnInt)
	Register("MAX", 1, NoMaxArgs, fnMax)
	Register("MIN", 1, NoMaxArgs, fnMin)
	Register("MOD", 2, 2, fnMod)
	Register("PI", 0, 0, fnPi)
	Register("POWER", 2, 2, fnPower)
	Register("PRODUCT", 1, NoMaxArgs, fnProduct)
	Register("RAND", 0, 0, fnRand)
	Register("ROUND", 2, 2, fnRound)
	Register("SIGN", 1, 1, fnSign)
	Register("SQRT", 1, 1, fnSqrt)
	Register("SUM", 1, NoMaxArgs, fnSum)
	Register("TRUNC", 1, 2, fnTrunc)
}

// collectNumbers gathers the numeric view of an argument list the way the
// aggregates see it: direct arguments must coerce to numbers, while inside
// a range only numeric cells count and text, logicals and empties are
// skipped. Errors anywhere propagate.
func collectNumbers(ctx *Context, args []Expr) ([]float64, Value) {
	var nums []float64
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
				if cv.Kind() == KindNumber {
					nums = append(nums, cv.Number())
				}
			}
			continue
		}
		if v.IsEmpty() {
			continue
		}
		n, ok := toNumber(v)
		if !ok {
			return nil, NewError(ErrorValue)
		}
		nums = append(nums, n)
	}
	return nums, Value{}
}

// oneNumber evaluates a single argument to a float, with #VALUE! for values
// that do not coerce. The second return is the error to surface, empty on
// success.
func oneNumber(ctx *Context, arg Expr) (float64, Value) {
	v := evalScalar(ctx, arg)
	if v.IsError() {
		return 0, v
	}
	n, ok := toNumber(v)
	if !ok {
		return 0, NewError(ErrorValue)
	}
	return n, Value{}
}

func fnAbs(ctx *Context, args []Expr) Value {
	n, errv := oneNumber(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	return Number(math.Abs(n))
}

func fnAverage(ctx *Context, args []Expr) Value {
	nums, errv := collectNumbers(ctx, args)
	if errv.IsError() {
		return errv
	}
	if len(nums) == 0 {
		return NewError(ErrorDiv0)
	}
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	return Number(sum / float64(len(nums)))
}

// fnCount counts numeric values. Errors and non-numeric values are simply
// not counted, never propagated.
func fnCount(ctx *Context, args []Expr) Value {
	count := 0
	for _, arg := range args {
		v := arg.Eval(ctx)
		if v.Kind() == KindRef {
			for _, cv := range rangeValues(ctx, v.Ref()) {
				if cv.Kind() == KindNumber {
					count++
				}
			}
			continue
		}
		if v.IsEmpty() || v.IsError() {
			continue
		}
		if _, ok := toNumber(v); ok {
			count++
		}
	}
	return Number(float64(count))
}

// fnCountA counts non-empty values, errors included.
func fnCountA(ctx *Context, args []Expr) Value {
	count := 0
	for _, arg := range args {
		v := arg.Eval(ctx)
		if v.Kind() == KindRef {
			for _, cv := range rangeValues(ctx, v.Ref()) {
				if !cv.IsEmpty() {
					count++
				}
			}
			continue
		}
		if !v.IsEmpty() {
			count++
		}
	}
	return Number(float64(count))
}

func fnInt(ctx *Context, args []Expr) Value {
	n, errv := oneNumber(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	return Number(math.Floor(n))
}

func fnMax(ctx *Context, args []Expr) Value {
	nums, errv := collectNumbers(ctx, args)
	if errv.IsError() {
		return errv
	}
	if len(nums) == 0 {
		return Number(0)
	}
	m := nums[0]
	for _, n := range nums[1:] {
		m = math.Max(m, n)
	}
	return Number(m)
}

func fnMin(ctx *Context, args []Expr) Value {
	nums, errv := collectNumbers(ctx, args)
	if errv.IsError() {
		return errv
	}
	if len(nums) == 0 {
		return Number(0)
	}
	m := nums[0]
	for _, n := range nums[1:] {
		m = math.Min(m, n)
	}
	return Number(m)
}

// fnMod implements the floored modulo of the big spreadsheet applications:
// the result takes the sign of the divisor, so MOD(-3, 2) is 1.
func fnMod(ctx *Context, args []Expr) Value {
	a, errv := oneNumber(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	b, errv := oneNumber(ctx, args[1])
	if errv.IsError() {
		return errv
	}
	if b == 0 {
		return NewError(ErrorDiv0)
	}
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return Number(r)
}

func fnPi(ctx *Context, args []Expr) Value {
	return Number(math.Pi)
}

func fnPower(ctx *Context, args []Expr) Value {
	a, errv := oneNumber(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	b, errv := oneNumber(ctx, args[1])
	if errv.IsError() {
		return errv
	}
	return arithmetic("^", a, b)
}

func fnProduct(ctx *Context, args []Expr) Value {
	nums, errv := collectNumbers(ctx, args)
	if errv.IsError() {
		return errv
	}
	if len(nums) == 0 {
		return Number(0)
	}
	p := 1.0
	for _, n := range nums {
		p *= n
	}
	return Number(p)
}

func fnRand(ctx *Context, args []Expr) Value {
	return Number(ctx.random())
}

// fnRound rounds half away from zero. Negative digit counts round to the
// left of the decimal point.
func fnRound(ctx *Context, args []Expr) Value {
	n, errv := oneNumber(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	d, errv := oneNumber(ctx, args[1])
	if errv.IsError() {
		return errv
	}
	pow := math.Pow(10, math.Trunc(d))
	return Number(math.Round(n*pow) / pow)
}

func fnSign(ctx *Context, args []Expr) Value {
	n, errv := oneNumber(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	switch {
	case n > 0:
		return Number(1)
	case n < 0:
		return Number(-1)
	}
	return Number(0)
}

func fnSqrt(ctx *Context, args []Expr) Value {
	n, errv := oneNumber(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	if n < 0 {
		return NewError(ErrorNum)
	}
	return Number(math.Sqrt(n))
}

func fnSum(ctx *Context, args []Expr) Value {
	nums, errv := collectNumbers(ctx, args)
	if errv.IsError() {
		return errv
	}
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	return Number(sum)
}

func fnTrunc(ctx *Context, args []Expr) Value {
	n, errv := oneNumber(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	d := 0.0
	if len(args) == 2 {
		d, errv = oneNumber(ctx, args[1])
		if errv.IsError() {
			return errv
		}
	}
	pow := math.Pow(10, math.Trunc(d))
	return Number(math.Trunc(n*pow) / pow)
}
