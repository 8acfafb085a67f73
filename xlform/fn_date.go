package xlform

import "math"

func init() {
	Register("COLUMN", 0, 1, fnColumn)
	Register("DATE", 3, 3, fnDate)
	Register("DAY", 1, 1, fnDay)
	Register("MONTH", 1, 1, fnMonth)
	Register("NOW", 0, 0, fnNow)
	Register("ROW", 0, 1, fnRow)
	Register("TODAY", 0, 0, fnToday)
	Register("YEAR", 1, 1, fnYear)
}

func fnDate(ctx *Context, args []Expr) Value {
	y, errv := oneNumber(ctx, args[0])
	if errv.IsError() {
		return errv
	}
	m, errv := oneNumber(ctx, args[1])
	if errv.IsError() {
		return errv
	}
	d, errv := oneNumber(ctx, args[2])
	if errv.IsError() {
		return errv
	}
	serial, err := DateToSerial(int(y), int(m), int(d), ctx.DateSystem)
	if err != nil {
		return NewError(ErrorNum)
	}
	return Number(serial)
}

// datePart evaluates an argument as a date serial and extracts one part of
// it. Serials the date system cannot represent yield #NUM!.
func datePart(ctx *Context, arg Expr, pick func(y, mo, d int) int) Value {
	serial, errv := oneNumber(ctx, arg)
	if errv.IsError() {
		return errv
	}
	y, mo, d, _, _, _, err := SerialToParts(serial, ctx.DateSystem)
	if err != nil {
		return NewError(ErrorNum)
	}
	return Number(float64(pick(y, mo, d)))
}

func fnYear(ctx *Context, args []Expr) Value {
	return datePart(ctx, args[0], func(y, mo, d int) int { return y })
}

func fnMonth(ctx *Context, args []Expr) Value {
	return datePart(ctx, args[0], func(y, mo, d int) int { return mo })
}

func fnDay(ctx *Context, args []Expr) Value {
	return datePart(ctx, args[0], func(y, mo, d int) int { return d })
}

func fnNow(ctx *Context, args []Expr) Value {
	serial, err := TimeToSerial(ctx.now(), ctx.DateSystem)
	if err != nil {
		return NewError(ErrorNum)
	}
	return Number(serial)
}

func fnToday(ctx *Context, args []Expr) Value {
	serial, err := TimeToSerial(ctx.now(), ctx.DateSystem)
	if err != nil {
		return NewError(ErrorNum)
	}
	return Number(math.Floor(serial))
}

// fnRow reports the row of a reference argument without evaluating it, or
// of the calling cell when no argument is given.
func fnRow(ctx *Context, args []Expr) Value {
	if len(args) == 0 {
		return Number(float64(ctx.Anchor.Row))
	}
	re, ok := args[0].(refExpr)
	if !ok {
		return NewError(ErrorValue)
	}
	return Number(float64(re.RefTarget().From.Row))
}

func fnColumn(ctx *Context, args []Expr) Value {
	if len(args) == 0 {
		return Number(float64(ctx.Anchor.Col))
	}
	re, ok := args[0].(refExpr)
	if !ok {
		return NewError(ErrorValue)
	}
	return Number(float64(re.RefTarget().From.Col))
}
