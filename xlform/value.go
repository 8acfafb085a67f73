package xlform

import (
	"strconv"
	"strings"
)

// Kind discriminates the payload carried by a Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindBool
	KindError
	KindRef
)

// ErrorCode identifies a typed evaluation error. Codes are 1-based and
// stable: ERROR.TYPE reports them verbatim.
type ErrorCode uint8

const (
	ErrorNull  ErrorCode = iota + 1 // #NULL!
	ErrorDiv0                       // #DIV/0!
	ErrorValue                      // #VALUE!
	ErrorRef                        // #REF!
	ErrorName                       // #NAME?
	ErrorNum                        // #NUM!
	ErrorNA                         // #N/A
)

// errorText is fixed at process start; all lookups go through ErrorCode
// methods so the table itself is never exposed for mutation.
var errorText = [...]string{
	ErrorNull:  "#NULL!",
	ErrorDiv0:  "#DIV/0!",
	ErrorValue: "#VALUE!",
	ErrorRef:   "#REF!",
	ErrorName:  "#NAME?",
	ErrorNum:   "#NUM!",
	ErrorNA:    "#N/A",
}

// String returns the display literal for the error code, e.g. "#DIV/0!".
func (c ErrorCode) String() string {
	if int(c) >= 1 && int(c) < len(errorText) {
		return errorText[c]
	}
	return "#ERROR!"
}

// ParseErrorCode maps an error literal such as "#N/A" back to its code.
func ParseErrorCode(text string) (ErrorCode, bool) {
	t := strings.ToUpper(strings.TrimSpace(text))
	for c := ErrorNull; c <= ErrorNA; c++ {
		if errorText[c] == t {
			return c, true
		}
	}
	return 0, false
}

// Value is a tagged cell value: a number, text, boolean, typed error or
// cell/range reference. Callers discriminate on Kind; there is no implicit
// subtyping between the variants. The zero Value is the empty cell.
type Value struct {
	kind Kind
	num  float64
	str  string
	code ErrorCode
	ref  Ref
}

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Text returns a text Value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Bool returns a boolean Value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// NewError returns a typed error Value.
func NewError(code ErrorCode) Value { return Value{kind: KindError, code: code} }

// RefValue returns a Value carrying a cell/range reference.
func RefValue(r Ref) Value { return Value{kind: KindRef, ref: r} }

// Kind reports which variant the Value holds.
func (v Value) Kind() Kind { return v.kind }

// Number returns the numeric payload; zero unless Kind is KindNumber.
func (v Value) Number() float64 {
	if v.kind == KindNumber {
		return v.num
	}
	return 0
}

// Text returns the text payload; empty unless Kind is KindText.
func (v Value) Text() string {
	if v.kind == KindText {
		return v.str
	}
	return ""
}

// Bool returns the boolean payload; false unless Kind is KindBool.
func (v Value) Bool() bool { return v.kind == KindBool && v.num != 0 }

// ErrorCode returns the error payload; zero unless Kind is KindError.
func (v Value) ErrorCode() ErrorCode {
	if v.kind == KindError {
		return v.code
	}
	return 0
}

// Ref returns the reference payload; the zero Ref unless Kind is KindRef.
func (v Value) Ref() Ref {
	if v.kind == KindRef {
		return v.ref
	}
	return Ref{}
}

// IsEmpty reports whether the Value is the empty cell.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// IsError reports whether the Value is a typed error.
func (v Value) IsError() bool { return v.kind == KindError }

// String renders the Value the way a cell would display it.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindText:
		return v.str
	case KindBool:
		if v.num != 0 {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.code.String()
	case KindRef:
		return v.ref.Name()
	}
	return ""
}

// formatNumber renders whole numbers without an exponent or decimal point.
func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
