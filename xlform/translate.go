package xlform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Direction selects which notation a formula is translated into.
type Direction int

const (
	// LetterToOffset rewrites letter notation ("B3", "$A$1") into offset
	// notation ("R[1]C[-2]", "R1C1") relative to an anchor cell.
	LetterToOffset Direction = iota
	// OffsetToLetter rewrites offset notation back into letter notation.
	OffsetToLetter
)

// Reference token grammars. Rectangular ranges such as A1:B2 are covered by
// two independent single-cell matches with the colon passing through, so each
// pattern only needs single cells plus whole-row and whole-column ranges.
var (
	letterRefPattern = regexp.MustCompile(
		`(\$?[A-Za-z]{1,3}\$?[0-9]{1,7})` +
			`|(\$?[0-9]{1,7}:\$?[0-9]{1,7})` +
			`|(\$?[A-Za-z]{1,3}:\$?[A-Za-z]{1,3})`)

	offsetRefPattern = regexp.MustCompile(
		`([Rr](?:\[-?[0-9]{0,7}\]|[0-9]{0,7})?[Cc](?:\[-?[0-9]{0,7}\]|[0-9]{0,7})?)` +
			`|([Rr](?:\[-?[0-9]{0,7}\]|[0-9]{0,7})?:[Rr](?:\[-?[0-9]{0,7}\]|[0-9]{0,7})?)` +
			`|([Cc](?:\[-?[0-9]{0,7}\]|[0-9]{0,7})?:[Cc](?:\[-?[0-9]{0,7}\]|[0-9]{0,7})?)`)
)

// Translate rewrites every cell and range reference in formula into the
// notation selected by dir, leaving all other text (operators, function
// names, string literals) untouched. anchor is the cell the formula belongs
// to; relative offset components are deltas from it.
//
// Absolute components ($A, $1, unbracketed R2/C3) keep their fixed index in
// both directions. Relative components become bracketed deltas ("C[-2]"), a
// bare R or C when the delta is zero, and plain letters/digits on the way
// back. References inside string literals are detected by quote parity and
// left alone. A component that lands outside the worksheet extent renders
// the whole reference as #REF!.
func Translate(formula string, dir Direction, anchor Position) string {
	if formula == "" {
		return ""
	}
	// The sentinels guarantee every match has a neighbor byte on both
	// sides, so boundary checks never fall off the ends of the input.
	const sentinel = "\x00"
	s := sentinel + formula + sentinel

	pat := letterRefPattern
	if dir == OffsetToLetter {
		pat = offsetRefPattern
	}
	matches := pat.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return formula
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(s[last:start])
		tok := s[start:end]
		if !tokenBoundaryOK(s, start, end) || insideQuotes(s[:start]) {
			b.WriteString(tok)
		} else {
			switch {
			case m[2] >= 0: // single cell
				b.WriteString(translateCell(tok, dir, anchor))
			case m[4] >= 0: // whole-row range
				b.WriteString(translateRowRange(tok, dir, anchor))
			default: // whole-column range
				b.WriteString(translateColRange(tok, dir, anchor))
			}
		}
		last = end
	}
	b.WriteString(s[last:])
	out := b.String()
	return out[1 : len(out)-1]
}

// tokenBoundaryOK rejects candidate references embedded in longer
// identifiers ("TAX1R" or the tail of "Sheet1") and names directly followed
// by an opening parenthesis, which are function calls such as LOG10(.
func tokenBoundaryOK(s string, start, end int) bool {
	before := s[start-1]
	after := s[end]
	if isWordByte(before) || before == '$' {
		return false
	}
	if isWordByte(after) || after == '(' {
		return false
	}
	return true
}

// insideQuotes reports whether prefix ends inside a string literal or a
// quoted sheet name, judged by quote parity. Doubled quotes used as escapes
// keep the parity intact; a lone apostrophe in literal text does fool the
// count (see the translator notes in DESIGN.md).
func insideQuotes(prefix string) bool {
	return strings.Count(prefix, `"`)%2 == 1 || strings.Count(prefix, `'`)%2 == 1
}

func isWordByte(b byte) bool {
	return b == '_' || isLetterByte(b) || isDigitByte(b)
}

// translateCell rewrites one single-cell reference token.
func translateCell(tok string, dir Direction, anchor Position) string {
	if dir == LetterToOffset {
		return letterCellToOffset(tok, anchor)
	}
	return offsetCellToLetter(tok, anchor)
}

func letterCellToOffset(tok string, anchor Position) string {
	i := 0
	colAbs := tok[i] == '$'
	if colAbs {
		i++
	}
	j := i
	for j < len(tok) && isLetterByte(tok[j]) {
		j++
	}
	col := ColIndex(tok[i:j])
	rowAbs := tok[j] == '$'
	if rowAbs {
		j++
	}
	row, _ := strconv.Atoi(tok[j:])
	if row < 1 || row > MaxRows || col < 1 || col > MaxCols {
		return ErrorRef.String()
	}
	return offsetRowName(row, rowAbs, anchor.Row) + offsetColName(col, colAbs, anchor.Col)
}

func offsetCellToLetter(tok string, anchor Position) string {
	rowSpec, i := scanOffsetSpec(tok, 1) // past the leading R
	colSpec, _ := scanOffsetSpec(tok, i+1)
	row, rowAbs := resolveOffset(rowSpec, anchor.Row)
	col, colAbs := resolveOffset(colSpec, anchor.Col)
	if row < 1 || row > MaxRows || col < 1 || col > MaxCols {
		return ErrorRef.String()
	}
	return letterColName(col, colAbs) + letterRowName(row, rowAbs)
}

// translateRowRange rewrites a whole-row range token such as "3:5" or
// "R[1]:R[3]". If either endpoint falls outside the extent the whole token
// renders as #REF!.
func translateRowRange(tok string, dir Direction, anchor Position) string {
	lo, hi, _ := strings.Cut(tok, ":")
	a, okA := translateRowEndpoint(lo, dir, anchor)
	b, okB := translateRowEndpoint(hi, dir, anchor)
	if !okA || !okB {
		return ErrorRef.String()
	}
	return a + ":" + b
}

func translateRowEndpoint(s string, dir Direction, anchor Position) (string, bool) {
	if dir == LetterToOffset {
		abs := s[0] == '$'
		row, _ := strconv.Atoi(strings.TrimPrefix(s, "$"))
		if row < 1 || row > MaxRows {
			return "", false
		}
		return offsetRowName(row, abs, anchor.Row), true
	}
	spec, _ := scanOffsetSpec(s, 1)
	row, abs := resolveOffset(spec, anchor.Row)
	if row < 1 || row > MaxRows {
		return "", false
	}
	return letterRowName(row, abs), true
}

// translateColRange rewrites a whole-column range token such as "A:C" or
// "C[-2]:C[-2]".
func translateColRange(tok string, dir Direction, anchor Position) string {
	lo, hi, _ := strings.Cut(tok, ":")
	a, okA := translateColEndpoint(lo, dir, anchor)
	b, okB := translateColEndpoint(hi, dir, anchor)
	if !okA || !okB {
		return ErrorRef.String()
	}
	return a + ":" + b
}

func translateColEndpoint(s string, dir Direction, anchor Position) (string, bool) {
	if dir == LetterToOffset {
		abs := s[0] == '$'
		col := ColIndex(strings.TrimPrefix(s, "$"))
		if col < 1 || col > MaxCols {
			return "", false
		}
		return offsetColName(col, abs, anchor.Col), true
	}
	spec, _ := scanOffsetSpec(s, 1)
	col, abs := resolveOffset(spec, anchor.Col)
	if col < 1 || col > MaxCols {
		return "", false
	}
	return letterColName(col, abs), true
}

// scanOffsetSpec reads the coordinate spec following an R or C at tok[i-1]:
// "", a bare number, or a bracketed delta. It returns the spec and the index
// of the next unread byte.
func scanOffsetSpec(tok string, i int) (string, int) {
	if i >= len(tok) {
		return "", i
	}
	if tok[i] == '[' {
		j := strings.IndexByte(tok[i:], ']') + i
		return tok[i : j+1], j + 1
	}
	j := i
	for j < len(tok) && isDigitByte(tok[j]) {
		j++
	}
	return tok[i:j], j
}

// resolveOffset turns an offset coordinate spec into an absolute 1-based
// coordinate. A bare number is absolute; a bracketed value is a delta from
// base; an empty spec is the base coordinate itself, still relative.
func resolveOffset(spec string, base int) (coord int, abs bool) {
	switch {
	case spec == "":
		return base, false
	case spec[0] == '[':
		d, _ := strconv.Atoi(spec[1 : len(spec)-1])
		return base + d, false
	default:
		n, _ := strconv.Atoi(spec)
		return n, true
	}
}

func offsetRowName(row int, abs bool, base int) string {
	if abs {
		return fmt.Sprintf("R%d", row)
	}
	if d := row - base; d != 0 {
		return fmt.Sprintf("R[%d]", d)
	}
	return "R"
}

func offsetColName(col int, abs bool, base int) string {
	if abs {
		return fmt.Sprintf("C%d", col)
	}
	if d := col - base; d != 0 {
		return fmt.Sprintf("C[%d]", d)
	}
	return "C"
}

func letterRowName(row int, abs bool) string {
	if abs {
		return fmt.Sprintf("$%d", row)
	}
	return strconv.Itoa(row)
}

func letterColName(col int, abs bool) string {
	if abs {
		return "$" + ColLabel(col)
	}
	return ColLabel(col)
}
