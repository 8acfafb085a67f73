package xlform

import (
	"fmt"
	"strconv"
	"strings"
)

// Worksheet extent. Row and column coordinates are 1-based throughout;
// anything outside these bounds is not addressable.
const (
	MaxRows = 1048576
	MaxCols = 16384
)

// Position is an absolute 1-based cell coordinate.
type Position struct {
	Row, Col int
}

// Valid reports whether the position lies inside the worksheet extent.
func (p Position) Valid() bool {
	return p.Row >= 1 && p.Row <= MaxRows && p.Col >= 1 && p.Col <= MaxCols
}

// Name returns the letter-notation cell name, e.g. Position{5, 3} -> "C5".
func (p Position) Name() string {
	return ColLabel(p.Col) + strconv.Itoa(p.Row)
}

// Ref is a rectangular cell range. From is the top-left corner and To the
// bottom-right corner; NewRef normalizes the corners.
type Ref struct {
	From, To Position
}

// NewRef builds a normalized Ref from two corner positions.
func NewRef(a, b Position) Ref {
	if b.Row < a.Row {
		a.Row, b.Row = b.Row, a.Row
	}
	if b.Col < a.Col {
		a.Col, b.Col = b.Col, a.Col
	}
	return Ref{From: a, To: b}
}

// CellRef builds a single-cell Ref.
func CellRef(p Position) Ref { return Ref{From: p, To: p} }

// Name returns the letter-notation range name, e.g. "A1:B3". A single-cell
// range renders as the bare cell name.
func (r Ref) Name() string {
	if r.From == r.To {
		return r.From.Name()
	}
	return r.From.Name() + ":" + r.To.Name()
}

// Rows returns the number of rows the range spans.
func (r Ref) Rows() int { return r.To.Row - r.From.Row + 1 }

// Cols returns the number of columns the range spans.
func (r Ref) Cols() int { return r.To.Col - r.From.Col + 1 }

// ColLabel returns the letter name of a 1-based column index: 1 -> "A",
// 26 -> "Z", 27 -> "AA". The caller must pass a value in 1..18278 ("ZZZ").
func ColLabel(col int) string {
	var buf [3]byte
	i := len(buf)
	for col > 0 {
		i--
		col--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// ColIndex returns the 1-based column index of a letter name, accepting
// either case: "A" -> 1, "xfd" -> 16384.
func ColIndex(letters string) int {
	n := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return 0
		}
		n = n*26 + int(c-'A') + 1
	}
	return n
}

// ParseCellName parses a letter-notation cell name such as "C5" or "$C$5"
// into a Position. Dollar markers are accepted and discarded.
func ParseCellName(name string) (Position, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return Position{}, fmt.Errorf("empty cell name")
	}
	i := 0
	if s[i] == '$' {
		i++
	}
	start := i
	for i < len(s) && isLetterByte(s[i]) {
		i++
	}
	letters := s[start:i]
	if i < len(s) && s[i] == '$' {
		i++
	}
	digits := s[i:]
	if letters == "" || digits == "" {
		return Position{}, fmt.Errorf("malformed cell name %q", name)
	}
	row, err := strconv.Atoi(digits)
	if err != nil {
		return Position{}, fmt.Errorf("malformed cell name %q", name)
	}
	p := Position{Row: row, Col: ColIndex(letters)}
	if !p.Valid() {
		return Position{}, fmt.Errorf("cell name %q outside worksheet extent", name)
	}
	return p, nil
}

func isLetterByte(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
