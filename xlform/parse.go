package xlform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/efp"
)

// Expr is one node of a parsed formula expression tree.
type Expr interface {
	// Eval computes the node's value against the context.
	Eval(ctx *Context) Value
	// IsRef reports whether the node is a genuine cell or range reference
	// rather than a computed value.
	IsRef() bool
}

// Parse parses formula text into an expression tree. A leading "=" marker or
// surrounding "{=...}" array markers are storage artifacts and are ignored.
// References are resolved in letter notation; translate offset-notation text
// first if needed.
func Parse(text string) (Expr, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "{=") && strings.HasSuffix(s, "}") {
		s = s[2 : len(s)-1]
	} else {
		s = strings.TrimPrefix(s, "=")
	}
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty formula")
	}

	ep := efp.ExcelParser()
	raw := ep.Parse(s)
	toks := make([]efp.Token, 0, len(raw))
	for _, t := range raw {
		if t.TType == efp.TokenTypeWhitespace {
			continue
		}
		toks = append(toks, t)
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("no tokens in formula %q", text)
	}

	p := &parser{toks: toks}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		t := p.peek()
		return nil, fmt.Errorf("unexpected %q after expression", t.TValue)
	}
	return expr, nil
}

// parser is a recursive-descent parser over the efp token stream. Each
// parse method implements one rung of the precedence ladder: comparison,
// concatenation, additive, multiplicative, exponential, unary, postfix.
type parser struct {
	toks []efp.Token
	pos  int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() efp.Token {
	if p.atEnd() {
		return efp.Token{}
	}
	return p.toks[p.pos]
}

func (p *parser) next() efp.Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) infixIs(values ...string) (string, bool) {
	t := p.peek()
	if t.TType != efp.TokenTypeOperatorInfix {
		return "", false
	}
	for _, v := range values {
		if t.TValue == v {
			return v, true
		}
	}
	return "", false
}

func (p *parser) parseExpression() (Expr, error) {
	left, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.infixIs("=", "<>", "<", "<=", ">", ">=")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseConcatenation()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseConcatenation() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.infixIs("&")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.infixIs("+", "-")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseExponential()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.infixIs("*", "/")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseExponential()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

// parseExponential parses the ^ rung. Exponentiation associates to the
// right: 2^3^2 is 2^(3^2).
func (p *parser) parseExponential() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.infixIs("^"); !ok {
		return left, nil
	}
	p.next()
	right, err := p.parseExponential()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: "^", left: left, right: right}, nil
}

// parseUnary parses prefix signs. The tokenizer marks most negations as
// OperatorPrefix, but a sign in operand position can also arrive as an
// infix token (for example a leading +), so both spellings are accepted
// here.
func (p *parser) parseUnary() (Expr, error) {
	t := p.peek()
	isPrefix := t.TType == efp.TokenTypeOperatorPrefix
	if !isPrefix && t.TType == efp.TokenTypeOperatorInfix && (t.TValue == "-" || t.TValue == "+") {
		isPrefix = true
	}
	if isPrefix {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: t.TValue, operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().TType == efp.TokenTypeOperatorPostfix {
		p.next()
		expr = &percentNode{operand: expr}
	}
	return expr, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()
	switch {
	case t.TType == efp.TokenTypeOperand:
		p.next()
		return operandNode(t)
	case t.TType == efp.TokenTypeFunction && t.TSubType == efp.TokenSubTypeStart:
		return p.parseCall()
	case t.TType == efp.TokenTypeSubexpression && t.TSubType == efp.TokenSubTypeStart:
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		end := p.next()
		if end.TType != efp.TokenTypeSubexpression || end.TSubType != efp.TokenSubTypeStop {
			return nil, fmt.Errorf("unbalanced parentheses")
		}
		return expr, nil
	}
	if p.atEnd() {
		return nil, fmt.Errorf("formula ends where an operand was expected")
	}
	return nil, fmt.Errorf("unexpected %q where an operand was expected", t.TValue)
}

// parseCall parses FUNC(arg, ...) after the opening Function token has been
// peeked. Argument slots are separated by Argument tokens; an empty slot
// between separators becomes a missing-argument node so optional parameters
// keep their positions.
func (p *parser) parseCall() (Expr, error) {
	open := p.next()
	name := open.TValue
	var args []Expr

	if t := p.peek(); t.TType == efp.TokenTypeFunction && t.TSubType == efp.TokenSubTypeStop {
		p.next()
		return &callNode{name: name, args: nil}, nil
	}

	for {
		if t := p.peek(); t.TType == efp.TokenTypeArgument ||
			(t.TType == efp.TokenTypeFunction && t.TSubType == efp.TokenSubTypeStop) {
			args = append(args, missingArgNode{})
		} else {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		switch t := p.next(); {
		case t.TType == efp.TokenTypeArgument:
			continue
		case t.TType == efp.TokenTypeFunction && t.TSubType == efp.TokenSubTypeStop:
			return &callNode{name: name, args: args}, nil
		default:
			return nil, fmt.Errorf("malformed argument list for %s", name)
		}
	}
}

// operandNode builds a leaf node from an operand token.
func operandNode(t efp.Token) (Expr, error) {
	switch t.TSubType {
	case efp.TokenSubTypeNumber:
		n, err := strconv.ParseFloat(t.TValue, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed number %q", t.TValue)
		}
		return numberNode(n), nil
	case efp.TokenSubTypeText:
		return textNode(t.TValue), nil
	case efp.TokenSubTypeLogical:
		return boolNode(strings.EqualFold(t.TValue, "TRUE")), nil
	case efp.TokenSubTypeError:
		if code, ok := ParseErrorCode(t.TValue); ok {
			return errorNode(code), nil
		}
		return nameNode(t.TValue), nil
	case efp.TokenSubTypeRange:
		return refOperandNode(t.TValue), nil
	}
	return nil, fmt.Errorf("unsupported operand %q", t.TValue)
}

// refOperandNode resolves a range-classified operand. The tokenizer files
// every bare identifier under Range, so anything that does not parse as a
// cell, whole-row or whole-column reference is an unknown name and
// evaluates to #NAME?. A sheet qualifier is accepted and dropped: formulas
// resolve against the single grid in the evaluation context.
func refOperandNode(text string) Expr {
	ref := text
	if i := strings.LastIndexByte(ref, '!'); i >= 0 {
		ref = ref[i+1:]
	}

	lo, hi, isRange := strings.Cut(ref, ":")
	if !isRange {
		if p, err := ParseCellName(ref); err == nil {
			return &cellNode{pos: p}
		}
		return nameNode(text)
	}

	if p1, err := ParseCellName(lo); err == nil {
		if p2, err := ParseCellName(hi); err == nil {
			return &rangeNode{ref: NewRef(p1, p2)}
		}
		return nameNode(text)
	}
	if c1 := colRefIndex(lo); c1 > 0 {
		if c2 := colRefIndex(hi); c2 > 0 {
			return &rangeNode{ref: NewRef(
				Position{Row: 1, Col: c1},
				Position{Row: MaxRows, Col: c2},
			)}
		}
		return nameNode(text)
	}
	if r1 := rowRefIndex(lo); r1 > 0 {
		if r2 := rowRefIndex(hi); r2 > 0 {
			return &rangeNode{ref: NewRef(
				Position{Row: r1, Col: 1},
				Position{Row: r2, Col: MaxCols},
			)}
		}
	}
	return nameNode(text)
}

// colRefIndex parses a whole-column endpoint such as "A" or "$XFD",
// returning 0 when the text is not one.
func colRefIndex(s string) int {
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0
	}
	for i := 0; i < len(s); i++ {
		if !isLetterByte(s[i]) {
			return 0
		}
	}
	if c := ColIndex(s); c >= 1 && c <= MaxCols {
		return c
	}
	return 0
}

// rowRefIndex parses a whole-row endpoint such as "3" or "$12", returning 0
// when the text is not one.
func rowRefIndex(s string) int {
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0
	}
	for i := 0; i < len(s); i++ {
		if !isDigitByte(s[i]) {
			return 0
		}
	}
	r, err := strconv.Atoi(s)
	if err != nil || r < 1 || r > MaxRows {
		return 0
	}
	return r
}

// refExpr is implemented by nodes that address cells directly; ROW and
// COLUMN use it to read coordinates without evaluating the target.
type refExpr interface {
	RefTarget() Ref
}

type numberNode float64

func (n numberNode) Eval(*Context) Value { return Number(float64(n)) }
func (numberNode) IsRef() bool           { return false }

type textNode string

func (t textNode) Eval(*Context) Value { return Text(string(t)) }
func (textNode) IsRef() bool           { return false }

type boolNode bool

func (b boolNode) Eval(*Context) Value { return Bool(bool(b)) }
func (boolNode) IsRef() bool           { return false }

type errorNode ErrorCode

func (e errorNode) Eval(*Context) Value { return NewError(ErrorCode(e)) }
func (errorNode) IsRef() bool           { return false }

// nameNode is an identifier that resolved to nothing.
type nameNode string

func (nameNode) Eval(*Context) Value { return NewError(ErrorName) }
func (nameNode) IsRef() bool         { return false }

// missingArgNode fills an omitted argument slot, e.g. IF(A1,,2).
type missingArgNode struct{}

func (missingArgNode) Eval(*Context) Value { return Value{} }
func (missingArgNode) IsRef() bool         { return false }

type cellNode struct {
	pos Position
}

func (c *cellNode) Eval(ctx *Context) Value {
	if ctx.Grid == nil {
		return Value{}
	}
	return ctx.Grid.CellValue(c.pos.Row, c.pos.Col)
}
func (c *cellNode) IsRef() bool    { return true }
func (c *cellNode) RefTarget() Ref { return CellRef(c.pos) }

type rangeNode struct {
	ref Ref
}

func (r *rangeNode) Eval(*Context) Value { return RefValue(r.ref) }
func (r *rangeNode) IsRef() bool         { return true }
func (r *rangeNode) RefTarget() Ref      { return r.ref }

type unaryNode struct {
	op      string
	operand Expr
}

func (u *unaryNode) Eval(ctx *Context) Value { return applyUnary(ctx, u.op, u.operand) }
func (u *unaryNode) IsRef() bool             { return false }

type percentNode struct {
	operand Expr
}

func (n *percentNode) Eval(ctx *Context) Value { return applyPercent(ctx, n.operand) }
func (n *percentNode) IsRef() bool             { return false }

type binaryNode struct {
	op          string
	left, right Expr
}

func (b *binaryNode) Eval(ctx *Context) Value { return applyBinary(ctx, b.op, b.left, b.right) }
func (b *binaryNode) IsRef() bool             { return false }

type callNode struct {
	name string
	args []Expr
}

func (c *callNode) Eval(ctx *Context) Value { return callFunction(ctx, c.name, c.args) }
func (c *callNode) IsRef() bool             { return false }
