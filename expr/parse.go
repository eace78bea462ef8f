package expr

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("expr: syntax error")

// SyntaxError reports the byte offset of a parse failure.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: syntax error at offset %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ============================================================
// Lexer
// ============================================================

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokEqual
	tokSuper // superscript digits, literal holds the ASCII exponent
	tokRoot  // √
)

type token struct {
	typ     tokenType
	literal string
	pos     int
}

type lexer struct {
	input string
	pos   int
}

var superscripts = map[rune]byte{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) {
		r, w := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += w
	}
	if l.pos >= len(l.input) {
		return token{typ: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])

	single := func(t tokenType) (token, error) {
		l.pos += w
		return token{typ: t, literal: string(r), pos: start}, nil
	}
	switch r {
	case '+':
		return single(tokPlus)
	case '-', '−':
		return single(tokMinus)
	case '*', '·', '×', '⋅':
		return single(tokStar)
	case '/', ':', '÷':
		return single(tokSlash)
	case '^':
		return single(tokCaret)
	case '(', '[':
		return single(tokLParen)
	case ')', ']':
		return single(tokRParen)
	case '=':
		return single(tokEqual)
	case '√':
		return single(tokRoot)
	case 'π':
		l.pos += w
		return token{typ: tokIdent, literal: "pi", pos: start}, nil
	}
	if _, ok := superscripts[r]; ok {
		var sb strings.Builder
		for l.pos < len(l.input) {
			r, w := utf8.DecodeRuneInString(l.input[l.pos:])
			d, ok := superscripts[r]
			if !ok {
				break
			}
			sb.WriteByte(d)
			l.pos += w
		}
		return token{typ: tokSuper, literal: sb.String(), pos: start}, nil
	}
	if unicode.IsDigit(r) || r == '.' {
		seenDot := false
		for l.pos < len(l.input) {
			c := l.input[l.pos]
			if c == '.' {
				if seenDot {
					break
				}
				seenDot = true
			} else if c < '0' || c > '9' {
				break
			}
			l.pos++
		}
		lit := l.input[start:l.pos]
		if lit == "." {
			return token{}, &SyntaxError{Pos: start, Msg: "lone decimal point"}
		}
		return token{typ: tokNumber, literal: lit, pos: start}, nil
	}
	if unicode.IsLetter(r) || r == '_' {
		for l.pos < len(l.input) {
			r, w := utf8.DecodeRuneInString(l.input[l.pos:])
			if !(unicode.IsLetter(r) || r == '_' || (r < utf8.RuneSelf && unicode.IsDigit(r) && l.input[start] == '_')) {
				break
			}
			if r == 'π' {
				break
			}
			l.pos += w
		}
		return token{typ: tokIdent, literal: l.input[start:l.pos], pos: start}, nil
	}
	return token{}, &SyntaxError{Pos: start, Msg: fmt.Sprintf("unexpected character %q", r)}
}

func tokenize(input string) ([]token, error) {
	l := &lexer{input: input}
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.typ == tokEOF {
			return toks, nil
		}
	}
}

// ============================================================
// Parser
// ============================================================

var functions = map[string]func(Expr) Expr{
	"sin": SinOf, "cos": CosOf, "tan": TanOf,
	"asin": ArcsinOf, "arcsin": ArcsinOf,
	"acos": ArccosOf, "arccos": ArccosOf,
	"atan": ArctanOf, "arctan": ArctanOf,
	"ln": LnOf, "log": LnOf, "exp": ExpOf,
	"sqrt": SqrtOf, "abs": AbsOf,
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.typ != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(t tokenType, what string) error {
	tok := p.advance()
	if tok.typ != t {
		return &SyntaxError{Pos: tok.pos, Msg: "expected " + what}
	}
	return nil
}

// Parse reads an ASCII-math expression such as "2x^2 - 4x - 6" or
// "sin(2x) + 1/2". Multiplication may be implicit. Identifiers starting
// with an underscore are wildcards; other unknown multi-letter words are
// read as products of single-letter symbols.
func Parse(text string) (Expr, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.literal)}
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

// ParseEquation reads "left = right". Text without an equals sign is read
// as "text = 0".
func ParseEquation(text string) (left, right Expr, err error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{toks: toks}
	left, err = p.parseSum()
	if err != nil {
		return nil, nil, err
	}
	right = N(0)
	if p.peek().typ == tokEqual {
		p.advance()
		right, err = p.parseSum()
		if err != nil {
			return nil, nil, err
		}
	}
	if t := p.peek(); t.typ != tokEOF {
		return nil, nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.literal)}
	}
	return left, right, nil
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().typ {
		case tokPlus:
			p.advance()
			right, err := p.parseProduct()
			if err != nil {
				return nil, err
			}
			left = AddOf(left, right)
		case tokMinus:
			p.advance()
			right, err := p.parseProduct()
			if err != nil {
				return nil, err
			}
			left = Subtract(left, right)
		default:
			return left, nil
		}
	}
}

func startsOperand(t tokenType) bool {
	switch t {
	case tokNumber, tokIdent, tokLParen, tokRoot:
		return true
	}
	return false
}

// parseProduct collects the whole chain before simplifying, so a leading
// coefficient is distributed only when the chain holds a single sum.
func (p *parser) parseProduct() (Expr, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{first}
	for {
		t := p.peek().typ
		switch {
		case t == tokStar:
			p.advance()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, right)
		case t == tokSlash:
			p.advance()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, PowOf(right, N(-1)))
		case startsOperand(t):
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			factors = append(factors, right)
		default:
			if len(factors) == 1 {
				return first, nil
			}
			return MulOf(factors...), nil
		}
	}
}

// parseUnary binds looser than ^, so -x^2 reads as -(x^2).
func (p *parser) parseUnary() (Expr, error) {
	switch p.peek().typ {
	case tokMinus:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	case tokPlus:
		p.advance()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokSuper {
		t := p.advance()
		exp, _ := new(big.Rat).SetString(t.literal)
		base = PowOf(base, NRat(exp))
	}
	if p.peek().typ == tokCaret {
		p.advance()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.advance()
	switch t.typ {
	case tokNumber:
		r, ok := new(big.Rat).SetString(t.literal)
		if !ok {
			return nil, &SyntaxError{Pos: t.pos, Msg: "bad number " + t.literal}
		}
		return NRat(r), nil
	case tokLParen:
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case tokRoot:
		arg, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return SqrtOf(arg), nil
	case tokIdent:
		return p.parseIdent(t)
	case tokEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of input"}
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.literal)}
}

func (p *parser) parseIdent(t token) (Expr, error) {
	name := t.literal
	if strings.HasPrefix(name, "_") {
		return S(name), nil
	}
	if fn, ok := functions[strings.ToLower(name)]; ok {
		var arg Expr
		var err error
		if p.peek().typ == tokLParen {
			p.advance()
			arg, err = p.parseSum()
			if err == nil {
				err = p.expect(tokRParen, "')'")
			}
		} else {
			arg, err = p.parsePower()
		}
		if err != nil {
			return nil, err
		}
		return fn(arg), nil
	}
	switch name {
	case "pi":
		return Pi, nil
	case "e":
		return E, nil
	}
	if utf8.RuneCountInString(name) == 1 {
		return S(name), nil
	}
	factors := make([]Expr, 0, len(name))
	for _, r := range name {
		factors = append(factors, S(string(r)))
	}
	return MulOf(factors...), nil
}
