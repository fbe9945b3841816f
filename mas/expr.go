package mas

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rfielding/kripke-atlk/symbolic"
)

// Expression syntax, loosest binding first:
//
//	e <-> e    e -> e    e | e    e & e    !e  ~e
//	v = value  v != value  v = w  v in {a, b}  v (boolean)  TRUE  FALSE  (e)

type exprTokenType int

const (
	etIdent exprTokenType = iota
	etNot
	etAnd
	etOr
	etImplies
	etIff
	etEq
	etNeq
	etLParen
	etRParen
	etLBrace
	etRBrace
	etComma
	etEOF
	etIllegal
)

type exprToken struct {
	Type exprTokenType
	Text string
	Pos  int
}

type exprTokenizer struct {
	input []rune
	pos   int
}

func (t *exprTokenizer) peek() rune {
	if t.pos >= len(t.input) {
		return 0
	}
	return t.input[t.pos]
}

func (t *exprTokenizer) advance() rune {
	if t.pos >= len(t.input) {
		return 0
	}
	r := t.input[t.pos]
	t.pos++
	return r
}

func (t *exprTokenizer) Next() exprToken {
	for t.pos < len(t.input) && unicode.IsSpace(t.peek()) {
		t.advance()
	}
	start := t.pos
	if t.pos >= len(t.input) {
		return exprToken{Type: etEOF, Pos: start}
	}
	tok := func(tt exprTokenType, text string) exprToken {
		return exprToken{Type: tt, Text: text, Pos: start}
	}
	c := t.advance()
	switch c {
	case '(':
		return tok(etLParen, "(")
	case ')':
		return tok(etRParen, ")")
	case '{':
		return tok(etLBrace, "{")
	case '}':
		return tok(etRBrace, "}")
	case ',':
		return tok(etComma, ",")
	case '&':
		return tok(etAnd, "&")
	case '|':
		return tok(etOr, "|")
	case '~':
		return tok(etNot, "~")
	case '=':
		return tok(etEq, "=")
	case '!':
		if t.peek() == '=' {
			t.advance()
			return tok(etNeq, "!=")
		}
		return tok(etNot, "!")
	case '-':
		if t.peek() == '>' {
			t.advance()
			return tok(etImplies, "->")
		}
	case '<':
		if t.peek() == '-' {
			t.advance()
			if t.peek() == '>' {
				t.advance()
				return tok(etIff, "<->")
			}
		}
	default:
		if isIdentRune(c) {
			var sb strings.Builder
			sb.WriteRune(c)
			for isIdentRune(t.peek()) {
				sb.WriteRune(t.advance())
			}
			return tok(etIdent, sb.String())
		}
	}
	return exprToken{Type: etIllegal, Text: string(c), Pos: start}
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scope says which variables an expression may read.
type scope struct {
	inputs bool
	// only, when non-nil, restricts state variables to this set.
	only map[string]bool
}

type exprParser struct {
	m       *MAS
	scope   scope
	text    string
	tok     *exprTokenizer
	current exprToken
}

// compile turns an expression into the set of current states (and inputs,
// when the scope allows them) satisfying it. The empty expression is TRUE.
func (m *MAS) compile(text string, sc scope) (symbolic.Set, error) {
	if strings.TrimSpace(text) == "" {
		return m.mgr.True(), nil
	}
	p := &exprParser{m: m, scope: sc, text: text, tok: &exprTokenizer{input: []rune(text)}}
	p.current = p.tok.Next()
	s, err := p.parseIff()
	if err != nil {
		return m.mgr.False(), err
	}
	if p.current.Type != etEOF {
		return m.mgr.False(), p.errorf("unexpected %q", p.current.Text)
	}
	return s, nil
}

func (p *exprParser) advance() exprToken {
	tok := p.current
	p.current = p.tok.Next()
	return tok
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %q at %d: %s", ErrExpression, p.text, p.current.Pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) expect(tt exprTokenType, what string) error {
	if p.current.Type != tt {
		return p.errorf("expected %s", what)
	}
	p.advance()
	return nil
}

func (p *exprParser) parseIff() (symbolic.Set, error) {
	left, err := p.parseImplies()
	if err != nil {
		return left, err
	}
	for p.current.Type == etIff {
		p.advance()
		right, err := p.parseImplies()
		if err != nil {
			return right, err
		}
		left = left.Iff(right)
	}
	return left, nil
}

func (p *exprParser) parseImplies() (symbolic.Set, error) {
	left, err := p.parseOr()
	if err != nil {
		return left, err
	}
	if p.current.Type == etImplies {
		p.advance()
		right, err := p.parseImplies()
		if err != nil {
			return right, err
		}
		return left.Implies(right), nil
	}
	return left, nil
}

func (p *exprParser) parseOr() (symbolic.Set, error) {
	left, err := p.parseAnd()
	if err != nil {
		return left, err
	}
	for p.current.Type == etOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return right, err
		}
		left = left.Union(right)
	}
	return left, nil
}

func (p *exprParser) parseAnd() (symbolic.Set, error) {
	left, err := p.parseUnary()
	if err != nil {
		return left, err
	}
	for p.current.Type == etAnd {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return right, err
		}
		left = left.Intersect(right)
	}
	return left, nil
}

func (p *exprParser) parseUnary() (symbolic.Set, error) {
	if p.current.Type == etNot {
		p.advance()
		s, err := p.parseUnary()
		if err != nil {
			return s, err
		}
		return s.Complement(), nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (symbolic.Set, error) {
	mgr := p.m.mgr
	switch p.current.Type {
	case etLParen:
		p.advance()
		s, err := p.parseIff()
		if err != nil {
			return s, err
		}
		return s, p.expect(etRParen, "')'")
	case etIdent:
	default:
		return mgr.False(), p.errorf("unexpected %q", p.current.Text)
	}

	name := p.advance().Text
	switch name {
	case "TRUE":
		return mgr.True(), nil
	case "FALSE":
		return mgr.False(), nil
	}
	if d, ok := p.m.defines[name]; ok {
		if p.scope.only != nil {
			return mgr.False(), p.errorf("define %s not allowed here", name)
		}
		return d, nil
	}
	v, err := p.lookup(name)
	if err != nil {
		return mgr.False(), err
	}

	switch {
	case p.current.Type == etEq || p.current.Type == etNeq:
		negate := p.advance().Type == etNeq
		if p.current.Type != etIdent {
			return mgr.False(), p.errorf("expected a value after %s", name)
		}
		rhs := p.advance().Text
		s, err := p.compare(v, rhs)
		if err != nil {
			return s, err
		}
		if negate {
			s = s.Complement()
		}
		return s, nil
	case p.current.Type == etIdent && p.current.Text == "in":
		p.advance()
		if err := p.expect(etLBrace, "'{'"); err != nil {
			return mgr.False(), err
		}
		out := mgr.False()
		for {
			if p.current.Type != etIdent {
				return mgr.False(), p.errorf("expected a value of %s", name)
			}
			s, err := p.m.enc.eqValue(v, p.advance().Text, false)
			if err != nil {
				return s, fmt.Errorf("%w: %q", err, p.text)
			}
			out = out.Union(s)
			if p.current.Type != etComma {
				break
			}
			p.advance()
		}
		return out, p.expect(etRBrace, "'}'")
	default:
		if !v.isBool() {
			return mgr.False(), p.errorf("%s is not boolean", name)
		}
		return p.m.enc.eq(v, 1, false), nil
	}
}

// compare handles v = rhs where rhs is a value of v or another variable.
func (p *exprParser) compare(v *variable, rhs string) (symbolic.Set, error) {
	if _, ok := v.index[rhs]; ok {
		return p.m.enc.eqValue(v, rhs, false)
	}
	if w, ok := p.m.vars[rhs]; ok {
		if _, err := p.lookup(rhs); err != nil {
			return p.m.mgr.False(), err
		}
		return p.m.enc.same(v, w, false), nil
	}
	return p.m.mgr.False(), fmt.Errorf("%w: %q is not a value of %s in %q", ErrUnknownValue, rhs, v.name, p.text)
}

func (p *exprParser) lookup(name string) (*variable, error) {
	v, ok := p.m.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrUnknownVariable, name, p.text)
	}
	if v.input && !p.scope.inputs {
		return nil, p.errorf("input %s not allowed here", name)
	}
	if !v.input && p.scope.only != nil && !p.scope.only[name] {
		return nil, p.errorf("%s is not observable here", name)
	}
	return v, nil
}
