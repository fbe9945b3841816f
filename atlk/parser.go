package atlk

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// ErrSyntax is wrapped by every ParseError.
var ErrSyntax = errors.New("syntax error")

// ParseError locates a syntax error in the input.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at %d in %q: %s", e.Pos, e.Input, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// ============================================================================
// Tokenizer
// ============================================================================

type TokenType int

const (
	TokLParen TokenType = iota
	TokRParen
	TokLBracket
	TokRBracket
	TokLAngle
	TokRAngle
	TokComma
	TokNot
	TokAnd
	TokOr
	TokImplies
	TokIff
	TokAtom
	TokIdent
	TokEOF
	TokIllegal
)

type Token struct {
	Type TokenType
	Text string
	Pos  int
}

type Tokenizer struct {
	input []rune
	pos   int
}

func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: []rune(input)}
}

func (t *Tokenizer) peek() rune {
	if t.pos >= len(t.input) {
		return 0
	}
	return t.input[t.pos]
}

func (t *Tokenizer) peekAt(offset int) rune {
	if t.pos+offset >= len(t.input) {
		return 0
	}
	return t.input[t.pos+offset]
}

func (t *Tokenizer) advance() rune {
	if t.pos >= len(t.input) {
		return 0
	}
	r := t.input[t.pos]
	t.pos++
	return r
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && unicode.IsSpace(t.peek()) {
		t.advance()
	}
}

func (t *Tokenizer) Next() Token {
	t.skipWhitespace()
	start := t.pos
	if t.pos >= len(t.input) {
		return Token{Type: TokEOF, Pos: start}
	}
	tok := func(tt TokenType, text string) Token {
		return Token{Type: tt, Text: text, Pos: start}
	}

	c := t.peek()
	switch c {
	case '(':
		t.advance()
		return tok(TokLParen, "(")
	case ')':
		t.advance()
		return tok(TokRParen, ")")
	case '[':
		t.advance()
		return tok(TokLBracket, "[")
	case ']':
		t.advance()
		return tok(TokRBracket, "]")
	case '>':
		t.advance()
		return tok(TokRAngle, ">")
	case ',':
		t.advance()
		return tok(TokComma, ",")
	case '~', '!':
		t.advance()
		return tok(TokNot, string(c))
	case '&':
		t.advance()
		return tok(TokAnd, "&")
	case '|':
		t.advance()
		return tok(TokOr, "|")
	case '-':
		if t.peekAt(1) == '>' {
			t.pos += 2
			return tok(TokImplies, "->")
		}
	case '<':
		if t.peekAt(1) == '-' && t.peekAt(2) == '>' {
			t.pos += 3
			return tok(TokIff, "<->")
		}
		t.advance()
		return tok(TokLAngle, "<")
	case '\'':
		t.advance()
		var sb strings.Builder
		for t.pos < len(t.input) && t.peek() != '\'' {
			sb.WriteRune(t.advance())
		}
		if t.pos >= len(t.input) {
			return Token{Type: TokIllegal, Text: "unterminated atom", Pos: start}
		}
		t.advance() // closing quote
		return tok(TokAtom, sb.String())
	default:
		if isIdentRune(c) {
			var sb strings.Builder
			for isIdentRune(t.peek()) {
				sb.WriteRune(t.advance())
			}
			return tok(TokIdent, sb.String())
		}
	}
	t.advance()
	return Token{Type: TokIllegal, Text: string(c), Pos: start}
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ============================================================================
// Parser
// ============================================================================

type Parser struct {
	input     string
	tokenizer *Tokenizer
	current   Token
}

func NewParser(input string) *Parser {
	p := &Parser{input: input, tokenizer: NewTokenizer(input)}
	p.current = p.tokenizer.Next()
	return p
}

// Parse reads a complete formula.
func Parse(input string) (Formula, error) {
	p := NewParser(input)
	f, err := p.parseIff()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokEOF {
		return nil, p.errorf("unexpected %q", p.current.Text)
	}
	return f, nil
}

// MustParse is Parse for formulas known to be valid. It panics on error.
func MustParse(input string) Formula {
	f, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return f
}

func (p *Parser) advance() Token {
	tok := p.current
	p.current = p.tokenizer.Next()
	return tok
}

func (p *Parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.current.Type == TokIllegal {
		msg = p.current.Text
	}
	return &ParseError{Input: p.input, Pos: p.current.Pos, Msg: msg}
}

func (p *Parser) expect(tt TokenType, what string) error {
	if p.current.Type != tt {
		return p.errorf("expected %s", what)
	}
	p.advance()
	return nil
}

func (p *Parser) isIdent(text string) bool {
	return p.current.Type == TokIdent && p.current.Text == text
}

func (p *Parser) parseIff() (Formula, error) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokIff {
		p.advance()
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		left = Iff{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseImplies() (Formula, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current.Type == TokImplies {
		p.advance()
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return Implies{Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseOr() (Formula, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Formula, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokAnd {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Formula, error) {
	switch p.current.Type {
	case TokNot:
		p.advance()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{F: f}, nil
	case TokLAngle:
		g, err := p.parseGroup(TokLAngle, TokRAngle)
		if err != nil {
			return nil, err
		}
		return p.parseStrategic(g, false)
	case TokLBracket:
		g, err := p.parseGroup(TokLBracket, TokRBracket)
		if err != nil {
			return nil, err
		}
		return p.parseStrategic(g, true)
	case TokIdent:
		return p.parseKeyword()
	}
	return p.parsePrimary()
}

// parseKeyword handles temporal and epistemic prefixes and constants.
func (p *Parser) parseKeyword() (Formula, error) {
	word := p.current.Text
	switch word {
	case "True", "TRUE", "true":
		p.advance()
		return True{}, nil
	case "False", "FALSE", "false":
		p.advance()
		return False{}, nil
	case "Init", "init":
		p.advance()
		return Init{}, nil
	case "Reachable", "reachable":
		p.advance()
		return Reachable{}, nil
	case "EX", "AX", "EF", "AF", "EG", "AG":
		p.advance()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		switch word {
		case "EX":
			return EX{F: f}, nil
		case "AX":
			return AX{F: f}, nil
		case "EF":
			return EF{F: f}, nil
		case "AF":
			return AF{F: f}, nil
		case "EG":
			return EG{F: f}, nil
		default:
			return AG{F: f}, nil
		}
	case "E", "A":
		p.advance()
		if word == "E" && p.current.Type == TokLAngle {
			return p.parseEpistemic(word)
		}
		left, right, op, err := p.parseBinaryPath()
		if err != nil {
			return nil, err
		}
		switch {
		case word == "E" && op == "U":
			return EU{Left: left, Right: right}, nil
		case word == "E":
			return EW{Left: left, Right: right}, nil
		case op == "U":
			return AU{Left: left, Right: right}, nil
		default:
			return AW{Left: left, Right: right}, nil
		}
	case "K", "nK", "nE", "D", "nD", "C", "nC":
		p.advance()
		return p.parseEpistemic(word)
	}
	return nil, p.errorf("unexpected %q", word)
}

func (p *Parser) parseEpistemic(op string) (Formula, error) {
	g, err := p.parseGroup(TokLAngle, TokRAngle)
	if err != nil {
		return nil, err
	}
	f, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	switch op {
	case "K", "nK":
		if len(g) != 1 {
			return nil, p.errorf("%s takes exactly one agent", op)
		}
		if op == "K" {
			return K{Agent: g[0], F: f}, nil
		}
		return NK{Agent: g[0], F: f}, nil
	case "E":
		return E{Group: g, F: f}, nil
	case "nE":
		return NE{Group: g, F: f}, nil
	case "D":
		return D{Group: g, F: f}, nil
	case "nD":
		return ND{Group: g, F: f}, nil
	case "C":
		return C{Group: g, F: f}, nil
	default:
		return NC{Group: g, F: f}, nil
	}
}

// parseStrategic reads the path formula after <g> or [g].
func (p *Parser) parseStrategic(g []string, dual bool) (Formula, error) {
	if p.current.Type == TokLBracket {
		left, right, op, err := p.parseBinaryPath()
		if err != nil {
			return nil, err
		}
		switch {
		case dual && op == "U":
			return DualU{Group: g, Left: left, Right: right}, nil
		case dual:
			return DualW{Group: g, Left: left, Right: right}, nil
		case op == "U":
			return CoalU{Group: g, Left: left, Right: right}, nil
		default:
			return CoalW{Group: g, Left: left, Right: right}, nil
		}
	}
	if p.current.Type != TokIdent {
		return nil, p.errorf("expected X, F, G or [")
	}
	op := p.advance().Text
	if op != "X" && op != "F" && op != "G" {
		return nil, p.errorf("unknown strategic operator %q", op)
	}
	f, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	switch {
	case dual && op == "X":
		return DualX{Group: g, F: f}, nil
	case dual && op == "F":
		return DualF{Group: g, F: f}, nil
	case dual:
		return DualG{Group: g, F: f}, nil
	case op == "X":
		return CoalX{Group: g, F: f}, nil
	case op == "F":
		return CoalF{Group: g, F: f}, nil
	default:
		return CoalG{Group: g, F: f}, nil
	}
}

// parseBinaryPath reads "[left U right]" or "[left W right]".
func (p *Parser) parseBinaryPath() (Formula, Formula, string, error) {
	if err := p.expect(TokLBracket, "'['"); err != nil {
		return nil, nil, "", err
	}
	left, err := p.parseIff()
	if err != nil {
		return nil, nil, "", err
	}
	if !p.isIdent("U") && !p.isIdent("W") {
		return nil, nil, "", p.errorf("expected U or W")
	}
	op := p.advance().Text
	right, err := p.parseIff()
	if err != nil {
		return nil, nil, "", err
	}
	if err := p.expect(TokRBracket, "']'"); err != nil {
		return nil, nil, "", err
	}
	return left, right, op, nil
}

// parseGroup reads a comma separated list of agent names, quoted or bare,
// and returns it sorted without duplicates.
func (p *Parser) parseGroup(open, closing TokenType) ([]string, error) {
	if err := p.expect(open, "group"); err != nil {
		return nil, err
	}
	var g []string
	for {
		if p.current.Type != TokAtom && p.current.Type != TokIdent {
			return nil, p.errorf("expected agent name")
		}
		g = append(g, p.advance().Text)
		if p.current.Type != TokComma {
			break
		}
		p.advance()
	}
	if err := p.expect(closing, "end of group"); err != nil {
		return nil, err
	}
	return NormalizeGroup(g), nil
}

// NormalizeGroup sorts a group and removes duplicates.
func NormalizeGroup(g []string) []string {
	out := slices.Clone(g)
	slices.Sort(out)
	return slices.Compact(out)
}

func (p *Parser) parsePrimary() (Formula, error) {
	switch p.current.Type {
	case TokAtom:
		text := strings.TrimSpace(p.advance().Text)
		if text == "" {
			return nil, p.errorf("empty atom")
		}
		return Atom{Text: text}, nil
	case TokLParen:
		p.advance()
		f, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return f, nil
	case TokEOF:
		return nil, p.errorf("unexpected end of formula")
	}
	return nil, p.errorf("unexpected %q", p.current.Text)
}
