package formula

import (
	"fmt"
	"strings"
	"unicode"
)

// The property grammar, lowest precedence first:
//
//	iff     := implies ( "<->" implies )*
//	implies := or ( "->" or )*
//	or      := and ( "|" and )*
//	and     := unary ( "&" unary )*
//	unary   := "!" unary
//	         | (EY|AY|EP|AP|EH|AH) ( "(" iff ")" | unary )
//	         | primary
//	primary := prop | TRUE | FALSE | "(" iff ")"
//	         | ("A"|"E") "(" iff "S" iff ")"
//
// Propositions match [a-zA-Z_][a-zA-Z0-9_'.]*.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokProp
	tokTrue
	tokFalse
	tokNot
	tokAnd
	tokOr
	tokImplies
	tokIff
	tokLParen
	tokRParen
	tokA
	tokE
	tokS
	tokTemporal // EY AY EP AP EH AH; text carries which
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var reserved = map[string]tokenKind{
	"TRUE": tokTrue, "FALSE": tokFalse,
	"A": tokA, "E": tokE, "S": tokS,
	"EY": tokTemporal, "AY": tokTemporal,
	"EP": tokTemporal, "AP": tokTemporal,
	"EH": tokTemporal, "AH": tokTemporal,
}

func isPropStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isPropRune(r rune) bool {
	return r == '_' || r == '\'' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lex(input string) ([]token, error) {
	var toks []token
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == '!':
			toks = append(toks, token{tokNot, "!", i})
			i++
		case r == '&':
			toks = append(toks, token{tokAnd, "&", i})
			i++
		case r == '|':
			toks = append(toks, token{tokOr, "|", i})
			i++
		case r == '-':
			if i+1 < len(runes) && runes[i+1] == '>' {
				toks = append(toks, token{tokImplies, "->", i})
				i += 2
			} else {
				return nil, fmt.Errorf("formula: unexpected %q at position %d", r, i)
			}
		case r == '<':
			if i+2 < len(runes) && runes[i+1] == '-' && runes[i+2] == '>' {
				toks = append(toks, token{tokIff, "<->", i})
				i += 3
			} else {
				return nil, fmt.Errorf("formula: unexpected %q at position %d", r, i)
			}
		case isPropStart(r):
			start := i
			for i < len(runes) && isPropRune(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			if kind, ok := reserved[word]; ok {
				toks = append(toks, token{kind, word, start})
			} else {
				toks = append(toks, token{tokProp, word, start})
			}
		default:
			return nil, fmt.Errorf("formula: unexpected %q at position %d", r, i)
		}
	}
	toks = append(toks, token{tokEOF, "", len(runes)})
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

// Parse compiles a property string into a formula tree and indexes it.
// The returned node list is in pre-order; its first element is the root.
func Parse(input string) (Formula, []Formula, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil, fmt.Errorf("formula: empty property")
	}
	toks, err := lex(input)
	if err != nil {
		return nil, nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseIff()
	if err != nil {
		return nil, nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, nil, p.errorf("trailing input starting at %q", p.peek().text)
	}
	return root, Index(root), nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return t, p.errorf("expected %s, got %q", what, t.text)
	}
	return p.next(), nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("formula: "+format+" at position %d", append(args, p.peek().pos)...)
}

func (p *parser) parseIff() (Formula, error) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokIff {
		p.next()
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		left = NewIff(left, right)
	}
	return left, nil
}

func (p *parser) parseImplies() (Formula, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokImplies {
		p.next()
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = NewImplies(left, right)
	}
	return left, nil
}

func (p *parser) parseOr() (Formula, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewOr(left, right)
	}
	return left, nil
}

func (p *parser) parseAnd() (Formula, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = NewAnd(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (Formula, error) {
	switch t := p.peek(); t.kind {
	case tokNot:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewNot(operand), nil
	case tokTemporal:
		p.next()
		// operand is either a parenthesized formula or a unary operand:
		// "EP(p & q)" and "EP p" both parse, "EP p & q" applies to p only
		var operand Formula
		if p.peek().kind == tokLParen {
			p.next()
			inner, err := p.parseIff()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRParen, `")"`); err != nil {
				return nil, err
			}
			operand = inner
		} else {
			inner, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			operand = inner
		}
		switch t.text {
		case "EY":
			return NewEY(operand), nil
		case "AY":
			return NewAY(operand), nil
		case "EP":
			return NewEP(operand), nil
		case "AP":
			return NewAP(operand), nil
		case "EH":
			return NewEH(operand), nil
		default:
			return NewAH(operand), nil
		}
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (Formula, error) {
	switch t := p.peek(); t.kind {
	case tokProp:
		p.next()
		return NewProposition(t.text), nil
	case tokTrue:
		p.next()
		return NewConstant(true), nil
	case tokFalse:
		p.next()
		return NewConstant(false), nil
	case tokLParen:
		p.next()
		inner, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return NewParen(inner), nil
	case tokA, tokE:
		p.next()
		if _, err := p.expect(tokLParen, `"("`); err != nil {
			return nil, err
		}
		left, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokS, `"S"`); err != nil {
			return nil, err
		}
		right, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		if t.kind == tokA {
			return NewAS(left, right), nil
		}
		return NewES(left, right), nil
	default:
		return nil, p.errorf("unexpected %q", t.text)
	}
}
