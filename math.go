package expanding

import (
	"strconv"
	"strings"
	"unicode"
)

// evalExpr evaluates an arithmetic expansion with the reader positioned just
// past "$(" and returns the decimal form of the result. With resolve false
// the expression is consumed and syntax-checked but not computed.
func (e *Expander) evalExpr(at Position, resolve bool) (string, error) {
	p := &exprParser{x: e, at: at, resolve: resolve}
	v, err := p.expr()
	if err != nil {
		return "", err
	}
	c, pos := p.next()
	if c == EOF {
		return "", errAt(ErrUnterminated, at, "unexpected end of input in expression")
	}
	if c != ')' {
		return "", errAt(ErrSyntax, pos, "expected ')' in expression, got %q", c)
	}
	if !resolve {
		return "", nil
	}
	return strconv.FormatInt(v, 10), nil
}

// exprParser is a recursive-descent parser over the reader shared with the
// expander. Whitespace, newlines included, separates terms freely. The
// grammar, loosest binding first:
//
//	expr   := sum (('<' | '>') sum)*      '<' picks the minimum, '>' the maximum
//	sum    := term (('+' | '-') term)*
//	term   := factor (('*' | '/' | '%') factor)*
//	factor := '-' factor | '(' expr ')' | integer | '$' reference
//
// Integers are decimal, octal with a leading 0, or hexadecimal with a
// leading 0x. Division truncates toward zero and the remainder takes the
// sign of the dividend, so $(-(3+4)%5) is -2.
type exprParser struct {
	x       *Expander
	at      Position // position of the opening "$(", for end-of-input reports
	resolve bool
}

// next returns the following non-whitespace rune and its position. EOF is
// returned as is; callers must not Unget it.
func (p *exprParser) next() (rune, Position) {
	for {
		pos := p.x.reader.At()
		c := p.x.reader.Get()
		if c == EOF || !unicode.IsSpace(c) {
			return c, pos
		}
	}
}

func (p *exprParser) expr() (int64, error) {
	v, err := p.sum()
	if err != nil {
		return 0, err
	}
	for {
		c, _ := p.next()
		switch c {
		case '<':
			r, err := p.sum()
			if err != nil {
				return 0, err
			}
			if r < v {
				v = r
			}
		case '>':
			r, err := p.sum()
			if err != nil {
				return 0, err
			}
			if r > v {
				v = r
			}
		case EOF:
			return v, nil
		default:
			p.x.reader.Unget()
			return v, nil
		}
	}
}

func (p *exprParser) sum() (int64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		c, _ := p.next()
		switch c {
		case '+':
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v += r
		case '-':
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= r
		case EOF:
			return v, nil
		default:
			p.x.reader.Unget()
			return v, nil
		}
	}
}

func (p *exprParser) term() (int64, error) {
	v, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		c, pos := p.next()
		switch c {
		case '*':
			r, err := p.factor()
			if err != nil {
				return 0, err
			}
			v *= r
		case '/':
			r, err := p.factor()
			if err != nil {
				return 0, err
			}
			if p.resolve {
				if r == 0 {
					return 0, errAt(ErrDivisionByZero, pos, "division by zero")
				}
				v /= r
			}
		case '%':
			r, err := p.factor()
			if err != nil {
				return 0, err
			}
			if p.resolve {
				if r == 0 {
					return 0, errAt(ErrDivisionByZero, pos, "modulo by zero")
				}
				v %= r
			}
		case EOF:
			return v, nil
		default:
			p.x.reader.Unget()
			return v, nil
		}
	}
}

func (p *exprParser) factor() (int64, error) {
	c, pos := p.next()
	switch {
	case c == EOF:
		return 0, errAt(ErrUnterminated, p.at, "unexpected end of input in expression")
	case c == '-':
		v, err := p.factor()
		return -v, err
	case c == '(':
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		c, pos = p.next()
		if c == EOF {
			return 0, errAt(ErrUnterminated, p.at, "unexpected end of input in expression")
		}
		if c != ')' {
			return 0, errAt(ErrSyntax, pos, "expected ')' in expression, got %q", c)
		}
		return v, nil
	case c == '$':
		return p.reference(pos)
	case isAlnum(c):
		lit := p.literal(c)
		if !p.resolve {
			return 0, nil
		}
		v, err := parseInt(lit)
		if err != nil {
			return 0, errAt(ErrNotANumber, pos, "%q is not a number", lit)
		}
		return v, nil
	}
	return 0, errAt(ErrSyntax, pos, "unexpected %q in expression", c)
}

// reference expands a nested $-construct and parses the result as an
// integer. Leading minus signs in the value negate pairwise, so "-4" works
// and "--4" is 4 again.
func (p *exprParser) reference(at Position) (int64, error) {
	s, err := p.x.expand(at, p.resolve)
	if err != nil {
		return 0, err
	}
	if !p.resolve {
		return 0, nil
	}
	neg := false
	for strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	v, err := parseInt(s)
	if err != nil {
		return 0, errAt(ErrNotANumber, at, "expansion does not resolve to a number")
	}
	if neg {
		v = -v
	}
	return v, nil
}

// literal consumes a maximal alphanumeric run; validity as a number is
// checked by parseInt afterwards.
func (p *exprParser) literal(first rune) string {
	lit := []rune{first}
	for {
		c := p.x.reader.Get()
		if c == EOF {
			break
		}
		if !isAlnum(c) {
			p.x.reader.Unget()
			break
		}
		lit = append(lit, c)
	}
	return string(lit)
}

// parseInt parses an unsigned integer literal: decimal, octal with a leading
// 0, or hexadecimal with a leading 0x or 0X.
func parseInt(s string) (int64, error) {
	switch {
	case s == "" || s[0] == '+' || s[0] == '-':
		return 0, strconv.ErrSyntax
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		return strconv.ParseInt(s[2:], 16, 64)
	case s[0] == '0':
		return strconv.ParseInt(s, 8, 64)
	default:
		return strconv.ParseInt(s, 10, 64)
	}
}
