package expanding

import (
	"bytes"
	"fmt"
	"os"
	"unicode"
)

// WhitespaceMode selects how the tokenizer treats whitespace between tokens.
type WhitespaceMode int

const (
	// WhitespaceNone skips all whitespace silently.
	WhitespaceNone WhitespaceMode = iota
	// WhitespaceNewline skips spaces and tabs and emits one NEWLINE token
	// per newline. The default; line-oriented formats want this.
	WhitespaceNewline
	// WhitespaceAll emits one WHITESPACE token per maximal whitespace run,
	// newlines included.
	WhitespaceAll
	// WhitespaceBoth emits WHITESPACE tokens for space and tab runs and one
	// NEWLINE token per newline.
	WhitespaceBoth
)

// singleTokens is the full set of recognizable one-character tokens. A
// tokenizer enables a subset of them; disabled characters lex as ordinary
// word runes.
var singleTokens = map[rune]Type{
	'=': TokenEquals,
	'.': TokenDot,
	',': TokenComma,
	':': TokenColon,
	';': TokenSemicolon,
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'[': TokenLBracket,
	']': TokenRBracket,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'%': TokenPercent,
	'^': TokenCaret,
	'&': TokenAmp,
	'<': TokenLess,
	'>': TokenGreater,
	'?': TokenQuestion,
	'!': TokenBang,
}

// Tokenizer turns a character stream into classified, fully expanded tokens.
// Tokens carry the position of their first character. After the end of the
// input it keeps producing EOF tokens.
//
// A Tokenizer is not safe for concurrent use; independent instances are.
type Tokenizer struct {
	reader   *Reader
	expander *Expander
	mode     WhitespaceMode
	tokens   map[rune]Type
	sections bool
	semi     bool
	pending  []Token

	resolver Resolver
	mods     map[string]Modifier
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithResolver sets the variable resolver used for $-expansion. The default
// resolves from the process environment.
func WithResolver(res Resolver) Option {
	return func(t *Tokenizer) { t.resolver = res }
}

// WithWhitespace selects the whitespace policy. The default is
// WhitespaceNewline.
func WithWhitespace(mode WhitespaceMode) Option {
	return func(t *Tokenizer) { t.mode = mode }
}

// WithTokens enables exactly the one-character tokens named by chars,
// replacing the default set, which is "=". Characters outside the
// recognized set are ignored.
func WithTokens(chars string) Option {
	return func(t *Tokenizer) {
		t.tokens = make(map[rune]Type, len(chars))
		for _, c := range chars {
			if typ, ok := singleTokens[c]; ok {
				t.tokens[c] = typ
			}
		}
	}
}

// WithAllTokens enables every one-character token. Brackets then lex as
// plain tokens, so section headers are not recognized.
func WithAllTokens() Option {
	return func(t *Tokenizer) {
		t.tokens = make(map[rune]Type, len(singleTokens))
		for c, typ := range singleTokens {
			t.tokens[c] = typ
		}
	}
}

// WithSections toggles [name] section header recognition. Enabled by
// default; when disabled, '[' lexes as an ordinary word rune unless enabled
// as a one-character token.
func WithSections(on bool) Option {
	return func(t *Tokenizer) { t.sections = on }
}

// WithSemicolonComments toggles the ';' comment style. Enabled by default;
// '#' comments are always recognized. A disabled ';' lexes as an ordinary
// word rune unless enabled as a one-character token.
func WithSemicolonComments(on bool) Option {
	return func(t *Tokenizer) { t.semi = on }
}

// WithModifier registers an extra expansion modifier by name.
func WithModifier(name string, fn Modifier) Option {
	return func(t *Tokenizer) {
		if t.mods == nil {
			t.mods = make(map[string]Modifier)
		}
		t.mods[name] = fn
	}
}

// New builds a tokenizer over r. Without options it resolves variables from
// the environment, emits NEWLINE tokens, enables '=' as the only
// one-character token and recognizes sections and both comment styles.
func New(r *Reader, opts ...Option) *Tokenizer {
	t := &Tokenizer{
		reader:   r,
		mode:     WhitespaceNewline,
		tokens:   map[rune]Type{'=': TokenEquals},
		sections: true,
		semi:     true,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.expander = NewExpander(r, t.resolver)
	for name, fn := range t.mods {
		t.expander.AddModifier(name, fn)
	}
	return t
}

// OpenINI reads path eagerly and returns a tokenizer preconfigured for INI
// syntax: sections, ';' and '#' comments, '=' and ':' assignment tokens and
// significant newlines. No file handle is retained.
func OpenINI(path string, opts ...Option) (*Tokenizer, error) {
	return open(path, append([]Option{WithTokens("=:")}, opts...))
}

// OpenFull reads path eagerly and returns a tokenizer with every
// one-character token enabled, for tooling that wants to see all
// punctuation.
func OpenFull(path string, opts ...Option) (*Tokenizer, error) {
	return open(path, append([]Option{WithAllTokens()}, opts...))
}

func open(path string, opts []Option) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open tokenizer: %w", err)
	}
	return New(NewReader(bytes.NewReader(data), path), opts...), nil
}

// Next consumes and returns the next token.
func (t *Tokenizer) Next() (Token, error) {
	tok, err := t.Peek()
	if err != nil {
		return Token{}, err
	}
	t.pending = t.pending[1:]
	return tok, nil
}

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() (Token, error) {
	tok, err := t.tokenAt(0)
	if err != nil {
		return Token{}, err
	}
	return tok, nil
}

// IsEOF reports whether tokenization has reached the end of the input. It
// may scan ahead one token.
func (t *Tokenizer) IsEOF() bool {
	tok, err := t.Peek()
	return err == nil && tok.Type == TokenEOF
}

// TokensAre matches the upcoming tokens against patterns. On a full match
// the tokens are consumed and, when out is non-nil, appended to *out, except
// those covered by a Skip pattern. On a mismatch nothing is consumed:
// whatever was tokenized during the attempt stays buffered for later calls.
// Errors raised while tokenizing ahead are returned as they are found.
func (t *Tokenizer) TokensAre(out *[]Token, patterns ...Pattern) (bool, error) {
	var taken []Token
	i := 0
	for _, p := range patterns {
		if s, ok := p.(skip); ok {
			for {
				tok, err := t.tokenAt(i)
				if err != nil {
					return false, err
				}
				if !s.matches(tok) {
					break
				}
				i++
				if tok.Type == TokenEOF {
					break
				}
			}
			continue
		}
		tok, err := t.tokenAt(i)
		if err != nil {
			return false, err
		}
		if !p.matches(tok) {
			return false, nil
		}
		taken = append(taken, tok)
		i++
	}
	if out != nil {
		*out = append(*out, taken...)
	}
	t.pending = t.pending[i:]
	return true, nil
}

// tokenAt fills the lookahead buffer up to index i and returns the token
// there. After the end of the input every fill produces another EOF token.
func (t *Tokenizer) tokenAt(i int) (Token, error) {
	for len(t.pending) <= i {
		tok, err := t.nextToken()
		if err != nil {
			return Token{}, err
		}
		t.pending = append(t.pending, tok)
	}
	return t.pending[i], nil
}

// nextToken scans one token from the reader. Comments run to the end of the
// line; the newline itself is left for the whitespace policy, so a trailing
// comment does not swallow the NEWLINE token of its line.
func (t *Tokenizer) nextToken() (Token, error) {
	for {
		at := t.reader.At()
		c := t.reader.Get()

		if c == EOF {
			if err := t.reader.Err(); err != nil {
				return Token{}, fmt.Errorf("read %s: %w", t.reader.Name(), err)
			}
			return Token{Type: TokenEOF, At: at}, nil
		}
		if unicode.IsSpace(c) {
			if tok, ok := t.scanSpace(at, c); ok {
				return tok, nil
			}
			continue
		}
		if c == '#' || (c == ';' && t.semi) {
			t.skipComment()
			continue
		}
		if typ, ok := t.tokens[c]; ok {
			return Token{Type: typ, Content: string(c), At: at}, nil
		}
		if c == '[' && t.sections {
			return t.scanSection(at)
		}
		if c == '"' {
			return t.scanDoubleQuote(at)
		}
		if c == '\'' {
			return t.scanSingleQuote(at)
		}
		t.reader.Unget()
		return t.scanWord(at)
	}
}

// scanSpace handles one whitespace rune according to the active policy. The
// boolean reports whether a token was produced.
func (t *Tokenizer) scanSpace(at Position, first rune) (Token, bool) {
	newline := func() (Token, bool) {
		return Token{Type: TokenNewline, Content: "\n", At: at}, true
	}
	switch t.mode {
	case WhitespaceNone:
		return Token{}, false
	case WhitespaceNewline:
		if first == '\n' {
			return newline()
		}
		return Token{}, false
	case WhitespaceBoth:
		if first == '\n' {
			return newline()
		}
		return Token{Type: TokenWhitespace, Content: t.spaceRun(first, false), At: at}, true
	default: // WhitespaceAll
		return Token{Type: TokenWhitespace, Content: t.spaceRun(first, true), At: at}, true
	}
}

// spaceRun consumes a maximal whitespace run starting with first. With
// newlines false the run stops in front of a '\n'.
func (t *Tokenizer) spaceRun(first rune, newlines bool) string {
	content := []rune{first}
	for {
		c := t.reader.Get()
		if c == EOF {
			break
		}
		if !unicode.IsSpace(c) || (c == '\n' && !newlines) {
			t.reader.Unget()
			break
		}
		content = append(content, c)
	}
	return string(content)
}

// skipComment consumes up to, but not including, the terminating newline.
func (t *Tokenizer) skipComment() {
	for {
		c := t.reader.Get()
		if c == EOF {
			return
		}
		if c == '\n' {
			t.reader.Unget()
			return
		}
	}
}

// scanSection reads a [name] header with the '[' already consumed. Section
// names exclude whitespace; the content is taken verbatim, without
// expansion.
func (t *Tokenizer) scanSection(at Position) (Token, error) {
	var content []rune
	for {
		c := t.reader.Get()
		switch {
		case c == EOF:
			return Token{}, errAt(ErrUnterminated, at, "unexpected end of input in section header")
		case c == ']':
			return Token{Type: TokenSection, Content: string(content), At: at}, nil
		case unicode.IsSpace(c):
			return Token{}, errAt(ErrSyntax, at, "whitespace in section header")
		}
		content = append(content, c)
	}
}

// scanDoubleQuote reads a "..." string with the opening quote already
// consumed. Escapes are decoded and $-expansions applied.
func (t *Tokenizer) scanDoubleQuote(at Position) (Token, error) {
	var content []rune
	for {
		pos := t.reader.At()
		c := t.reader.Get()
		switch c {
		case EOF:
			return Token{}, errAt(ErrUnterminated, at, "unterminated double-quoted string")
		case '"':
			return Token{Type: TokenString, Content: string(content), At: at}, nil
		case '$':
			s, err := t.expander.Expand(pos)
			if err != nil {
				return Token{}, err
			}
			content = append(content, []rune(s)...)
		case '\\':
			t.reader.Unget()
			dec, err := t.reader.GetQuoted()
			if err != nil {
				return Token{}, err
			}
			content = append(content, dec)
		default:
			content = append(content, c)
		}
	}
}

// scanSingleQuote reads a '...' string with the opening quote already
// consumed. The only escape is a doubled quote; everything else, dollar
// signs and backslashes included, is literal.
func (t *Tokenizer) scanSingleQuote(at Position) (Token, error) {
	var content []rune
	for {
		c := t.reader.Get()
		if c == EOF {
			return Token{}, errAt(ErrUnterminated, at, "unterminated single-quoted string")
		}
		if c == '\'' {
			c = t.reader.Get()
			if c != '\'' {
				if c != EOF {
					t.reader.Unget()
				}
				return Token{Type: TokenString, Content: string(content), At: at}, nil
			}
		}
		content = append(content, c)
	}
}

// scanWord reads a bare word: a maximal run of runes up to whitespace, a
// comment or quote character, an enabled one-character token, or a section
// opener. $-expansions are spliced into the word as it is scanned and
// backslash escapes are decoded via GetQuoted; neither output is ever
// rescanned, so a decoded tab or escaped '$' stays part of the word. The
// result is classified as NUMBER when it is shaped like an integer literal,
// IDENTIFIER otherwise.
func (t *Tokenizer) scanWord(at Position) (Token, error) {
	var content []rune
	for {
		pos := t.reader.At()
		c := t.reader.Get()
		if c == EOF {
			break
		}
		if c == '$' {
			s, err := t.expander.Expand(pos)
			if err != nil {
				return Token{}, err
			}
			content = append(content, []rune(s)...)
			continue
		}
		if c == '\\' {
			t.reader.Unget()
			dec, err := t.reader.GetQuoted()
			if err != nil {
				return Token{}, err
			}
			content = append(content, dec)
			continue
		}
		if unicode.IsSpace(c) || t.breakRune(c) {
			t.reader.Unget()
			break
		}
		content = append(content, c)
	}
	text := string(content)
	typ := TokenIdent
	if isNumber(text) {
		typ = TokenNumber
	}
	return Token{Type: typ, Content: text, At: at}, nil
}

// breakRune reports whether c is never an ordinary word rune. Comment,
// quote, expansion and escape characters always qualify; '[' and ';' only
// while their syntax is enabled; enabled one-character tokens as well.
// scanWord handles '$' and '\\' inline before consulting this.
func (t *Tokenizer) breakRune(c rune) bool {
	if _, ok := t.tokens[c]; ok {
		return true
	}
	switch c {
	case '#', '"', '\'', '$', '\\':
		return true
	case '[':
		return t.sections
	case ';':
		return t.semi
	}
	return false
}
