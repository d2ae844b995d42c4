package expanding

import (
	"fmt"
	"unicode"
)

// Type classifies a Token. The synthetic types at the end of the list match
// by category or by content property; they are only meaningful in TokensAre
// patterns and are never emitted by the tokenizer.
type Type int

const (
	TokenEOF Type = iota
	TokenNewline
	TokenWhitespace
	TokenIdent
	TokenString
	TokenNumber
	TokenSection

	// One-character tokens, enabled per tokenizer configuration.
	TokenEquals
	TokenDot
	TokenComma
	TokenColon
	TokenSemicolon
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenCaret
	TokenAmp
	TokenLess
	TokenGreater
	TokenQuestion
	TokenBang

	// Synthetic pattern types.
	TokenEOL           // NEWLINE or EOF
	TokenAnyWhitespace // WHITESPACE or NEWLINE
	TokenWord          // any token whose content contains no whitespace
)

var typeNames = map[Type]string{
	TokenEOF:        "EOF",
	TokenNewline:    "NEWLINE",
	TokenWhitespace: "WHITESPACE",
	TokenIdent:      "IDENTIFIER",
	TokenString:     "STRING",
	TokenNumber:     "NUMBER",
	TokenSection:    "SECTION",

	TokenEquals:    "EQUALS",
	TokenDot:       "DOT",
	TokenComma:     "COMMA",
	TokenColon:     "COLON",
	TokenSemicolon: "SEMICOLON",
	TokenLParen:    "LPAREN",
	TokenRParen:    "RPAREN",
	TokenLBrace:    "LBRACE",
	TokenRBrace:    "RBRACE",
	TokenLBracket:  "LBRACKET",
	TokenRBracket:  "RBRACKET",
	TokenPlus:      "PLUS",
	TokenMinus:     "MINUS",
	TokenStar:      "STAR",
	TokenSlash:     "SLASH",
	TokenPercent:   "PERCENT",
	TokenCaret:     "CARET",
	TokenAmp:       "AMP",
	TokenLess:      "LESS",
	TokenGreater:   "GREATER",
	TokenQuestion:  "QUESTION",
	TokenBang:      "BANG",

	TokenEOL:           "EOL",
	TokenAnyWhitespace: "ANY-WHITESPACE",
	TokenWord:          "WORD",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Token is an immutable (type, content, position) triple produced by the
// tokenizer. Content has all escape decoding and $-expansion applied.
type Token struct {
	Type    Type
	Content string
	At      Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.At, t.Type, t.Content)
}

// Is reports whether the token matches want. Besides exact type equality it
// honors the synthetic types, and TokenNumber additionally matches any token
// whose content is shaped like an integer literal, so expanded or quoted
// text can still be matched as a number.
func (t Token) Is(want Type) bool {
	switch want {
	case TokenEOL:
		return t.Type == TokenNewline || t.Type == TokenEOF
	case TokenAnyWhitespace:
		return t.Type == TokenWhitespace || t.Type == TokenNewline
	case TokenWord:
		return isWord(t.Content)
	case TokenNumber:
		return t.Type == TokenNumber || isNumber(t.Content)
	}
	return t.Type == want
}

// isWord reports whether s is non-empty and free of whitespace.
func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if unicode.IsSpace(c) {
			return false
		}
	}
	return true
}

// isNumber reports whether s is a decimal, octal or hexadecimal integer
// literal, with an optional sign.
func isNumber(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	_, err := parseInt(s)
	return err == nil
}

// Pattern is one term of a TokensAre sequence: a bare Type, a set of
// alternatives built with AnyOf, or a Skip run.
type Pattern interface {
	matches(t Token) bool
}

func (t Type) matches(tok Token) bool { return tok.Is(t) }

type anyOf []Type

func (a anyOf) matches(tok Token) bool {
	for _, t := range a {
		if tok.Is(t) {
			return true
		}
	}
	return false
}

// AnyOf matches one token of any of the given types.
func AnyOf(types ...Type) Pattern { return anyOf(types) }

type skip struct{ p Pattern }

func (s skip) matches(tok Token) bool { return s.p.matches(tok) }

// Skip matches zero or more consecutive tokens accepted by p. Tokens
// consumed by a Skip are not appended to the TokensAre output. A Skip stops
// at the end of the input even if p accepts EOF.
func Skip(p Pattern) Pattern { return skip{p} }
