// Package expanding tokenizes configuration text while substituting
// variables, so values like "$HOME/cache" or "${TIMEOUT:s|30}" arrive at the
// caller already resolved.
//
// # Overview
//
// Three layers build on each other:
//
//   - Reader: a line-buffered rune source with positions, a bounded unget
//     window of two lines and backslash escape decoding (GetQuoted).
//   - Expander: substitutes $NAME, ${NAME:modifiers|default} and
//     $(expression) constructs read from a Reader, resolving names through a
//     Resolver.
//   - Tokenizer: classifies the expanded character stream into tokens and
//     offers pattern matching over the resulting token sequence.
//
// # Expansion forms
//
// $NAME substitutes the value of NAME; an absent variable substitutes the
// empty string. ${NAME:mod1,mod2|default} applies modifiers left to right to
// a resolved value and falls back to the default, with escapes and nested
// expansions, when NAME is absent; modifiers never apply to the default. The
// braced form must close before the end of its line. $(expression) evaluates
// integer arithmetic with + - * / %, parentheses, unary minus and the
// binary minimum '<' and maximum '>'; literals are decimal, octal (leading
// 0) or hexadecimal (leading 0x), and nested $-forms supply operands.
//
// The standard modifiers are s and ms (duration scaling to seconds or
// milliseconds), xml and attr (markup escaping), uri (percent-encoding) and
// sql (single-quote doubling). AddModifier installs custom ones.
//
// # Tokens
//
// The tokenizer emits IDENTIFIER, NUMBER, STRING, SECTION, NEWLINE,
// WHITESPACE and EOF tokens plus any enabled one-character tokens. Bare
// words and double-quoted strings decode escapes and expand; single quotes
// are literal with '' for a quote; [name] headers and '#'/';' comments
// follow INI conventions and can be toggled. A WhitespaceMode controls
// whether whitespace is skipped or reported. Once the input is exhausted
// the tokenizer returns EOF tokens forever.
//
// TokensAre matches the upcoming tokens against a pattern sequence,
// consuming them only on a full match, which makes speculative grammar
// matching cheap: a failed match leaves every token buffered.
//
// # Errors
//
// Failures carry a Position and wrap one of the category sentinels
// (ErrSyntax, ErrUnterminated, ErrBadEscape, ErrNotANumber,
// ErrDivisionByZero, ErrUnknownModifier, ErrBadDuration, ErrTooDeep), so
// callers can branch with errors.Is while messages stay specific.
//
// # Concurrency
//
// Readers, expanders and tokenizers are single-goroutine objects.
// Independent instances do not share state unless they share a Reader.
package expanding
