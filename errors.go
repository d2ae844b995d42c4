package expanding

import (
	"errors"
	"fmt"
)

// Category sentinels for failures reported by the reader, the expander and
// the tokenizer. Match them with errors.Is; the concrete *Error carries the
// position and a human-readable message.
var (
	ErrBadEscape       = errors.New("malformed escape sequence")
	ErrUnterminated    = errors.New("unexpected end of input")
	ErrSyntax          = errors.New("syntax error")
	ErrNotANumber      = errors.New("not a number")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrUnknownModifier = errors.New("unknown modifier")
	ErrBadDuration     = errors.New("not a duration")
	ErrTooDeep         = errors.New("expansion nested too deeply")
)

// Error is a lexing or expansion failure tied to a source position.
type Error struct {
	At      Position
	Message string
	kind    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at: %s", e.Message, e.At)
}

func (e *Error) Unwrap() error { return e.kind }

func errAt(kind error, at Position, format string, args ...any) error {
	return &Error{At: at, Message: fmt.Sprintf(format, args...), kind: kind}
}
