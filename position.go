package expanding

import "fmt"

// Position identifies a location in a source. It is attached to tokens and
// errors for diagnostics.
type Position struct {
	File   string
	Line   int // 1-based; 0 marks the end of the input
	Column int // 1-based rune offset on the line
}

func (p Position) String() string {
	if p.Line <= 0 {
		return p.File + ":EOF"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}
