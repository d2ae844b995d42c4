package expanding

import (
	"bufio"
	"io"
)

// EOF is returned by Get and GetQuoted when the input is exhausted.
const EOF rune = -1

// line is one buffered input line tagged with its 1-based number.
type line struct {
	num   int
	runes []rune
}

// Reader is a line-buffered rune source with a bounded unget window and
// escape decoding. It retains the two most recently completed lines besides
// the current one, which is the headroom the tokenizer and the expander need
// for backtracking.
//
// Reader is not safe for concurrent use.
type Reader struct {
	src      *bufio.Reader
	name     string
	buf      []line // at most two completed lines plus the current one
	li       int    // index into buf of the line under the cursor
	pos      int    // rune index of the cursor within buf[li]
	lastLine int
	eof      bool
	err      error
}

// NewReader wraps r. The name appears in reported positions; empty defaults
// to "<UNKNOWN>".
func NewReader(r io.Reader, name string) *Reader {
	if name == "" {
		name = "<UNKNOWN>"
	}
	rd := &Reader{src: bufio.NewReader(r), name: name}
	rd.readLine()
	return rd
}

// Name returns the source name used in positions.
func (r *Reader) Name() string { return r.name }

// Err returns the first error encountered while reading the underlying
// source. Plain exhaustion is not an error; it is reported through Get and
// IsEOF.
func (r *Reader) Err() error { return r.err }

func (r *Reader) readLine() {
	if r.eof {
		return
	}
	text, err := r.src.ReadString('\n')
	if err != nil && err != io.EOF {
		r.err = err
	}
	if text == "" {
		r.eof = true
		return
	}
	if len(r.buf) == 3 {
		copy(r.buf, r.buf[1:])
		r.buf = r.buf[:2]
	}
	r.lastLine++
	r.li = len(r.buf)
	r.pos = 0
	r.buf = append(r.buf, line{num: r.lastLine, runes: []rune(text)})
}

// IsEOF reports whether the cursor sits at the end of the input.
func (r *Reader) IsEOF() bool {
	if !r.eof {
		return false
	}
	if r.li >= len(r.buf) {
		return true
	}
	return r.li+1 == len(r.buf) && r.pos == len(r.buf[r.li].runes)
}

// At returns the current position. At the end of the input the position has
// Line zero and prints as "name:EOF".
func (r *Reader) At() Position {
	if r.IsEOF() {
		return Position{File: r.name}
	}
	return Position{File: r.name, Line: r.buf[r.li].num, Column: r.pos + 1}
}

// Get consumes and returns the next rune, or EOF when the input is
// exhausted. Reading at EOF is not an error and does not move the cursor, so
// Unget still works afterwards.
func (r *Reader) Get() rune {
	if r.IsEOF() {
		return EOF
	}
	c := r.buf[r.li].runes[r.pos]
	r.pos++
	if r.pos == len(r.buf[r.li].runes) {
		if r.li+1 == len(r.buf) {
			r.readLine()
		} else {
			r.li++
			r.pos = 0
		}
	}
	return c
}

// Unget rewinds the cursor one rune. It may cross line boundaries, but only
// within the two retained lines; rewinding further is a contract violation
// and panics.
func (r *Reader) Unget() {
	r.pos--
	if r.pos < 0 {
		if r.li == 0 {
			panic("expanding: unget beyond buffered lines")
		}
		r.li--
		r.pos = len(r.buf[r.li].runes) - 1
	}
}

// GetQuoted is Get with escape decoding: if the next rune is a backslash it
// consumes the whole escape sequence and returns the decoded rune.
//
//	\n \r \t   the usual control characters
//	\uXXXX     a code point from exactly four hex digits
//	\NNN       a code point from exactly three octal digits, first at most 3
//	\c         any other character c stands for itself
func (r *Reader) GetQuoted() (rune, error) {
	c := r.Get()
	if c != '\\' {
		return c, nil
	}
	at := r.At()
	switch c = r.Get(); {
	case c == EOF:
		return EOF, errAt(ErrBadEscape, at, "dangling escape")
	case c == 'n':
		return '\n', nil
	case c == 'r':
		return '\r', nil
	case c == 't':
		return '\t', nil
	case c == 'u':
		return r.hexEscape(at)
	case c >= '0' && c <= '3':
		return r.octalEscape(at, c)
	}
	return c, nil
}

func (r *Reader) hexEscape(at Position) (rune, error) {
	var v rune
	for i := 0; i < 4; i++ {
		d := hexDigit(r.Get())
		if d < 0 {
			return EOF, errAt(ErrBadEscape, at, "malformed \\u escape")
		}
		v = v<<4 | rune(d)
	}
	return v, nil
}

func (r *Reader) octalEscape(at Position, first rune) (rune, error) {
	v := first - '0'
	for i := 0; i < 2; i++ {
		c := r.Get()
		if c < '0' || c > '7' {
			return EOF, errAt(ErrBadEscape, at, "malformed octal escape")
		}
		v = v<<3 | (c - '0')
	}
	return v, nil
}

func hexDigit(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
