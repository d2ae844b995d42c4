package expanding

import (
	"os"
	"unicode"
)

// Resolver supplies variable values during expansion.
//
// ReadName consumes a variable name from the reader and leaves the cursor on
// the first rune after it; it returns "" when no name rune is present.
// Lookup maps a name to its value; absence is not an error.
type Resolver interface {
	ReadName(r *Reader) string
	Lookup(name string) (string, bool)
}

// EnvResolver resolves variables from the process environment. It is the
// resolver used when none is configured.
type EnvResolver struct{}

func (EnvResolver) ReadName(r *Reader) string { return ReadName(r) }

func (EnvResolver) Lookup(name string) (string, bool) { return os.LookupEnv(name) }

// MapResolver resolves variables from a fixed map.
type MapResolver map[string]string

func (m MapResolver) ReadName(r *Reader) string { return ReadName(r) }

func (m MapResolver) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// ReadName consumes a maximal run of name runes (letters, digits and the
// underscore) from r, pushing back the first rune that does not belong.
// Resolvers with conventional name syntax can delegate to it.
func ReadName(r *Reader) string {
	var name []rune
	for {
		c := r.Get()
		if c == EOF {
			break
		}
		if !isNameRune(c) {
			r.Unget()
			break
		}
		name = append(name, c)
	}
	return string(name)
}

func isNameRune(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
