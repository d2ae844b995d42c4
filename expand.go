package expanding

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// Modifier transforms a resolved variable value inside a braced expansion.
// The position names the expansion site for error reporting.
type Modifier func(value string, at Position) (string, error)

// maxDepth bounds the nesting of ${...} and $(...) forms.
const maxDepth = 64

// Expander substitutes $NAME, ${NAME:modifiers|default} and $(expression)
// constructs read from a shared Reader. The zero value is not usable; build
// one with NewExpander.
type Expander struct {
	reader   *Reader
	resolver Resolver
	mods     map[string]Modifier
	depth    int
}

// NewExpander builds an expander over r with the standard modifiers
// installed. A nil resolver falls back to the process environment.
func NewExpander(r *Reader, res Resolver) *Expander {
	if res == nil {
		res = EnvResolver{}
	}
	e := &Expander{reader: r, resolver: res, mods: make(map[string]Modifier, len(stdModifiers))}
	for name, fn := range stdModifiers {
		e.mods[name] = fn
	}
	return e
}

// AddModifier registers fn under name, replacing any modifier already using
// that name.
func (e *Expander) AddModifier(name string, fn Modifier) {
	e.mods[name] = fn
}

// Expand performs a single expansion with the reader positioned immediately
// after a '$'. at names the position of the '$' for error reporting. Absent
// variables expand to the empty string, except inside $(...) where they fail
// arithmetic evaluation.
func (e *Expander) Expand(at Position) (string, error) {
	return e.expand(at, true)
}

// expand dispatches on the rune after the '$'. With resolve false the
// construct is consumed and syntax-checked but nothing is looked up or
// computed; this is how default values of resolved variables are skipped.
func (e *Expander) expand(at Position, resolve bool) (string, error) {
	if e.depth >= maxDepth {
		return "", errAt(ErrTooDeep, at, "expansion nested too deeply")
	}
	e.depth++
	defer func() { e.depth-- }()

	switch c := e.reader.Get(); c {
	case '{':
		return e.expandBraced(at, resolve)
	case '(':
		return e.evalExpr(at, resolve)
	case EOF:
		return "", errAt(ErrSyntax, at, "cannot find variable name")
	default:
		e.reader.Unget()
	}

	name, value, ok := e.variable(resolve)
	if name == "" {
		return "", errAt(ErrSyntax, at, "cannot find variable name")
	}
	if !ok {
		return "", nil
	}
	return value, nil
}

// variable reads a name and resolves it. With resolve false the lookup is
// skipped entirely, so consuming an unused default has no side effects.
func (e *Expander) variable(resolve bool) (name, value string, ok bool) {
	name = e.resolver.ReadName(e.reader)
	if name == "" || !resolve {
		return name, "", false
	}
	value, ok = e.resolver.Lookup(name)
	return name, value, ok
}

// expandBraced handles ${NAME}, ${NAME:mod,...} and ${NAME:mod,...|default}
// with the reader just past the '{'. Modifiers apply to resolved values
// only, never to the default. The whole form must close before the end of
// the line.
func (e *Expander) expandBraced(at Position, resolve bool) (string, error) {
	_, value, ok := e.variable(resolve)

	var mods []Modifier
	c := e.reader.Get()
	if c == ':' {
		for c = ','; c == ','; {
			modAt := e.reader.At()
			var name []rune
			for c = e.reader.Get(); c != EOF && isAlnum(c); c = e.reader.Get() {
				name = append(name, c)
			}
			fn, known := e.mods[string(name)]
			if !known {
				return "", errAt(ErrUnknownModifier, modAt, "unknown modifier %q", string(name))
			}
			mods = append(mods, fn)
		}
	}

	switch c {
	case '|':
		def, err := e.untilClosing(at, resolve && !ok)
		if err != nil {
			return "", err
		}
		if !resolve {
			return "", nil
		}
		if ok {
			return e.applyMods(value, mods, at)
		}
		return def, nil
	case '}':
		if !resolve || !ok {
			return "", nil
		}
		return e.applyMods(value, mods, at)
	case EOF:
		return "", errAt(ErrUnterminated, at, "unexpected end of input in variable expansion")
	case '\n':
		return "", errAt(ErrUnterminated, at, "unterminated variable expansion")
	}
	return "", errAt(ErrSyntax, e.reader.At(), "expected '}' in variable expansion, got %q", c)
}

// untilClosing consumes a default value up to the closing '}', decoding
// escapes and handling nested expansions. With resolve false the nested
// expansions are consumed without being resolved.
func (e *Expander) untilClosing(at Position, resolve bool) (string, error) {
	var content []rune
	for {
		pos := e.reader.At()
		c := e.reader.Get()
		switch c {
		case '}':
			return string(content), nil
		case EOF:
			return "", errAt(ErrUnterminated, at, "unexpected end of input in default value")
		case '\n':
			return "", errAt(ErrUnterminated, at, "unterminated default value")
		case '$':
			s, err := e.expand(pos, resolve)
			if err != nil {
				return "", err
			}
			content = append(content, []rune(s)...)
		case '\\':
			e.reader.Unget()
			dec, err := e.reader.GetQuoted()
			if err != nil {
				return "", err
			}
			content = append(content, dec)
		default:
			content = append(content, c)
		}
	}
}

func (e *Expander) applyMods(value string, mods []Modifier, at Position) (string, error) {
	for _, fn := range mods {
		v, err := fn(value, at)
		if err != nil {
			return "", err
		}
		value = v
	}
	return value, nil
}

// Expand substitutes $-expansions and backslash escapes throughout s, using
// res to resolve variable references (the process environment when res is
// nil). s is treated like the body of a double-quoted value, except that raw
// newlines are allowed.
func Expand(s string, res Resolver) (string, error) {
	r := NewReader(strings.NewReader(s), "")
	e := NewExpander(r, res)
	var content []rune
	for {
		pos := r.At()
		c := r.Get()
		switch c {
		case EOF:
			return string(content), nil
		case '$':
			sub, err := e.Expand(pos)
			if err != nil {
				return "", err
			}
			content = append(content, []rune(sub)...)
		case '\\':
			r.Unget()
			dec, err := r.GetQuoted()
			if err != nil {
				return "", err
			}
			content = append(content, dec)
		default:
			content = append(content, c)
		}
	}
}

// Standard modifiers. Duration scaling accepts a positive integer with an
// optional unit suffix and yields a bare number in the target resolution.
var stdModifiers = map[string]Modifier{
	"s":    toSeconds,
	"ms":   toMilliseconds,
	"xml":  func(v string, _ Position) (string, error) { return xmlEscape(v, false), nil },
	"attr": func(v string, _ Position) (string, error) { return xmlEscape(v, true), nil },
	"uri":  func(v string, _ Position) (string, error) { return url.QueryEscape(v), nil },
	"sql":  func(v string, _ Position) (string, error) { return strings.ReplaceAll(v, "'", "''"), nil },
}

var (
	secondsPerUnit = map[string]int64{"": 1, "s": 1, "m": 60, "h": 3600}
	millisPerUnit  = map[string]int64{"": 1, "ms": 1, "s": 1000, "m": 60000, "h": 3600000}
)

func toSeconds(v string, at Position) (string, error) {
	return scaleDuration(v, secondsPerUnit, at)
}

func toMilliseconds(v string, at Position) (string, error) {
	return scaleDuration(v, millisPerUnit, at)
}

func scaleDuration(v string, units map[string]int64, at Position) (string, error) {
	i := 0
	for i < len(v) && v[i] >= '0' && v[i] <= '9' {
		i++
	}
	scale, ok := units[v[i:]]
	if i == 0 || v[0] == '0' || !ok {
		return "", errAt(ErrBadDuration, at, "%q is not a duration", v)
	}
	n, err := strconv.ParseInt(v[:i], 10, 64)
	if err != nil {
		return "", errAt(ErrBadDuration, at, "%q is not a duration", v)
	}
	return strconv.FormatInt(n*scale, 10), nil
}

// xmlEscape escapes &, < and >, plus the double quote when attr is set.
// encoding/xml escapes a wider set, which would change the emitted values.
func xmlEscape(s string, attr bool) string {
	var b strings.Builder
	for _, c := range s {
		switch {
		case c == '&':
			b.WriteString("&amp;")
		case c == '<':
			b.WriteString("&lt;")
		case c == '>':
			b.WriteString("&gt;")
		case c == '"' && attr:
			b.WriteString("&quot;")
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func isAlnum(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}
