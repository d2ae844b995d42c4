// Package conf loads INI-style configuration files through the expanding
// tokenizer, so values arrive with variables substituted and escapes decoded.
//
// A document is a sequence of sections holding key/value pairs:
//
//	timeout = "${TIMEOUT:s|30}"
//
//	[server]
//	host = db.example.com
//	port = 8080
//
// Keys appearing before the first section header belong to the section with
// the empty name. Section and key order is preserved. Decode maps a document
// onto a caller struct via json tags.
package conf

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/DBCDK/expanding"
	"github.com/go-viper/mapstructure/v2"
)

// Option configures parsing.
type Option func(*parser)

// WithResolver sets the variable resolver used for $-expansion. The default
// resolves from the process environment.
func WithResolver(res expanding.Resolver) Option {
	return func(p *parser) { p.opts = append(p.opts, expanding.WithResolver(res)) }
}

// WithStrict makes a duplicate key within a section a parse error. Without
// it the later value wins.
func WithStrict() Option {
	return func(p *parser) { p.strict = true }
}

// Section is one named group of key/value pairs in document order.
type Section struct {
	Name   string
	keys   []string
	values map[string]string
}

// Keys returns the section's keys in document order.
func (s *Section) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Get returns the value bound to key.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Section) set(key, value string) {
	if _, seen := s.values[key]; !seen {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Document is a parsed configuration file.
type Document struct {
	sections []*Section
	index    map[string]*Section
}

// Sections returns the sections in document order. The unnamed section is
// present only when it has keys.
func (d *Document) Sections() []*Section {
	return append([]*Section(nil), d.sections...)
}

// Section returns the named section.
func (d *Document) Section(name string) (*Section, bool) {
	s, ok := d.index[name]
	return s, ok
}

// Get returns the value of key in the named section.
func (d *Document) Get(section, key string) (string, bool) {
	s, ok := d.index[section]
	if !ok {
		return "", false
	}
	return s.Get(key)
}

func (d *Document) section(name string) *Section {
	if s, ok := d.index[name]; ok {
		return s
	}
	s := &Section{Name: name, values: make(map[string]string)}
	d.sections = append(d.sections, s)
	d.index[name] = s
	return s
}

// Map returns the document as nested maps, suitable for JSON or YAML
// marshalling. Key order is not preserved; use Sections for that.
func (d *Document) Map() map[string]map[string]string {
	out := make(map[string]map[string]string, len(d.sections))
	for _, s := range d.sections {
		kv := make(map[string]string, len(s.keys))
		for _, k := range s.keys {
			kv[k] = s.values[k]
		}
		out[s.Name] = kv
	}
	return out
}

// Decode maps the document onto v, a pointer to a struct or map. Fields are
// addressed by json tag; sections bind to struct fields, the unnamed
// section's keys bind at the top level. Values convert weakly, so "8080"
// satisfies an int field and "30s" a time.Duration.
func (d *Document) Decode(v any) error {
	data := make(map[string]any, len(d.sections))
	for _, s := range d.sections {
		kv := make(map[string]any, len(s.keys))
		for _, k := range s.keys {
			kv[k] = s.values[k]
		}
		if s.Name == "" {
			for k, val := range kv {
				data[k] = val
			}
			continue
		}
		data[s.Name] = kv
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           v,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

type parser struct {
	opts   []expanding.Option
	strict bool
}

// Load reads and parses the file at path.
func Load(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return Parse(bytes.NewReader(data), path, opts...)
}

// Parse reads a configuration document from r. The name identifies the
// source in error messages and token positions.
func Parse(r io.Reader, name string, opts ...Option) (*Document, error) {
	p := &parser{}
	for _, opt := range opts {
		opt(p)
	}
	tz := expanding.New(expanding.NewReader(r, name),
		append([]expanding.Option{expanding.WithTokens("=:")}, p.opts...)...)

	doc := &Document{index: make(map[string]*Section)}
	section := doc.section("")
	for !tz.IsEOF() {
		if ok, err := tz.TokensAre(nil, expanding.TokenNewline); err != nil {
			return nil, err
		} else if ok {
			continue
		}

		var header []expanding.Token
		if ok, err := tz.TokensAre(&header, expanding.TokenSection); err != nil {
			return nil, err
		} else if ok {
			section = doc.section(header[0].Content)
			continue
		}

		var kv []expanding.Token
		ok, err := tz.TokensAre(&kv,
			expanding.TokenWord,
			expanding.AnyOf(expanding.TokenEquals, expanding.TokenColon),
			expanding.AnyOf(expanding.TokenIdent, expanding.TokenNumber, expanding.TokenString),
			expanding.TokenEOL)
		if err != nil {
			return nil, err
		}
		if !ok {
			tok, err := tz.Peek()
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("unexpected %q at: %s", tok.Content, tok.At)
		}

		key := kv[0].Content
		if _, dup := section.Get(key); dup && p.strict {
			return nil, fmt.Errorf("key %q of section %q is already set at: %s",
				key, section.Name, kv[0].At)
		}
		section.set(key, kv[2].Content)
	}

	if len(doc.sections[0].keys) == 0 {
		// Drop the unnamed section when nothing landed in it.
		doc.sections = doc.sections[1:]
		delete(doc.index, "")
	}
	return doc, nil
}
