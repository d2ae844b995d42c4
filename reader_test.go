package expanding

import (
	"errors"
	"strings"
	"testing"
)

func TestReaderPositions(t *testing.T) {
	r := NewReader(strings.NewReader("ab\ncd\n"), "test.ini")

	if got := r.At().String(); got != "test.ini:1:1" {
		t.Errorf("At() = %q, want %q", got, "test.ini:1:1")
	}
	if c := r.Get(); c != 'a' {
		t.Errorf("Get() = %q, want %q", c, 'a')
	}
	if got := r.At().String(); got != "test.ini:1:2" {
		t.Errorf("At() = %q, want %q", got, "test.ini:1:2")
	}

	for _, want := range "b\ncd\n" {
		if c := r.Get(); c != want {
			t.Fatalf("Get() = %q, want %q", c, want)
		}
	}
	if !r.IsEOF() {
		t.Error("IsEOF() = false, want true")
	}
	if c := r.Get(); c != EOF {
		t.Errorf("Get() at end = %q, want EOF", c)
	}
	if got := r.At().String(); got != "test.ini:EOF" {
		t.Errorf("At() at end = %q, want %q", got, "test.ini:EOF")
	}
}

func TestReaderDefaultName(t *testing.T) {
	r := NewReader(strings.NewReader("x"), "")
	if got := r.At().String(); got != "<UNKNOWN>:1:1" {
		t.Errorf("At() = %q, want %q", got, "<UNKNOWN>:1:1")
	}
}

func TestReaderUngetRoundTrip(t *testing.T) {
	// Reading runes and ungetting the same number of times must restore
	// the position exactly, even across a line boundary.
	r := NewReader(strings.NewReader("ab\ncd\n"), "test.ini")

	first := make([]rune, 0, 4)
	for i := 0; i < 4; i++ {
		first = append(first, r.Get())
	}
	if got := string(first); got != "ab\nc" {
		t.Fatalf("read %q, want %q", got, "ab\nc")
	}
	for i := 0; i < 4; i++ {
		r.Unget()
	}
	if got := r.At().String(); got != "test.ini:1:1" {
		t.Errorf("At() after rewind = %q, want %q", got, "test.ini:1:1")
	}
	for i, want := range first {
		if c := r.Get(); c != want {
			t.Errorf("reread %d: Get() = %q, want %q", i, c, want)
		}
	}
}

func TestReaderUngetBeyondWindow(t *testing.T) {
	// The reader retains two completed lines besides the current one.
	// From the start of line 4 the lines 3 and 2 can be rewound; one more
	// unget leaves the window and panics.
	r := NewReader(strings.NewReader("a\nb\nc\nd\n"), "test.ini")
	for r.At().Line != 4 {
		r.Get()
	}
	for i := 0; i < 4; i++ {
		r.Unget()
	}
	defer func() {
		if recover() == nil {
			t.Error("Unget() beyond the window did not panic")
		}
	}()
	r.Unget()
}

func TestReaderGetQuoted(t *testing.T) {
	tests := []struct {
		input string
		want  rune
	}{
		{`\n`, '\n'},
		{`\r`, '\r'},
		{`\t`, '\t'},
		{`\\`, '\\'},
		{`\"`, '"'},
		{`\$`, '$'},
		{"\\u0041", 'A'},
		{"\\u00e9", 'é'},
		{"\\u2603", '☃'},
		{`\101`, 'A'},
		{`\060`, '0'},
		{`\8`, '8'},
		{`\4`, '4'},
		{`A`, 'A'},
		{`é`, 'é'},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input), "test")
			c, err := r.GetQuoted()
			if err != nil {
				t.Fatalf("GetQuoted() error: %v", err)
			}
			if c != tt.want {
				t.Errorf("GetQuoted() = %q, want %q", c, tt.want)
			}
		})
	}
}

func TestReaderGetQuotedErrors(t *testing.T) {
	tests := []string{`\`, `\u00`, `\u00g1`, `\18`, `\1`, `\0a0`}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			r := NewReader(strings.NewReader(input), "test")
			if _, err := r.GetQuoted(); !errors.Is(err, ErrBadEscape) {
				t.Errorf("GetQuoted() error = %v, want ErrBadEscape", err)
			}
		})
	}
}

func TestReaderEscapeRoundTrip(t *testing.T) {
	// Decoding the escaped form of a string reproduces it exactly.
	const want = "a\tb\nc\rdé$"
	const encoded = `a\tb\nc\rdé\$`

	r := NewReader(strings.NewReader(encoded), "test")
	var got []rune
	for {
		c, err := r.GetQuoted()
		if err != nil {
			t.Fatalf("GetQuoted() error: %v", err)
		}
		if c == EOF {
			break
		}
		got = append(got, c)
	}
	if string(got) != want {
		t.Errorf("decoded %q, want %q", string(got), want)
	}
}

func TestReaderErrPlainEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""), "empty")
	if !r.IsEOF() {
		t.Error("IsEOF() = false, want true")
	}
	if err := r.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}
