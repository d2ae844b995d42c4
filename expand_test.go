package expanding

import (
	"errors"
	"strings"
	"testing"
)

func TestExpand(t *testing.T) {
	vars := MapResolver{
		"HOME": "/home/u",
		"BAR":  "5",
		"T":    "3h",
		"NAME": "O'Brien",
		"TAG":  `<a href="x">`,
		"PATH": "a b/c",
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "no dollars here", "no dollars here"},
		{"simple", "$HOME/x", "/home/u/x"},
		{"simple absent", "$MISSING/x", "/x"},
		{"braced", "${HOME}/x", "/home/u/x"},
		{"braced absent", "a${MISSING}b", "ab"},
		{"default used", "${FOO|fallback}", "fallback"},
		{"default with nested expansion", "${FOO|prefix-$BAR}", "prefix-5"},
		{"default with escapes", `${FOO|a\tb}`, "a\tb"},
		{"default unused", "${HOME|fallback}", "/home/u"},
		{"nested braced default", "${FOO|${BAZ|deep}}", "deep"},
		{"seconds", "${T:s}", "10800"},
		{"milliseconds", "${T:ms}", "10800000"},
		{"xml", "${TAG:xml}", `&lt;a href="x"&gt;`},
		{"attr", "${TAG:attr}", "&lt;a href=&quot;x&quot;&gt;"},
		{"uri", "${PATH:uri}", "a+b%2Fc"},
		{"sql", "${NAME:sql}", "O''Brien"},
		{"chained modifiers", "${NAME:sql,uri}", "O%27%27Brien"},
		{"modifier with default present", "${T:s|99}", "10800"},
		{"modifier not applied to default", "${FOO:s|not-a-duration}", "not-a-duration"},
		{"escape outside expansion", `a\$HOME`, "a$HOME"},
		{"arithmetic", "$(1 + 2)", "3"},
		{"text around arithmetic", "n=$(2*3)!", "n=6!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.input, vars)
			if err != nil {
				t.Fatalf("Expand(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandErrors(t *testing.T) {
	vars := MapResolver{"T": "soon", "Z": "0x"}

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"no name", "$!", ErrSyntax},
		{"name at end", "$", ErrSyntax},
		{"unknown modifier", "${T:frob}", ErrUnknownModifier},
		{"bad duration", "${T:s}", ErrBadDuration},
		{"truncated duration", "${Z:ms}", ErrBadDuration},
		{"missing brace", "${T", ErrUnterminated},
		{"brace crosses line", "${T\n}", ErrUnterminated},
		{"default crosses line", "${A|x\ny}", ErrUnterminated},
		{"garbage after name", "${T$}", ErrSyntax},
		{"bad escape in default", `${A|\u00zz}`, ErrBadEscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(tt.input, vars)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expand(%q) error = %v, want %v", tt.input, err, tt.want)
			}
			var posErr *Error
			if !errors.As(err, &posErr) {
				t.Errorf("Expand(%q) error carries no position", tt.input)
			}
		})
	}
}

func TestExpandEnvResolver(t *testing.T) {
	t.Setenv("EXPANDING_TEST_VALUE", "from-env")

	got, err := Expand("${EXPANDING_TEST_VALUE}", nil)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if got != "from-env" {
		t.Errorf("Expand() = %q, want %q", got, "from-env")
	}
}

// recordingResolver tracks which names were looked up.
type recordingResolver struct {
	values  map[string]string
	lookups []string
}

func (r *recordingResolver) ReadName(rd *Reader) string { return ReadName(rd) }

func (r *recordingResolver) Lookup(name string) (string, bool) {
	r.lookups = append(r.lookups, name)
	v, ok := r.values[name]
	return v, ok
}

func TestExpandUnusedDefaultHasNoSideEffects(t *testing.T) {
	// When the variable resolves, its default is consumed syntactically
	// but nothing inside it is looked up or computed.
	res := &recordingResolver{values: map[string]string{"FOO": "set"}}

	got, err := Expand("${FOO|12${ABC}$(1/0)3}", res)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if got != "set" {
		t.Errorf("Expand() = %q, want %q", got, "set")
	}
	for _, name := range res.lookups {
		if name == "ABC" {
			t.Error("unused default resolved ABC")
		}
	}
}

func TestExpandCustomModifier(t *testing.T) {
	r := NewReader(strings.NewReader("{GREETING:shout}"), "test")
	e := NewExpander(r, MapResolver{"GREETING": "hello"})
	e.AddModifier("shout", func(v string, _ Position) (string, error) {
		return strings.ToUpper(v), nil
	})

	got, err := e.Expand(r.At())
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if got != "HELLO" {
		t.Errorf("Expand() = %q, want %q", got, "HELLO")
	}
}

func TestExpandTooDeep(t *testing.T) {
	// Each level resolves to another expansion of itself via the default
	// clause; the depth guard has to cut the recursion off.
	var input strings.Builder
	for i := 0; i < 100; i++ {
		input.WriteString("${A|")
	}
	input.WriteString("x")
	for i := 0; i < 100; i++ {
		input.WriteString("}")
	}

	_, err := Expand(input.String(), MapResolver{})
	if !errors.Is(err, ErrTooDeep) {
		t.Errorf("Expand() error = %v, want ErrTooDeep", err)
	}
}

func TestDurationModifiers(t *testing.T) {
	tests := []struct {
		value   string
		mod     string
		want    string
		wantErr bool
	}{
		{"90", "s", "90", false},
		{"90s", "s", "90", false},
		{"2m", "s", "120", false},
		{"3h", "s", "10800", false},
		{"90", "ms", "90", false},
		{"90ms", "ms", "90", false},
		{"2s", "ms", "2000", false},
		{"2m", "ms", "120000", false},
		{"3h", "ms", "10800000", false},
		{"3d", "s", "", true},
		{"0s", "s", "", true},
		{"s", "s", "", true},
		{"90ms", "s", "", true},
		{"", "ms", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.value+":"+tt.mod, func(t *testing.T) {
			got, err := Expand("${V:"+tt.mod+"}", MapResolver{"V": tt.value})
			if tt.wantErr {
				if !errors.Is(err, ErrBadDuration) {
					t.Errorf("error = %v, want ErrBadDuration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
