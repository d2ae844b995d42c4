package conf_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DBCDK/expanding"
	"github.com/DBCDK/expanding/conf"
)

const sample = `; sample configuration
mode = fast

[server]
host = "db.example.com"
port = 8080

[client]
host = localhost
retry : 3
`

func TestParse(t *testing.T) {
	doc, err := conf.Parse(strings.NewReader(sample), "sample.ini")
	require.NoError(t, err)

	sections := doc.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "", sections[0].Name)
	assert.Equal(t, "server", sections[1].Name)
	assert.Equal(t, "client", sections[2].Name)

	v, ok := doc.Get("", "mode")
	require.True(t, ok)
	assert.Equal(t, "fast", v)

	v, ok = doc.Get("server", "host")
	require.True(t, ok)
	assert.Equal(t, "db.example.com", v)

	v, ok = doc.Get("client", "retry")
	require.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok = doc.Get("server", "missing")
	assert.False(t, ok)
	_, ok = doc.Get("missing", "host")
	assert.False(t, ok)

	server, ok := doc.Section("server")
	require.True(t, ok)
	assert.Equal(t, []string{"host", "port"}, server.Keys())
}

func TestParseExpansion(t *testing.T) {
	input := "[paths]\ncache = \"$HOME/cache\"\ntimeout = \"${TIMEOUT:s|30}\"\n"
	vars := expanding.MapResolver{"HOME": "/home/u"}

	doc, err := conf.Parse(strings.NewReader(input), "test.ini", conf.WithResolver(vars))
	require.NoError(t, err)

	v, _ := doc.Get("paths", "cache")
	assert.Equal(t, "/home/u/cache", v)
	v, _ = doc.Get("paths", "timeout")
	assert.Equal(t, "30", v)
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("CONF_TEST_HOST", "envhost")

	doc, err := conf.Parse(strings.NewReader("host = $CONF_TEST_HOST\n"), "test.ini")
	require.NoError(t, err)

	v, _ := doc.Get("", "host")
	assert.Equal(t, "envhost", v)
}

func TestParseDuplicateKeys(t *testing.T) {
	input := "[a]\nx = 1\nx = 2\n"

	doc, err := conf.Parse(strings.NewReader(input), "dup.ini")
	require.NoError(t, err)
	v, _ := doc.Get("a", "x")
	assert.Equal(t, "2", v, "without strict mode the later value wins")

	_, err = conf.Parse(strings.NewReader(input), "dup.ini", conf.WithStrict())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `key "x" of section "a" is already set`)
	assert.Contains(t, err.Error(), "dup.ini:3")
}

func TestParseSyntaxError(t *testing.T) {
	_, err := conf.Parse(strings.NewReader("[a]\nwhat?\n"), "bad.ini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.ini:2")
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := conf.Parse(strings.NewReader("k = \"oops\n"), "bad.ini")
	require.Error(t, err)
	assert.ErrorIs(t, err, expanding.ErrUnterminated)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	doc, err := conf.Load(path)
	require.NoError(t, err)
	v, _ := doc.Get("server", "port")
	assert.Equal(t, "8080", v)

	_, err = conf.Load(filepath.Join(t.TempDir(), "nope.ini"))
	require.Error(t, err)
}

func TestDocumentMap(t *testing.T) {
	doc, err := conf.Parse(strings.NewReader(sample), "sample.ini")
	require.NoError(t, err)

	assert.Equal(t, map[string]map[string]string{
		"":       {"mode": "fast"},
		"server": {"host": "db.example.com", "port": "8080"},
		"client": {"host": "localhost", "retry": "3"},
	}, doc.Map())
}

func TestDocumentDecode(t *testing.T) {
	type serverConfig struct {
		Host    string        `json:"host"`
		Port    int           `json:"port"`
		Timeout time.Duration `json:"timeout"`
	}
	type appConfig struct {
		Mode   string       `json:"mode"`
		Server serverConfig `json:"server"`
	}

	input := "mode = fast\n\n[server]\nhost = db\nport = 8080\ntimeout = 30s\n"
	doc, err := conf.Parse(strings.NewReader(input), "test.ini")
	require.NoError(t, err)

	var cfg appConfig
	require.NoError(t, doc.Decode(&cfg))
	assert.Equal(t, "fast", cfg.Mode)
	assert.Equal(t, "db", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
}
