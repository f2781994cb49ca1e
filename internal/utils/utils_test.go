package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func TestTOMLRoundTrip(t *testing.T) {
	type section struct {
		Limit int    `toml:"limit"`
		Name  string `toml:"name"`
	}
	type doc struct {
		Engine section `toml:"engine"`
	}

	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, SaveTOMLFile(doc{Engine: section{Limit: 7, Name: "x"}}, path))

	var got doc
	require.NoError(t, LoadTOMLFile(path, &got))
	assert.Equal(t, 7, got.Engine.Limit)

	raw, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	engine, ok := ExtractSection(raw, "engine")
	require.True(t, ok)

	n, ok := ExtractInt64(engine, "limit")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	s, ok := ExtractString(engine, "name")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	f, ok := ExtractFloat(engine, "limit")
	assert.True(t, ok)
	assert.InDelta(t, 7.0, f, 1e-9)

	_, ok = ExtractBool(engine, "limit")
	assert.False(t, ok)
	_, ok = ExtractSection(raw, "missing")
	assert.False(t, ok)
}

func TestParseTOMLWithRecoveryMissing(t *testing.T) {
	_, err := ParseTOMLWithRecovery(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, EnsureDir(nested))
	res := CheckDirStatus(nested)
	assert.True(t, res.Exists)
	assert.True(t, res.Writable)

	assert.Equal(t, file, GetAbsolutePath(file))
	assert.True(t, filepath.IsAbs(GetAbsolutePath("rel.txt")))
	assert.Equal(t, "", GetAbsolutePath(""))
}

func TestIsIdentifier(t *testing.T) {
	for _, s := range []string{"push_back", "v", "_x", "x2", "2nd"} {
		assert.True(t, IsIdentifier(s), s)
	}
	for _, s := range []string{"", "a.b", "push back", "é", "a-b"} {
		assert.False(t, IsIdentifier(s), s)
	}
}

func TestResolveDataFile(t *testing.T) {
	dir := t.TempDir()
	pr := &PathResolver{
		executableDir: filepath.Join(dir, "bin"),
		configDir:     filepath.Join(dir, "config"),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	kw := filepath.Join(dir, "data", "cpp_keywords.txt")
	require.NoError(t, os.WriteFile(kw, []byte("int\n"), 0o644))

	// found next to the executable's parent
	assert.Equal(t, kw, pr.ResolveDataFile("data/cpp_keywords.txt"))
	// found by base name under a data dir
	assert.Equal(t, kw, pr.ResolveDataFile("elsewhere/cpp_keywords.txt"))

	abs := filepath.Join(dir, "nothing.json")
	assert.Equal(t, abs, pr.ResolveDataFile(abs))

	missing := pr.ResolveDataFile("no/such.json")
	assert.True(t, filepath.IsAbs(missing))
	assert.Equal(t, "such.json", filepath.Base(missing))
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("APPDATA", `C:\appdata`)
	got := getConfigDir("/home/u")
	assert.Equal(t, "codeflow", filepath.Base(got))
}
