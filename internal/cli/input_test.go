package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/codeflow/pkg/catalog"
	"github.com/bastiangx/codeflow/pkg/suggest"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func newEngine() *suggest.Engine {
	c := catalog.New()
	for _, m := range []string{"push_back", "pop_back", "size"} {
		c.Add("vector", m)
	}
	e := suggest.NewEngine(0)
	e.LoadCatalog(c)
	e.AddKeywords([]string{"int", "include", "return"})
	return e
}

func run(t *testing.T, e suggest.Suggester, showScores bool, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	h := NewInputHandlerIO(e, 60, 5, showScores, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, h.Start())
	return out.String()
}

func TestPrefixQuery(t *testing.T) {
	out := run(t, newEngine(), true, "in")
	assert.Contains(t, out, "2 suggestions for 'in':")
	assert.Contains(t, out, " 1. int")
	assert.Contains(t, out, " 2. include")
	assert.Contains(t, out, "keyword")
	assert.Contains(t, out, "0.9")
}

func TestHideScores(t *testing.T) {
	out := run(t, newEngine(), false, "ret")
	assert.Contains(t, out, "1. return")
	assert.NotContains(t, out, "1.0")
}

func TestLoadAndContext(t *testing.T) {
	src := filepath.Join(t.TempDir(), "main.cpp")
	require.NoError(t, os.WriteFile(src, []byte("#include <vector>\nvector<int> nums;\n"), 0o644))

	e := newEngine()
	out := run(t, e, false,
		":load "+src,
		":ctx nums",
		"p",
		":ctx",
		":stats",
	)
	assert.Contains(t, out, "1 symbols, includes vector")
	assert.Contains(t, out, "context set to nums")
	assert.Contains(t, out, "nums> ")
	assert.Contains(t, out, "1. pop_back")
	assert.Contains(t, out, "2. push_back")
	assert.Contains(t, out, "context cleared")
	assert.Contains(t, out, "symbols:   1")
	assert.Regexp(t, `nums\S* \S*vector`, out)
	assert.Equal(t, map[string]string{"nums": "vector"}, e.GetSymbolTable())
}

func TestListAllMethods(t *testing.T) {
	src := filepath.Join(t.TempDir(), "main.cpp")
	require.NoError(t, os.WriteFile(src, []byte("#include <vector>\nvector<int> nums;\n"), 0o644))

	out := run(t, newEngine(), false, ":load "+src, ":ctx nums", ".")
	assert.Contains(t, out, "3 suggestions for '':")
	assert.Contains(t, out, " 1. size")
	assert.Contains(t, out, " 2. pop_back")
	assert.Contains(t, out, " 3. push_back")

	out = run(t, newEngine(), false, ".")
	assert.Contains(t, out, "'.' needs a context")
	assert.NotContains(t, out, "suggestions for")
}

func TestContextWithoutInclude(t *testing.T) {
	out := run(t, newEngine(), false, ":ctx vector", "p")
	assert.Contains(t, out, "no suggestions for 'p'")
}

func TestBadInput(t *testing.T) {
	out := run(t, newEngine(), false,
		"a.b",
		strings.Repeat("x", 61),
		":load",
		":load /does/not/exist.cpp",
		":bogus",
	)
	assert.Contains(t, out, `not an identifier: "a.b"`)
	assert.Contains(t, out, "prefix too long (61 > 60)")
	assert.Contains(t, out, "usage: :load <file>")
	assert.Contains(t, out, "cannot read /does/not/exist.cpp")
	assert.Contains(t, out, "unknown command :bogus")
}

func TestQuitStopsReading(t *testing.T) {
	out := run(t, newEngine(), false, ":quit", "int")
	assert.NotContains(t, out, "suggestions for")
}
