package lsp

import (
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/bastiangx/codeflow/pkg/catalog"
	"github.com/bastiangx/codeflow/pkg/suggest"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

const uri = "file:///tmp/main.cpp"

func newHandler(t *testing.T) (*Handler, *suggest.Engine) {
	t.Helper()
	c := catalog.New()
	for _, m := range []string{"push_back", "pop_back", "size"} {
		c.Add("vector", m)
	}
	e := suggest.NewEngine(0)
	e.LoadCatalog(c)
	e.AddKeywords([]string{"return", "int", "void"})
	return NewHandler(e, 0, "test"), e
}

func open(t *testing.T, h *Handler, text string) {
	t.Helper()
	require.NoError(t, h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "cpp", Version: 1, Text: text},
	}))
}

func complete(t *testing.T, h *Handler, line, char uint32) []protocol.CompletionItem {
	t.Helper()
	res, err := h.TextDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: char},
		},
	})
	require.NoError(t, err)
	list, ok := res.(*protocol.CompletionList)
	require.True(t, ok)
	return list.Items
}

func labels(items []protocol.CompletionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestInitialize(t *testing.T) {
	h, _ := newHandler(t)
	res, err := h.Initialize(nil, &protocol.InitializeParams{})
	require.NoError(t, err)

	result, ok := res.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, []string{"."}, result.Capabilities.CompletionProvider.TriggerCharacters)
	assert.Equal(t, Name, result.ServerInfo.Name)
	assert.Equal(t, "test", *result.ServerInfo.Version)

	p := h.Protocol()
	assert.NotNil(t, p.TextDocumentCompletion)
	assert.NotNil(t, p.TextDocumentDidChange)
}

func TestMemberCompletion(t *testing.T) {
	h, e := newHandler(t)
	open(t, h, "#include <vector>\nvector<int> nums;\nnums.p")
	assert.Equal(t, 1, e.GetSymbolCount())

	items := complete(t, h, 2, 6)
	assert.Equal(t, []string{"pop_back", "push_back"}, labels(items))
	assert.Equal(t, protocol.CompletionItemKindMethod, *items[0].Kind)
	assert.Equal(t, "vector", *items[0].Detail)
	assert.Equal(t, "0000", *items[0].SortText)
	assert.Equal(t, "0001", *items[1].SortText)
}

func TestMemberCompletionNeedsInclude(t *testing.T) {
	h, _ := newHandler(t)
	open(t, h, "vector<int> nums;\nnums.")
	assert.Empty(t, complete(t, h, 1, 5))
}

func TestFreeTextCompletion(t *testing.T) {
	h, _ := newHandler(t)
	open(t, h, "vector<int> values;\nv")

	items := complete(t, h, 1, 1)
	assert.Equal(t, []string{"values", "void"}, labels(items))
	assert.Equal(t, protocol.CompletionItemKindVariable, *items[0].Kind)
	assert.Equal(t, protocol.CompletionItemKindKeyword, *items[1].Kind)
	assert.Nil(t, items[1].Detail)
}

func TestDidChangeAndClose(t *testing.T) {
	h, e := newHandler(t)
	open(t, h, "int main() {}")
	assert.Zero(t, e.GetSymbolCount())

	require.NoError(t, h.TextDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "#include <vector>\nvector<int> a;\na.s"},
		},
	}))
	assert.Equal(t, 1, e.GetSymbolCount())
	assert.Equal(t, []string{"size"}, labels(complete(t, h, 2, 3)))

	require.NoError(t, h.TextDocumentDidClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Empty(t, complete(t, h, 2, 3))
}

func TestDocumentLimit(t *testing.T) {
	h, _ := newHandler(t)
	for i := 0; i < maxDocuments; i++ {
		require.NoError(t, h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
			TextDocument: protocol.TextDocumentItem{URI: fmt.Sprintf("file:///%d.cpp", i)},
		}))
	}
	err := h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///one-too-many.cpp"},
	})
	assert.Error(t, err)

	// reopening a known document is fine
	assert.NoError(t, h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///0.cpp"},
	}))
}

func TestShutdown(t *testing.T) {
	h, _ := newHandler(t)
	open(t, h, "int x;\nre")
	require.NoError(t, h.Shutdown(nil))
	assert.Empty(t, complete(t, h, 1, 2))
}

func TestOffsetAt(t *testing.T) {
	text := "ab\nc😀d\n\nlast"
	tests := []struct {
		line, char uint32
		want       int
	}{
		{0, 0, 0},
		{0, 2, 2},
		{0, 99, 2},
		{1, 1, 4},
		{1, 3, 8},
		{1, 4, 9},
		{2, 0, 10},
		{3, 4, 15},
		{9, 0, len(text)},
	}
	for _, tt := range tests {
		got := offsetAt(text, protocol.Position{Line: tt.line, Character: tt.char})
		assert.Equal(t, tt.want, got, "line %d char %d", tt.line, tt.char)
	}
}

func TestPrefixAt(t *testing.T) {
	tests := []struct {
		text        string
		offset      int
		prefix, obj string
	}{
		{"v.pu", 4, "pu", "v"},
		{"v.", 2, "", "v"},
		{"my_vec.", 7, "", "my_vec"},
		{"ret", 3, "ret", ""},
		{"x = ret", 7, "ret", ""},
		{"a.b.c", 5, "c", "b"},
		{"", 0, "", ""},
		{"(v).si", 6, "si", ""},
	}
	for _, tt := range tests {
		p, o := prefixAt(tt.text, tt.offset)
		assert.Equal(t, tt.prefix, p, tt.text)
		assert.Equal(t, tt.obj, o, tt.text)
	}
}
