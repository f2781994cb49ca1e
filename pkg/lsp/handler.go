// Package lsp serves completions to editors over the Language Server Protocol.
//
// Documents are synced in full. Completion after "name." offers the methods of
// name's container type; anywhere else it offers declared variables followed
// by keywords and method names.
package lsp

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/bastiangx/codeflow/internal/logger"
	"github.com/bastiangx/codeflow/pkg/suggest"
)

// Name is reported to clients in the initialize response.
const Name = "codeflow"

// maxDocuments caps how many open documents are kept per client.
const maxDocuments = 100

// Handler implements the LSP methods codeflow supports.
type Handler struct {
	engine     suggest.Suggester
	maxResults int
	version    string
	log        *log.Logger

	mu        sync.Mutex
	documents map[string]string
	shutdown  bool
}

// NewHandler creates a handler on top of engine.
func NewHandler(engine suggest.Suggester, maxResults int, version string) *Handler {
	if maxResults <= 0 {
		maxResults = suggest.DefaultMaxResults
	}
	return &Handler{
		engine:     engine,
		maxResults: maxResults,
		version:    version,
		log:        logger.New("lsp"),
		documents:  make(map[string]string),
	}
}

// Protocol wires the handler into a glsp protocol handler.
func (h *Handler) Protocol() *protocol.Handler {
	return &protocol.Handler{
		Initialize:             h.Initialize,
		Initialized:            h.Initialized,
		Shutdown:               h.Shutdown,
		SetTrace:               h.SetTrace,
		TextDocumentDidOpen:    h.TextDocumentDidOpen,
		TextDocumentDidChange:  h.TextDocumentDidChange,
		TextDocumentDidClose:   h.TextDocumentDidClose,
		TextDocumentCompletion: h.TextDocumentCompletion,
	}
}

// Serve runs the language server on stdin/stdout until the client goes away.
func Serve(h *Handler) error {
	srv := glspserver.NewServer(h.Protocol(), Name, false)
	if err := srv.RunStdio(); err != nil {
		return errors.Wrap(err, "language server stopped")
	}
	return nil
}

// Initialize handles LSP initialize request
func (h *Handler) Initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params != nil && params.ClientInfo != nil {
		h.log.Info("client initializing", "client", params.ClientInfo.Name)
	}

	syncKind := protocol.TextDocumentSyncKindFull
	openClose := true
	version := h.version

	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"."},
			},
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: &openClose,
				Change:    &syncKind,
			},
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &version,
		},
	}, nil
}

// Initialized is called after client receives InitializeResult
func (h *Handler) Initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	h.log.Debug("client initialized")
	return nil
}

// Shutdown handles LSP shutdown request
func (h *Handler) Shutdown(_ *glsp.Context) error {
	h.mu.Lock()
	h.shutdown = true
	h.mu.Unlock()
	h.log.Info("client shutting down")
	return nil
}

func (h *Handler) SetTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen stores the document and rescans its symbols.
func (h *Handler) TextDocumentDidOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	uri := string(params.TextDocument.URI)
	if _, exists := h.documents[uri]; !exists && len(h.documents) >= maxDocuments {
		h.log.Warn("document limit reached", "uri", uri, "open", len(h.documents))
		return errors.Newf("document limit reached (%d documents open)", maxDocuments)
	}

	h.documents[uri] = params.TextDocument.Text
	h.engine.UpdateSymbols(params.TextDocument.Text)
	h.log.Debug("document opened", "uri", uri, "length", len(params.TextDocument.Text))
	return nil
}

// TextDocumentDidChange replaces the document and rescans its symbols.
func (h *Handler) TextDocumentDidChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	uri := string(params.TextDocument.URI)
	changed := false
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			h.documents[uri] = c.Text
			changed = true
		case protocol.TextDocumentContentChangeEvent:
			// only advertised full sync, but some clients send ranged events
			// without a range
			if c.Range == nil {
				h.documents[uri] = c.Text
				changed = true
			}
		}
	}
	if changed {
		h.engine.UpdateSymbols(h.documents[uri])
	}
	return nil
}

// TextDocumentDidClose forgets the document.
func (h *Handler) TextDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.documents, string(params.TextDocument.URI))
	return nil
}

// TextDocumentCompletion answers a completion request at the given position.
func (h *Handler) TextDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic in completion", "panic", r, "uri", params.TextDocument.URI)
			result = &protocol.CompletionList{Items: []protocol.CompletionItem{}}
			err = nil
		}
	}()

	h.mu.Lock()
	defer h.mu.Unlock()

	text, ok := h.documents[string(params.TextDocument.URI)]
	if !ok || h.shutdown {
		return &protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil
	}

	offset := offsetAt(text, params.Position)
	prefix, object := prefixAt(text, offset)

	// The engine holds one symbol table; rescan in case another document
	// was edited since.
	h.engine.UpdateSymbols(text)

	var found []suggest.Suggestion
	if object != "" {
		found = h.engine.Suggest(suggest.Query{
			Prefix:     prefix,
			Context:    suggest.ContextRef{Name: object},
			Code:       text,
			Cursor:     offset,
			MaxResults: h.maxResults,
		})
	} else {
		found = h.freeText(prefix)
	}

	h.log.Debug("completion", "prefix", prefix, "object", object, "count", len(found))
	return &protocol.CompletionList{Items: toItems(found)}, nil
}

// freeText lists variables first, then keywords and methods, without
// duplicates.
func (h *Handler) freeText(prefix string) []suggest.Suggestion {
	vars := h.engine.CompleteSymbols(prefix, h.maxResults)
	words := h.engine.Suggest(suggest.Query{Prefix: prefix, MaxResults: h.maxResults})

	seen := make(map[string]bool, len(vars))
	out := make([]suggest.Suggestion, 0, len(vars)+len(words))
	for _, s := range append(vars, words...) {
		if seen[s.Text] || len(out) == h.maxResults {
			continue
		}
		seen[s.Text] = true
		out = append(out, s)
	}
	return out
}

func toItems(found []suggest.Suggestion) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, len(found))
	for i, s := range found {
		sortText := fmt.Sprintf("%04d", i)
		items[i] = protocol.CompletionItem{
			Label:    s.Text,
			Kind:     completionKind(s.Kind),
			Detail:   stringPtrOrNil(s.Description),
			SortText: &sortText,
		}
	}
	return items
}

func completionKind(kind string) *protocol.CompletionItemKind {
	var k protocol.CompletionItemKind
	switch kind {
	case suggest.KindMethod:
		k = protocol.CompletionItemKindMethod
	case suggest.KindKeyword:
		k = protocol.CompletionItemKindKeyword
	case suggest.KindVariable:
		k = protocol.CompletionItemKindVariable
	default:
		k = protocol.CompletionItemKindText
	}
	return &k
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
