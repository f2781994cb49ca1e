package suggest

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/bastiangx/codeflow/pkg/catalog"
	"github.com/bastiangx/codeflow/pkg/trie"
)

// DefaultMaxResults is used when a query asks for zero or fewer results.
const DefaultMaxResults = 10

// Suggestion kinds.
const (
	KindMethod   = "method"
	KindKeyword  = "keyword"
	KindVariable = "variable"
)

// Suggestion is one completion candidate.
type Suggestion struct {
	Text        string  `json:"text"`
	Kind        string  `json:"kind"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score"`
}

// ContextKind says how a query's context name is interpreted.
type ContextKind int

const (
	// ContextAuto treats the name as a variable when it is in the symbol
	// table and as a type otherwise. An empty name falls back to the
	// identifier before the nearest '.' ahead of the cursor.
	ContextAuto ContextKind = iota
	// ContextVariable looks the name up in the symbol table only.
	ContextVariable
	// ContextType uses the name as a container type directly.
	ContextType
)

// ContextRef names the thing being completed against.
type ContextRef struct {
	Kind ContextKind
	Name string
}

// ByVariable references a declared variable.
func ByVariable(name string) ContextRef { return ContextRef{Kind: ContextVariable, Name: name} }

// ByType references a container type.
func ByType(name string) ContextRef { return ContextRef{Kind: ContextType, Name: name} }

// Query is a single completion request.
type Query struct {
	Prefix     string
	Context    ContextRef
	Code       string
	Cursor     int
	MaxResults int
}

// Stats is a snapshot of the engine state.
type Stats struct {
	SymbolCount       int               `json:"symbolCount"`
	IncludedLibraries []string          `json:"includedLibraries"`
	SymbolTable       map[string]string `json:"symbolTable"`
	CatalogTypes      int               `json:"catalogTypes"`
	TrieWords         int               `json:"trieWords"`
}

// Engine answers completion queries. All state sits behind one mutex, so
// a query never sees a half-rebuilt symbol table.
type Engine struct {
	mu sync.Mutex

	trie     *trie.Trie
	catalog  *catalog.Catalog
	symbols  map[string]string
	included map[string]struct{}
	symIndex *patricia.Trie

	defaultLimit int
}

// NewEngine returns an empty engine. A limit of zero or less selects
// DefaultMaxResults.
func NewEngine(defaultLimit int) *Engine {
	if defaultLimit <= 0 {
		defaultLimit = DefaultMaxResults
	}
	return &Engine{
		trie:         trie.New(),
		catalog:      catalog.New(),
		symbols:      make(map[string]string),
		included:     make(map[string]struct{}),
		symIndex:     patricia.NewTrie(),
		defaultLimit: defaultLimit,
	}
}

// LoadSTLData replaces the catalog with the one at path and adds every
// method name to the trie. A missing or unreadable file leaves the engine
// as it was.
func (e *Engine) LoadSTLData(path string) {
	c, err := catalog.ReadFile(path)
	if err != nil {
		log.Debugf("catalog not loaded: %v", err)
		return
	}
	e.LoadCatalog(c)
	log.Debugf("loaded %d catalog types from %s", c.Len(), path)
}

// LoadCatalog replaces the catalog. Words already in the trie are kept.
func (e *Engine) LoadCatalog(c *catalog.Catalog) {
	if c == nil {
		c = catalog.New()
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.catalog = c
	c.Each(func(_, method string) {
		e.trie.Insert(method, 1, 0)
	})
}

// LoadKeywords adds every keyword in the file at path to the trie. A missing
// file is ignored.
func (e *Engine) LoadKeywords(path string) {
	words, err := catalog.ReadKeywords(path)
	if err != nil {
		log.Debugf("keywords not loaded: %v", err)
		return
	}
	e.AddKeywords(words)
	log.Debugf("loaded %d keywords from %s", len(words), path)
}

// AddKeywords inserts words into the trie with frequency 1.
func (e *Engine) AddKeywords(words []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, w := range words {
		e.trie.Insert(w, 1, 0)
	}
}

// ReloadSTLData is LoadSTLData for a catalog that changed on disk. The
// catalog is replaced, but words already in the trie keep their frequency
// and recency, so earlier Accept calls survive the reload.
func (e *Engine) ReloadSTLData(path string) {
	c, err := catalog.ReadFile(path)
	if err != nil {
		log.Warnf("catalog reload failed: %v", err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.catalog = c
	c.Each(func(_, method string) {
		e.insertNewLocked(method)
	})
	log.Debugf("reloaded %d catalog types from %s", c.Len(), path)
}

// ReloadKeywords adds keywords from path that the trie does not know yet.
func (e *Engine) ReloadKeywords(path string) {
	words, err := catalog.ReadKeywords(path)
	if err != nil {
		log.Warnf("keyword reload failed: %v", err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, w := range words {
		e.insertNewLocked(w)
	}
}

func (e *Engine) insertNewLocked(word string) {
	if _, ok := e.trie.Lookup(word); !ok {
		e.trie.Insert(word, 1, 0)
	}
}

// GetSuggestions resolves contextType as a variable first and as a type
// second. With no contextType, the identifier before the nearest '.' ahead
// of cursor is used as the variable.
func (e *Engine) GetSuggestions(prefix, contextType, code string, cursor, maxResults int) []Suggestion {
	return e.Suggest(Query{
		Prefix:     prefix,
		Context:    ContextRef{Kind: ContextAuto, Name: contextType},
		Code:       code,
		Cursor:     cursor,
		MaxResults: maxResults,
	})
}

// Suggest answers q. When the context resolves to a catalog type, only that
// type's methods are offered, and only if the type's header is included;
// otherwise nothing is returned. Any other context falls back to a trie
// search over keywords and methods.
func (e *Engine) Suggest(q Query) []Suggestion {
	e.mu.Lock()
	defer e.mu.Unlock()

	limit := q.MaxResults
	if limit <= 0 {
		limit = e.defaultLimit
	}

	typ := e.resolveType(q)
	if typ != "" && e.catalog.Has(typ) {
		if _, ok := e.included[typ]; !ok {
			return []Suggestion{}
		}
		var out []Suggestion
		for _, m := range e.catalog.Methods(typ) {
			if strings.HasPrefix(m, q.Prefix) {
				out = append(out, Suggestion{Text: m, Kind: KindMethod, Description: typ})
			}
		}
		return truncate(Rank(out), limit)
	}

	raw := limit
	if raw <= math.MaxInt/2 {
		raw *= 2
	}
	words := e.trie.Search(q.Prefix, raw)
	out := make([]Suggestion, 0, len(words))
	for _, w := range words {
		out = append(out, Suggestion{Text: w, Kind: KindKeyword})
	}
	return truncate(Rank(out), limit)
}

func (e *Engine) resolveType(q Query) string {
	name := q.Context.Name
	switch q.Context.Kind {
	case ContextVariable:
		return e.symbols[name]
	case ContextType:
		return name
	}

	if name == "" {
		if q.Cursor <= 0 {
			return ""
		}
		obj := objectBeforeDot(q.Code, q.Cursor)
		if obj == "" {
			return ""
		}
		return e.symbols[obj]
	}
	if t, ok := e.symbols[name]; ok {
		return t
	}
	return name
}

// Accept bumps text's frequency and recency so it ranks higher among its
// siblings. It reports false if text is not a known word.
func (e *Engine) Accept(text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trie.Touch(text)
}

// Stats returns a copy of the engine state.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		SymbolCount:       len(e.symbols),
		IncludedLibraries: e.includedLocked(),
		SymbolTable:       e.symbolTableLocked(),
		CatalogTypes:      e.catalog.Len(),
		TrieWords:         e.trie.Len(),
	}
}

func (e *Engine) includedLocked() []string {
	libs := make([]string, 0, len(e.included))
	for lib := range e.included {
		libs = append(libs, lib)
	}
	sort.Strings(libs)
	return libs
}

func (e *Engine) symbolTableLocked() map[string]string {
	table := make(map[string]string, len(e.symbols))
	for k, v := range e.symbols {
		table[k] = v
	}
	return table
}

func truncate(s []Suggestion, n int) []Suggestion {
	if len(s) > n {
		return s[:n]
	}
	if s == nil {
		return []Suggestion{}
	}
	return s
}
