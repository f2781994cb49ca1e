package suggest

import (
	"regexp"
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/bastiangx/codeflow/internal/utils"
)

var (
	includeRe = regexp.MustCompile(`#include\s*<\s*([a-z_]+)\s*>`)
	declRe    = regexp.MustCompile(`\b(vector|stack|queue|deque|map|unordered_map|set|unordered_set|string|list|forward_list|priority_queue|array|bitset)(?:<[^>]*>)?\s+(\w+)\s*[=;({]`)
)

// UpdateSymbols rebuilds the symbol table and the included-library set from
// code. Both are replaced, never merged. A name declared twice keeps its
// last type.
func (e *Engine) UpdateSymbols(code string) {
	included := make(map[string]struct{})
	for _, m := range includeRe.FindAllStringSubmatch(code, -1) {
		included[m[1]] = struct{}{}
	}

	symbols := make(map[string]string)
	for _, m := range declRe.FindAllStringSubmatch(code, -1) {
		symbols[m[2]] = m[1]
	}

	index := patricia.NewTrie()
	for name, typ := range symbols {
		index.Set(patricia.Prefix(name), typ)
	}

	e.mu.Lock()
	e.included = included
	e.symbols = symbols
	e.symIndex = index
	e.mu.Unlock()
}

// GetSymbolCount is the number of declared variables.
func (e *Engine) GetSymbolCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.symbols)
}

// GetIncludedLibraries returns the included header names, sorted.
func (e *Engine) GetIncludedLibraries() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.includedLocked()
}

// GetSymbolTable returns a copy of the variable -> type table.
func (e *Engine) GetSymbolTable() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.symbolTableLocked()
}

// IsHeaderIncluded reports whether <name> was included.
func (e *Engine) IsHeaderIncluded(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.included[name]
	return ok
}

// CompleteSymbols returns declared variables whose name starts with prefix.
// The description carries the declared type.
func (e *Engine) CompleteSymbols(prefix string, maxResults int) []Suggestion {
	if maxResults <= 0 {
		maxResults = e.defaultLimit
	}

	var out []Suggestion
	visit := func(p patricia.Prefix, item patricia.Item) error {
		typ, _ := item.(string)
		out = append(out, Suggestion{Text: string(p), Kind: KindVariable, Description: typ})
		return nil
	}

	e.mu.Lock()
	if prefix == "" {
		_ = e.symIndex.Visit(visit)
	} else {
		_ = e.symIndex.VisitSubtree(patricia.Prefix(prefix), visit)
	}
	e.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return truncate(Rank(out), maxResults)
}

// objectBeforeDot returns the identifier ending at the nearest '.' before
// cursor, or "" if there is none.
func objectBeforeDot(code string, cursor int) string {
	if cursor > len(code) {
		cursor = len(code)
	}
	dot := cursor - 1
	for dot >= 0 && code[dot] != '.' {
		dot--
	}
	if dot < 0 {
		return ""
	}
	start := dot
	for start > 0 && utils.IsIdentByte(code[start-1]) {
		start--
	}
	return code[start:dot]
}
