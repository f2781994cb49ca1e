// Package suggest is the suggestion engine: it owns the trie, the catalog,
// the symbol table and the included-library set, and answers completion
// queries against them.
package suggest

// Suggester is the engine surface used by the IPC server, the language
// server and the CLI.
type Suggester interface {
	// GetSuggestions answers a query where contextType may name either a
	// variable or a type.
	GetSuggestions(prefix, contextType, code string, cursor, maxResults int) []Suggestion

	// Suggest answers a query with an explicit context reference.
	Suggest(q Query) []Suggestion

	// UpdateSymbols replaces the symbol table and included libraries with
	// what is declared in code.
	UpdateSymbols(code string)

	// CompleteSymbols returns declared variables starting with prefix.
	CompleteSymbols(prefix string, maxResults int) []Suggestion

	// Accept records that the user picked text.
	Accept(text string) bool

	// Stats reports the engine's current state.
	Stats() Stats
}
