/*
Package server implements msgpack IPC for C++ code completion.

The server reads a stream of msgpack maps from stdin and writes one msgpack map
per request to stdout. Nothing else is written to stdout; logs go to stderr.

# IPC

The first message written is always

	{"status": "ready"}

Every request carries an id and a command. A missing id is replaced with a
generated one and echoed back.

Completion requests send the buffer, the cursor and the prefix being typed.
The buffer is rescanned for includes and declarations before the query runs:

	{"id": "req_1", "cmd": "complete", "p": "pu", "code": "#include <vector>\nvector<int> v;\nv.pu", "cur": 36, "l": 10}

ctx names the variable or type being completed against. With ck set to "var"
or "type" the name is only treated as that; otherwise a declared variable
wins over a type of the same name. Without ctx the identifier before the
nearest '.' ahead of the cursor is used.

	{"id": "req_2", "cmd": "complete", "p": "", "ctx": "v", "ck": "var"}

The response lists suggestions best first:

	{"id": "req_1", "s": [{"w": "push_back", "k": "method", "d": "vector", "s": 1.0, "r": 1}], "c": 1, "t": 85}

t is the time spent in the engine, in microseconds.

Other commands:

	{"id": "1", "cmd": "symbols", "p": "v"}          declared variables starting with p
	{"id": "2", "cmd": "stats"}                      symbol table and included headers
	{"id": "3", "cmd": "accept", "w": "push_back"}   record a picked suggestion
	{"id": "4", "cmd": "run", "code": "..."}         compile and run the buffer
	{"id": "5", "cmd": "health"}

# Errors

Failed requests get a CompletionError:

	{"id": "req_1", "e": "prefix exceeds maximum length of 60 characters: invalid request", "c": 400}

Codes are 400 for malformed requests, 404 for unknown commands, 429 when the
rate limit is hit and 500 for everything else.
*/
package server

// Request is any client message. Fields a command does not use are ignored.
type Request struct {
	ID          string `msgpack:"id"`
	Command     string `msgpack:"cmd"`
	Prefix      string `msgpack:"p,omitempty"`
	Context     string `msgpack:"ctx,omitempty"`
	ContextKind string `msgpack:"ck,omitempty"` // "", "var" or "type"
	Code        string `msgpack:"code,omitempty"`
	Cursor      int    `msgpack:"cur,omitempty"`
	Limit       int    `msgpack:"l,omitempty"`
	Word        string `msgpack:"w,omitempty"` // for "accept"
}

// CompletionSuggestion - one suggestion
type CompletionSuggestion struct {
	Word        string  `msgpack:"w"`
	Kind        string  `msgpack:"k"`
	Description string  `msgpack:"d,omitempty"`
	Score       float64 `msgpack:"s"`
	Rank        uint16  `msgpack:"r"`
}

// CompletionResponse - answer to "complete" and "symbols"
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// StatsResponse - answer to "stats"
type StatsResponse struct {
	ID                string            `msgpack:"id"`
	SymbolCount       int               `msgpack:"symbol_count"`
	IncludedLibraries []string          `msgpack:"included_libraries"`
	SymbolTable       map[string]string `msgpack:"symbol_table"`
	CatalogTypes      int               `msgpack:"catalog_types"`
	TrieWords         int               `msgpack:"trie_words"`
}

// AcceptResponse - answer to "accept"
type AcceptResponse struct {
	ID       string `msgpack:"id"`
	Accepted bool   `msgpack:"ok"`
}

// RunResponse - answer to "run"
type RunResponse struct {
	ID        string `msgpack:"id"`
	Success   bool   `msgpack:"success"`
	Output    string `msgpack:"output"`
	Error     string `msgpack:"error"`
	ExitCode  int    `msgpack:"exit_code"`
	TimeTaken int64  `msgpack:"t"`
}

// StatusResponse - ready and health messages
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// CompletionError holds basic error information for a failed request
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
