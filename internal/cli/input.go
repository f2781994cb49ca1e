// Package cli is an interactive prompt for trying completions by hand.
//
// Plain input is a prefix query. A lone '.' lists every method of the
// current context. Lines starting with ':' are commands:
//
//	:load <file>   scan a C++ file for includes and declarations
//	:ctx [name]    complete against a variable or type name, or clear it
//	:stats         print the engine state
//	:quit          leave
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/codeflow/internal/utils"
	"github.com/bastiangx/codeflow/pkg/suggest"
)

// InputHandler reads queries line by line and prints ranked suggestions.
type InputHandler struct {
	engine       suggest.Suggester
	in           io.Reader
	out          *printer
	maxPrefix    int
	suggestLimit int

	context string
	code    string
}

// NewInputHandler creates a prompt on stdin/stdout.
func NewInputHandler(engine suggest.Suggester, maxPrefix, limit int, showScores bool) *InputHandler {
	return NewInputHandlerIO(engine, maxPrefix, limit, showScores, os.Stdin, os.Stdout)
}

// NewInputHandlerIO is NewInputHandler with explicit streams.
func NewInputHandlerIO(engine suggest.Suggester, maxPrefix, limit int, showScores bool, in io.Reader, out io.Writer) *InputHandler {
	if limit <= 0 {
		limit = suggest.DefaultMaxResults
	}
	return &InputHandler{
		engine:       engine,
		in:           in,
		out:          newPrinter(out, showScores),
		maxPrefix:    maxPrefix,
		suggestLimit: limit,
	}
}

// Start runs the prompt until :quit or end of input.
func (h *InputHandler) Start() error {
	h.out.banner()
	scanner := bufio.NewScanner(h.in)
	for {
		h.out.prompt(h.context)
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !h.handleInput(line) {
			return nil
		}
	}
}

// handleInput processes one line. It returns false when the prompt should
// stop.
func (h *InputHandler) handleInput(line string) bool {
	if !strings.HasPrefix(line, ":") {
		h.query(line)
		return true
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "q", "quit", "exit":
		return false
	case "load":
		h.load(arg)
	case "ctx":
		h.context = arg
		if arg == "" {
			h.out.info("context cleared")
		} else {
			h.out.info("context set to " + arg)
		}
	case "stats":
		h.out.stats(h.engine.Stats())
	case "help":
		h.out.help()
	default:
		h.out.errorf("unknown command :%s (try :help)", cmd)
	}
	return true
}

func (h *InputHandler) load(path string) {
	if path == "" {
		h.out.errorf("usage: :load <file>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		h.out.errorf("cannot read %s: %v", path, err)
		return
	}
	h.code = string(data)
	h.engine.UpdateSymbols(h.code)
	st := h.engine.Stats()
	h.out.info(fmt.Sprintf("loaded %s: %d symbols, includes %s",
		path, st.SymbolCount, strings.Join(st.IncludedLibraries, ", ")))
}

func (h *InputHandler) query(prefix string) {
	if h.maxPrefix > 0 && len(prefix) > h.maxPrefix {
		h.out.errorf("prefix too long (%d > %d)", len(prefix), h.maxPrefix)
		return
	}
	switch {
	case prefix == ".":
		if h.context == "" {
			h.out.errorf("'.' needs a context, set one with :ctx <name>")
			return
		}
		prefix = ""
	case !utils.IsIdentifier(prefix):
		h.out.errorf("not an identifier: %q", prefix)
		return
	}

	start := time.Now()
	found := h.engine.Suggest(suggest.Query{
		Prefix:     prefix,
		Context:    suggest.ContextRef{Name: h.context},
		Code:       h.code,
		MaxResults: h.suggestLimit,
	})
	log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(found) == 0 {
		h.out.info(fmt.Sprintf("no suggestions for '%s'", prefix))
		return
	}
	h.out.suggestions(prefix, found)
}
