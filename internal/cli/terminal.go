package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bastiangx/codeflow/pkg/suggest"
)

// printer renders prompt output. Colors follow the terminal behind w, so
// plain buffers get plain text.
type printer struct {
	w          io.Writer
	showScores bool

	word  lipgloss.Style
	dim   lipgloss.Style
	err   lipgloss.Style
	title lipgloss.Style
}

func newPrinter(w io.Writer, showScores bool) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:          w,
		showScores: showScores,
		word:       r.NewStyle().Foreground(lipgloss.Color("75")),
		dim:        r.NewStyle().Faint(true),
		err:        r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}),
		title:      r.NewStyle().Bold(true),
	}
}

func (p *printer) banner() {
	fmt.Fprintln(p.w, p.title.Render("codeflow"), p.dim.Render("type a prefix and press Enter, :help for commands"))
}

func (p *printer) prompt(context string) {
	if context != "" {
		fmt.Fprintf(p.w, "%s> ", context)
		return
	}
	fmt.Fprint(p.w, "> ")
}

func (p *printer) info(msg string) {
	fmt.Fprintln(p.w, p.dim.Render(msg))
}

func (p *printer) errorf(format string, args ...any) {
	fmt.Fprintln(p.w, p.err.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) help() {
	fmt.Fprintln(p.w, strings.Join([]string{
		":load <file>  scan a C++ file for includes and declarations",
		":ctx [name]   complete against a variable or type, empty clears",
		".             list every method of the context",
		":stats        show engine state",
		":quit         exit",
	}, "\n"))
}

func (p *printer) suggestions(prefix string, found []suggest.Suggestion) {
	fmt.Fprintf(p.w, "%d suggestions for '%s':\n", len(found), prefix)
	for i, s := range found {
		line := fmt.Sprintf("%2d. %-24s %-8s", i+1, s.Text, s.Kind)
		if p.showScores {
			line += fmt.Sprintf(" %.1f", s.Score)
		}
		if s.Description != "" {
			line += " " + p.dim.Render(s.Description)
		}
		fmt.Fprintln(p.w, strings.Replace(line, s.Text, p.word.Render(s.Text), 1))
	}
}

func (p *printer) stats(st suggest.Stats) {
	fmt.Fprintf(p.w, "symbols:   %d\n", st.SymbolCount)
	fmt.Fprintf(p.w, "includes:  %s\n", strings.Join(st.IncludedLibraries, ", "))
	fmt.Fprintf(p.w, "catalog:   %d types\n", st.CatalogTypes)
	fmt.Fprintf(p.w, "trie:      %d words\n", st.TrieWords)

	names := make([]string, 0, len(st.SymbolTable))
	for name := range st.SymbolTable {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(p.w, "  %s %s\n", p.word.Render(name), p.dim.Render(st.SymbolTable[name]))
	}
}
