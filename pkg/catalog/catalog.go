// Package catalog reads the container -> method catalog and the keyword list
// that seed the suggestion engine.
//
// The catalog format is a JSON-like object whose values are arrays of quoted
// method names:
//
//	{
//	  "vector": ["push_back", "pop_back", "size"],
//	  "stack":  ["push", "pop", "top"]
//	}
//
// It is read by bracket matching, not by a JSON parser, so surrounding syntax is
// tolerated but never validated. A key whose array is never closed yields no
// methods; the other keys still load.
package catalog

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// Catalog maps a container type to its ordered method names.
// The zero value is an empty catalog.
type Catalog struct {
	methods map[string][]string
	order   []string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{methods: make(map[string][]string)}
}

// Add appends method to typ's list.
func (c *Catalog) Add(typ, method string) {
	if c.methods == nil {
		c.methods = make(map[string][]string)
	}
	if _, ok := c.methods[typ]; !ok {
		c.order = append(c.order, typ)
	}
	c.methods[typ] = append(c.methods[typ], method)
}

// Has reports whether typ is a known catalog type.
func (c *Catalog) Has(typ string) bool {
	if c == nil {
		return false
	}
	_, ok := c.methods[typ]
	return ok
}

// Methods returns typ's methods in catalog order.
func (c *Catalog) Methods(typ string) []string {
	if c == nil {
		return nil
	}
	return c.methods[typ]
}

// Types returns the known types in the order they were first seen.
func (c *Catalog) Types() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}

// Len is the number of types.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Each calls fn for every (type, method) pair in catalog order.
func (c *Catalog) Each(fn func(typ, method string)) {
	if c == nil {
		return
	}
	for _, typ := range c.order {
		for _, m := range c.methods[typ] {
			fn(typ, m)
		}
	}
}

var (
	keyOpen    = regexp.MustCompile(`"(\w+)"\s*:\s*\[`)
	quotedName = regexp.MustCompile(`"([^"]+)"`)
)

// Parse extracts every `"key": [ ... ]` group from data.
func Parse(data string) *Catalog {
	c := New()
	for _, m := range keyOpen.FindAllStringSubmatchIndex(data, -1) {
		typ := data[m[2]:m[3]]
		start := m[1]
		end, ok := matchBracket(data, start)
		if !ok {
			log.Debugf("catalog: unclosed array for %q at offset %d", typ, m[0])
			continue
		}
		for _, name := range quotedName.FindAllStringSubmatch(data[start:end], -1) {
			c.Add(typ, name[1])
		}
	}
	return c
}

// matchBracket returns the index of the ']' closing the array whose body
// starts at start. Nested brackets are skipped.
func matchBracket(data string, start int) (int, bool) {
	depth := 1
	for i := start; i < len(data); i++ {
		switch data[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ParseKeywords reads one keyword per line. Blank lines and lines starting
// with '#' are skipped; surrounding whitespace is trimmed.
func ParseKeywords(r io.Reader) []string {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		log.Debugf("catalog: keyword scan stopped early: %v", err)
	}
	return words
}
