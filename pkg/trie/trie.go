// Package trie is the prefix tree behind free-text completion.
// Words are stored per code point, case-sensitive, with a frequency and a
// last-used stamp on every terminal node. Retrieval walks the tree depth-first
// and visits siblings by descending frequency, stopping at the result cap.
package trie

import (
	"sort"
	"time"
)

// node is a single code point in the tree. Intermediate nodes keep a zero
// frequency; only terminals carry word metadata.
type node struct {
	children map[rune]*node
	word     string
	isEnd    bool
	freq     int
	lastUsed int64
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Entry is the metadata stored for a complete word.
type Entry struct {
	Word      string
	Frequency int
	LastUsed  int64
}

// Trie owns its node tree. Nodes are created lazily and never removed.
// A Trie is not safe for concurrent mutation; the owner synchronizes.
type Trie struct {
	root  *node
	words int
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert stores word with the given frequency and last-used stamp.
// A zero lastUsed means now. Re-inserting a word overwrites its metadata
// without duplicating it.
func (t *Trie) Insert(word string, frequency int, lastUsed int64) {
	n := t.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	if !n.isEnd {
		t.words++
	}
	if lastUsed == 0 {
		lastUsed = time.Now().UnixNano()
	}
	n.word = word
	n.isEnd = true
	n.freq = frequency
	n.lastUsed = lastUsed
}

// LoadWords inserts every word with frequency 1.
func (t *Trie) LoadWords(words []string) {
	for _, w := range words {
		t.Insert(w, 1, 0)
	}
}

// Search returns up to maxResults words starting with prefix.
// A prefix that is itself a word comes first. Below it, sibling subtrees are
// explored greedily in frequency order, so a busy branch can use up the whole
// cap before a quieter one is reached.
func (t *Trie) Search(prefix string, maxResults int) []string {
	n := t.find(prefix)
	if n == nil || maxResults <= 0 {
		return []string{}
	}
	results := make([]string, 0, min(maxResults, 16))
	collect(n, &results, maxResults)
	return results
}

// GetAllWords returns every stored word, uncapped.
func (t *Trie) GetAllWords() []string {
	words := make([]string, 0, t.words)
	var walk func(n *node)
	walk = func(n *node) {
		if n.isEnd {
			words = append(words, n.word)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(t.root)
	return words
}

// Lookup returns the metadata for an exact word.
func (t *Trie) Lookup(word string) (Entry, bool) {
	n := t.find(word)
	if n == nil || !n.isEnd {
		return Entry{}, false
	}
	return Entry{Word: n.word, Frequency: n.freq, LastUsed: n.lastUsed}, true
}

// Touch records a use of an existing word: frequency goes up by one and the
// last-used stamp moves to now. Unknown words are left alone.
func (t *Trie) Touch(word string) bool {
	n := t.find(word)
	if n == nil || !n.isEnd {
		return false
	}
	n.freq++
	n.lastUsed = time.Now().UnixNano()
	return true
}

// Len is the number of distinct words.
func (t *Trie) Len() int {
	return t.words
}

func (t *Trie) find(prefix string) *node {
	n := t.root
	for _, r := range prefix {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

func collect(n *node, results *[]string, maxResults int) {
	if n.isEnd && len(*results) < maxResults {
		*results = append(*results, n.word)
	}
	for _, child := range rankedChildren(n) {
		if len(*results) >= maxResults {
			return
		}
		collect(child, results, maxResults)
	}
}

// rankedChildren orders children by frequency, then recency, then code point.
// The last key only exists to make ties deterministic.
func rankedChildren(n *node) []*node {
	keys := make([]rune, 0, len(n.children))
	for r := range n.children {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := n.children[keys[i]], n.children[keys[j]]
		if a.freq != b.freq {
			return a.freq > b.freq
		}
		if a.lastUsed != b.lastUsed {
			return a.lastUsed > b.lastUsed
		}
		return keys[i] < keys[j]
	})
	ordered := make([]*node, len(keys))
	for i, r := range keys {
		ordered[i] = n.children[r]
	}
	return ordered
}
