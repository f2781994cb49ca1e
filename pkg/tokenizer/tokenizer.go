// Package tokenizer is a small lexer for C++ source buffers.
// It recognises identifiers, a closed set of keywords, numeric and quoted
// literals, and single-character operators. Everything else becomes a
// one-byte punctuation token. It never fails: malformed input degrades to a
// best-effort token.
package tokenizer

import (
	"regexp"
)

// Kind classifies a token.
type Kind int

const (
	Identifier Kind = iota
	Keyword
	Operator
	Punctuation
	Literal
	Whitespace
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case Operator:
		return "operator"
	case Punctuation:
		return "punctuation"
	case Literal:
		return "literal"
	case Whitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Token is a lexeme with its kind and byte offset in the scanned text.
type Token struct {
	Kind   Kind
	Text   string
	Offset int
}

// Tokenize scans text from the start and returns its tokens in order.
// It keeps no state between calls.
func Tokenize(text string) []Token {
	var tokens []Token
	pos := 0
	n := len(text)

	for pos < n {
		c := text[pos]
		switch {
		case isSpace(c):
			pos++

		case isIdentStart(c):
			start := pos
			for pos < n && isIdentPart(text[pos]) {
				pos++
			}
			word := text[start:pos]
			kind := Identifier
			if IsKeyword(word) {
				kind = Keyword
			}
			tokens = append(tokens, Token{Kind: kind, Text: word, Offset: start})

		case isDigit(c):
			start := pos
			for pos < n && (isDigit(text[pos]) || text[pos] == '.') {
				pos++
			}
			tokens = append(tokens, Token{Kind: Literal, Text: text[start:pos], Offset: start})

		case c == '"' || c == '\'':
			start := pos
			pos = scanQuoted(text, pos)
			tokens = append(tokens, Token{Kind: Literal, Text: text[start:pos], Offset: start})

		case isOperator(c):
			tokens = append(tokens, Token{Kind: Operator, Text: text[pos : pos+1], Offset: pos})
			pos++

		default:
			tokens = append(tokens, Token{Kind: Punctuation, Text: text[pos : pos+1], Offset: pos})
			pos++
		}
	}
	return tokens
}

// scanQuoted returns the position just past the literal opened at pos.
// A backslash skips the next byte. An unterminated literal runs to the end.
func scanQuoted(text string, pos int) int {
	quote := text[pos]
	pos++
	for pos < len(text) && text[pos] != quote {
		if text[pos] == '\\' {
			pos++
		}
		pos++
	}
	if pos < len(text) {
		pos++
	}
	return min(pos, len(text))
}

var declBeforeCursor = regexp.MustCompile(`(\w+)\s+(\w+)\s*[=;]`)

// ExtractTypeFromContext looks at the code before cursor for the first
// "<type> <name> =" or "<type> <name>;" pair and returns the type word.
// It is a heuristic and returns "" when nothing matches.
func ExtractTypeFromContext(code string, cursor int) string {
	cursor = max(0, min(cursor, len(code)))
	m := declBeforeCursor.FindStringSubmatch(code[:cursor])
	if m == nil {
		return ""
	}
	return m[1]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return isAlpha(c) || c == '_'
}

func isIdentPart(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_'
}

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '=', '<', '>', '!', '&', '|', '^', '%', '.', ':':
		return true
	}
	return false
}
