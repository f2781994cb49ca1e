package utils

// IsIdentifier reports whether s is a non-empty C++ identifier fragment:
// ASCII letters, digits and underscores. A leading digit is allowed since
// the fragment may be the tail of a longer name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// IsIdentByte reports whether c can appear in a C++ identifier.
func IsIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
