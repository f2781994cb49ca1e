package tokenizer

// keywords holds control-flow and declaration keywords plus a few container
// and header names that are treated as keywords.
var keywords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "do": {}, "switch": {},
	"case": {}, "default": {}, "break": {}, "continue": {}, "return": {},

	"int": {}, "float": {}, "double": {}, "char": {}, "bool": {}, "void": {},
	"long": {}, "short": {}, "unsigned": {}, "signed": {},

	"const": {}, "volatile": {}, "static": {}, "extern": {}, "auto": {}, "register": {},

	"class": {}, "struct": {}, "union": {}, "enum": {}, "typedef": {}, "using": {},
	"namespace": {}, "template": {}, "typename": {}, "virtual": {},
	"public": {}, "private": {}, "protected": {}, "friend": {},
	"new": {}, "delete": {},

	"vector": {}, "map": {}, "set": {}, "string": {}, "iostream": {}, "algorithm": {},
}

// IsKeyword reports whether word is in the fixed keyword set.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}
