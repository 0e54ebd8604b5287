package vhdl

import "strings"

// Identifier turns name into a VHDL basic identifier: letters, digits and
// single underscores, starting with a letter and not ending with an
// underscore. Names that already qualify are returned unchanged.
func Identifier(name string) string {
	var sb strings.Builder
	underscore := false
	for _, c := range name {
		if isLetter(c) || isDigit(c) {
			sb.WriteRune(c)
			underscore = false
		} else if !underscore && sb.Len() > 0 {
			sb.WriteByte('_')
			underscore = true
		}
	}

	id := strings.TrimRight(sb.String(), "_")
	if id == "" || !isLetter(rune(id[0])) {
		id = "img_" + id
		id = strings.TrimRight(id, "_")
	}
	return id
}

// ValidIdentifier reports whether s is a VHDL basic identifier. Reserved
// words are not checked.
func ValidIdentifier(s string) bool {
	if s == "" || !isLetter(rune(s[0])) || s[len(s)-1] == '_' {
		return false
	}
	for i, c := range s {
		switch {
		case isLetter(c), isDigit(c):
		case c == '_' && s[i-1] != '_':
		default:
			return false
		}
	}
	return true
}

func isLetter(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
