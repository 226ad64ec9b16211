package commands

import "strings"

// terminatedStatement reports whether buffered shell input ends with a
// statement terminator and returns the statement without it. A semicolon
// only terminates outside braces, strings, IRIs and comments, so a predicate
// list such as "?s a ex:Film ;" keeps the statement open.
func terminatedStatement(text string) (string, bool) {
	depth := 0
	end := -1
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '#':
			for i < len(text) && text[i] != '\n' {
				i++
			}
			continue
		case c == '"' || c == '\'':
			i = skipString(text, i)
		case c == '<':
			if j := iriEnd(text, i); j > 0 {
				i = j
			}
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == ';' && depth == 0:
			end = i
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			continue
		}
		end = -1
	}
	if end < 0 {
		return "", false
	}
	return text[:end], true
}

// skipString returns the index of the closing quote of the literal opened at
// i, or len(text) when it is unterminated.
func skipString(text string, i int) int {
	closing := text[i : i+1]
	if strings.HasPrefix(text[i:], strings.Repeat(closing, 3)) {
		closing = strings.Repeat(closing, 3)
	}
	for j := i + len(closing); j < len(text); j++ {
		if text[j] == '\\' {
			j++
			continue
		}
		if strings.HasPrefix(text[j:], closing) {
			return j + len(closing) - 1
		}
	}
	return len(text)
}

// iriEnd returns the index of the '>' closing an IRI opened at i, or -1 when
// the '<' is a comparison.
func iriEnd(text string, i int) int {
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '>':
			return j
		case ' ', '\t', '\r', '\n', '<', '"', '{', '}':
			return -1
		}
	}
	return -1
}
