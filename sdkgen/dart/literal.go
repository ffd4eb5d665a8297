package dart

import (
	"strings"
)

// RawLiteral renders s as a Dart raw multi-line string whose value is
// s followed by a newline. r''' is preferred, r""" is used when s contains
// ''', and text containing both is split into adjacent raw literals so that
// no piece contains or ends with its own delimiter quote.
func RawLiteral(s string) string {
	value := s + "\n"
	switch {
	case !strings.Contains(value, "'''"):
		return rawPiece('\'', value)
	case !strings.Contains(value, `"""`):
		return rawPiece('"', value)
	}

	var pieces []string
	for rest := value; len(rest) > 0; {
		quote := byte('\'')
		n := safePrefix(rest, '\'')
		if m := safePrefix(rest, '"'); m > n {
			quote, n = '"', m
		}
		pieces = append(pieces, rawPiece(quote, rest[:n]))
		rest = rest[n:]
	}
	return strings.Join(pieces, "\n")
}

// rawPiece writes content after a line break following the opening
// delimiter; Dart drops that first line, so content starting with blank
// lines survives intact.
func rawPiece(quote byte, content string) string {
	delim := strings.Repeat(string(quote), 3)
	return "r" + delim + "\n" + content + delim
}

// safePrefix returns the length of the longest prefix of s that can sit
// inside a raw literal delimited by three quote characters.
func safePrefix(s string, quote byte) int {
	end := len(s)
	if i := strings.Index(s, strings.Repeat(string(quote), 3)); i >= 0 {
		end = i + 2
	}
	for end > 0 && s[end-1] == quote {
		end--
	}
	return end
}
