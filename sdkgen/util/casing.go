package util

import (
	"regexp"
	"strings"
	"unicode"
)

var separatorRun = regexp.MustCompile(`[_-]+([a-z])`)

// ToCamelCase rewrites snake_case and kebab-case names into camelCase.
// Only a separator run followed by a lowercase letter is collapsed, so
// "get_user_data" becomes "getUserData" while "get_2" and "Upper_Case" keep
// their separators before non-lowercase characters.
func ToCamelCase(s string) string {
	return separatorRun.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ToUpper(m[len(m)-1:])
	})
}

// ToPascalCase converts a file or package name into PascalCase.
// Words are split on any non-alphanumeric rune and on lower-to-upper case
// boundaries, acronyms are folded ("HTTPServer" -> "HttpServer").
func ToPascalCase(s string) string {
	var result strings.Builder
	for _, word := range splitWords(s) {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		result.WriteString(string(runes))
	}
	return result.String()
}

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Handles acronyms properly (e.g., "HTTPSConnection" -> "https_connection")
func ToSnakeCase(s string) string {
	return strings.ToLower(strings.Join(splitWords(s), "_"))
}

func splitWords(s string) []string {
	var words []string
	var current []rune
	runes := []rune(s)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			// Don't split inside an acronym unless the next char ends it
			prevUpper := unicode.IsUpper(prev)
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !prevUpper || nextLower {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}
