package util

import (
	"strings"
	"unicode"
)

// dartReservedWords are identifiers that cannot name a Dart method, parameter
// or class without escaping.
var dartReservedWords = map[string]bool{
	"assert": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "default": true, "do": true, "else": true,
	"enum": true, "extends": true, "false": true, "final": true, "finally": true,
	"for": true, "if": true, "in": true, "is": true, "new": true, "null": true,
	"rethrow": true, "return": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "var": true, "void": true,
	"while": true, "with": true, "await": true, "yield": true,
	// Members the generated class already defines
	"create": true, "dispose": true,
}

// DartIdentifier makes name usable as a Dart identifier. Characters outside
// [A-Za-z0-9_$] become '_', a leading digit is prefixed with '$', and reserved
// words get a trailing '_'.
func DartIdentifier(name string) string {
	if name == "" {
		return "arg"
	}
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if i == 0 && unicode.IsDigit(r) {
				sb.WriteByte('$')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	id := sb.String()
	if dartReservedWords[id] {
		id += "_"
	}
	return id
}

// DartMemberName normalizes a declared function or parameter name into the
// identifier exposed by the generated class.
func DartMemberName(declared string) string {
	return DartIdentifier(ToCamelCase(declared))
}

// DartClassName derives the generated class name from an input file name.
func DartClassName(base string) string {
	name := ToPascalCase(base)
	if name == "" {
		return "Module"
	}
	if unicode.IsDigit([]rune(name)[0]) {
		name = "Module" + name
	}
	return name
}

// DartStringLiteral quotes s as a single-quoted Dart string with escapes.
func DartStringLiteral(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '$':
			sb.WriteString(`\$`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
