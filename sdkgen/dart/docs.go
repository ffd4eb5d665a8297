package dart

import (
	"strings"

	"github.com/teranos/sdkgen/sdkgen"
)

// maxDocWidth is the wrap width of a doc line, excluding the /// prefix
const maxDocWidth = 80

// FormatDoc renders text as /// lines. Paragraphs (separated by blank
// lines) are wrapped at word boundaries and separated by a bare /// line.
func FormatDoc(text string, indent int) string {
	spaces := strings.Repeat(" ", indent)

	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return ""
	}

	formatted := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		var lines []string
		for _, line := range wrapWords(strings.Fields(p), maxDocWidth) {
			lines = append(lines, spaces+"/// "+line)
		}
		formatted = append(formatted, strings.Join(lines, "\n"))
	}
	return strings.Join(formatted, "\n"+spaces+"///\n") + "\n"
}

// wrapWords greedily fills lines up to width; a longer word gets its own line.
func wrapWords(words []string, width int) []string {
	var lines []string
	current := ""
	for _, word := range words {
		switch {
		case current == "":
			current = word
		case len(current)+len(word)+1 > width:
			lines = append(lines, current)
			current = word
		default:
			current += " " + word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// formatParamDocs renders the parameters block for described arguments.
func formatParamDocs(args []sdkgen.ArgumentSpec, indent int) string {
	spaces := strings.Repeat(" ", indent)
	var entries []string
	for _, a := range args {
		if a.Description == "" {
			continue
		}
		desc := strings.Join(strings.Fields(a.Description), " ")
		entries = append(entries, spaces+"/// * ["+a.Name+"]: "+desc)
	}
	if len(entries) == 0 {
		return ""
	}
	return spaces + "///\n" + spaces + "/// **Parameters:**\n" + strings.Join(entries, "\n") + "\n"
}

// formatReturnDoc renders the returns line, preferring the explicit
// description and omitting the line for void results.
func formatReturnDoc(desc, returnType string, void bool, indent int) string {
	spaces := strings.Repeat(" ", indent)
	if desc != "" {
		return spaces + "///\n" + spaces + "/// **Returns:** " + strings.Join(strings.Fields(desc), " ") + "\n"
	}
	if void {
		return ""
	}
	return spaces + "///\n" + spaces + "/// **Returns:** " + returnType + "\n"
}
