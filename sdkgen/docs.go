package sdkgen

import (
	"strings"

	"github.com/teranos/sdkgen/sdkgen/util"
)

// Doc is the normalized content of a JSDoc block.
type Doc struct {
	Description string
	// Params maps parameter names to descriptions. Each name is registered
	// as declared and in its normalized form.
	Params  map[string]string
	Returns string
}

// Param looks up the description of a parameter by any of the given names.
func (d Doc) Param(names ...string) (string, bool) {
	for _, name := range names {
		if desc, ok := d.Params[name]; ok {
			return desc, true
		}
	}
	return "", false
}

// IsEmpty reports whether the block carried no usable text.
func (d Doc) IsEmpty() bool {
	return d.Description == "" && d.Returns == "" && len(d.Params) == 0
}

// ExtractDoc normalizes a raw /** ... */ block. Lines are trimmed and
// stripped of comment markers, grouped into paragraphs at blank lines, joined
// with single spaces within a paragraph and with a blank line between
// paragraphs. @param and @returns tags are collected; any other tag ends the
// preceding tag's text and is ignored.
func ExtractDoc(comment string) Doc {
	doc := Doc{Params: map[string]string{}}
	if strings.TrimSpace(comment) == "" {
		return doc
	}

	var description []string
	var tag *docTag
	var tags []*docTag
	for _, line := range commentLines(comment) {
		if strings.HasPrefix(line, "@") {
			name, rest, _ := strings.Cut(line, " ")
			tag = &docTag{name: name, lines: []string{strings.TrimSpace(rest)}}
			tags = append(tags, tag)
			continue
		}
		if tag != nil {
			tag.lines = append(tag.lines, line)
			continue
		}
		description = append(description, line)
	}

	doc.Description = joinParagraphs(description)
	for _, t := range tags {
		switch t.name {
		case "@param", "@arg", "@argument":
			name, desc := parseParamTag(joinParagraphs(t.lines))
			if name == "" {
				continue
			}
			doc.Params[name] = desc
			if normalized := util.DartMemberName(name); normalized != name {
				if _, exists := doc.Params[normalized]; !exists {
					doc.Params[normalized] = desc
				}
			}
		case "@returns", "@return":
			doc.Returns = stripTypeExpression(joinParagraphs(t.lines))
		}
	}
	return doc
}

type docTag struct {
	name  string
	lines []string
}

// commentLines splits a block comment into cleaned lines.
func commentLines(comment string) []string {
	text := strings.TrimSpace(comment)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")

	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "*")
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}

// joinParagraphs groups lines at blank-line boundaries.
func joinParagraphs(lines []string) string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}
	for _, line := range lines {
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}

// parseParamTag splits "{T} [name=default] - desc" into name and desc.
func parseParamTag(text string) (string, string) {
	text = stripTypeExpression(text)
	if text == "" {
		return "", ""
	}

	var name string
	if strings.HasPrefix(text, "[") {
		end := strings.IndexByte(text, ']')
		if end < 0 {
			return "", ""
		}
		name, _, _ = strings.Cut(text[1:end], "=")
		text = text[end+1:]
	} else {
		var rest string
		name, rest, _ = strings.Cut(text, " ")
		text = rest
	}

	desc := strings.TrimSpace(text)
	desc = strings.TrimSpace(strings.TrimPrefix(desc, "-"))
	return strings.TrimSpace(name), desc
}

// stripTypeExpression removes a leading {type} annotation.
func stripTypeExpression(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return text
	}
	depth := 0
	for i, r := range text {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(text[i+1:])
			}
		}
	}
	return text
}
