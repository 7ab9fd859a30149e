package composer

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Recognized heading titles, in priority order. The first candidate that
// matches a heading wins; multiple matches are never merged.
var (
	constraintHeadings   = []string{"Constraints", "Rules", "Limitations"}
	outputFormatHeadings = []string{"Output Format", "Format", "Output"}
)

// personaPattern matches a leading persona/role statement up to its first
// sentence end.
var personaPattern = regexp.MustCompile(`(?is)^\s*((?:you are|you're|act as)\b[^.\n]*(?:\.|\n|$))`)

var markdown = goldmark.New()

// headingSpan locates one heading and the byte range of its section.
type headingSpan struct {
	level     int
	title     string
	lineStart int
	end       int // one past the section's last byte
}

// scanHeadings parses source and returns every heading with its section
// bounds. A section runs until the next heading of the same or higher level.
func scanHeadings(source string) []headingSpan {
	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var spans []headingSpan
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		seg := heading.Lines().At(0)
		lineStart := seg.Start
		for lineStart > 0 && source[lineStart-1] != '\n' {
			lineStart--
		}

		spans = append(spans, headingSpan{
			level:     heading.Level,
			title:     strings.TrimSpace(string(src[seg.Start:seg.Stop])),
			lineStart: lineStart,
		})
		return ast.WalkSkipChildren, nil
	})

	for i := range spans {
		spans[i].end = len(source)
		for j := i + 1; j < len(spans); j++ {
			if spans[j].level <= spans[i].level {
				spans[i].end = spans[j].lineStart
				break
			}
		}
	}
	return spans
}

// extractSection removes the first section whose heading matches any of the
// ordered candidate titles and returns it alongside the remaining source.
func extractSection(source string, candidates []string) (section string, remaining string, found bool) {
	spans := scanHeadings(source)
	for _, candidate := range candidates {
		for _, span := range spans {
			if !strings.EqualFold(span.title, candidate) {
				continue
			}
			section = strings.TrimRight(source[span.lineStart:span.end], "\n")
			remaining = source[:span.lineStart] + source[span.end:]
			return section, remaining, true
		}
	}
	return "", source, false
}

// splitPersona peels a leading persona statement off the instruction text.
func splitPersona(source string) (persona string, remaining string) {
	match := personaPattern.FindStringSubmatchIndex(source)
	if match == nil {
		return "", source
	}
	persona = strings.TrimSpace(source[match[2]:match[3]])
	remaining = source[match[3]:]
	return persona, remaining
}
