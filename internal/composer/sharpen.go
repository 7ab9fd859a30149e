package composer

import (
	"regexp"
	"strings"
)

// sharpenRule expands a vague constraint phrase into a concrete one by
// appending a qualifier. The guard is checked per occurrence: a match already
// followed by its qualifier is left alone, which makes sharpening idempotent
// (RE2 has no lookahead, so the suffix check stands in for one).
type sharpenRule struct {
	pattern *regexp.Regexp
	suffix  string
}

var sharpenRules = []sharpenRule{
	{
		pattern: regexp.MustCompile(`(?i)\bbe concise\b`),
		suffix:  "(at most 5 sentences)",
	},
	{
		pattern: regexp.MustCompile(`(?i)\bkeep it short\b`),
		suffix:  "(under 150 words)",
	},
	{
		pattern: regexp.MustCompile(`(?i)\bavoid long answers\b`),
		suffix:  "(no more than 3 paragraphs)",
	},
	{
		pattern: regexp.MustCompile(`(?i)\buse simple language\b`),
		suffix:  "(8th-grade reading level)",
	},
}

// Sharpen applies the fixed phrase-substitution rules to constraint text.
// Matched phrases keep their original casing; every occurrence is qualified
// independently. Deterministic and idempotent: reapplying to already-sharpened
// text yields byte-identical output.
func Sharpen(constraints string) string {
	for _, rule := range sharpenRules {
		constraints = rule.apply(constraints)
	}
	return constraints
}

func (r sharpenRule) apply(text string) string {
	matches := r.pattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[1]])
		last = m[1]
		if !strings.HasPrefix(text[last:], " "+r.suffix) {
			b.WriteString(" ")
			b.WriteString(r.suffix)
		}
	}
	b.WriteString(text[last:])
	return b.String()
}
