package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// The sanitizer normalizes extracted text for storage and display. It is
// idempotent: sanitizing already-sanitized text returns it unchanged.

const lineMinChars = 10

// Lines containing these substrings (lowercased) are obvious chrome, not body text.
var lineDenylist = []string{
	"cookie",
	"suscríbete al newsletter",
	"compartir en facebook",
	"compartir en twitter",
}

var (
	residualTagRe = regexp.MustCompile(`<[^>]+>`)
	spaceRunRe    = regexp.MustCompile(`[ \t]{2,}`)
	newlineRunRe  = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#39;", "'",
	"&nbsp;", " ",
	"&#8211;", "–",
	"&#8212;", "—",
)

// Sanitize strips residual markup, decodes the fixed entity set, collapses
// whitespace and drops boilerplate lines, re-joining the survivors with
// blank-line separators.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	t := decodeEntities(text)
	t = residualTagRe.ReplaceAllString(t, " ")
	t = newlineRunRe.ReplaceAllString(t, "\n\n")
	t = spaceRunRe.ReplaceAllString(t, " ")

	lines := strings.Split(t, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if utf8.RuneCountInString(trimmed) <= lineMinChars {
			continue
		}
		if isBoilerplateLine(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n\n")
}

// decodeEntities runs the replacer to a fixed point so nested encodings like
// &amp;nbsp; fully resolve in one Sanitize call.
func decodeEntities(s string) string {
	const maxRounds = 4
	for i := 0; i < maxRounds; i++ {
		next := entityReplacer.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func isBoilerplateLine(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range lineDenylist {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
