package ingestion

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Runs of horizontal whitespace (including the non-breaking space PDF
// extractors love) collapse to one space; whitespace runs containing a
// newline collapse to one newline. Newlines are kept on purpose: résumé and
// job-description sections carry meaning for the extraction prompts, so
// paragraph boundaries must survive normalization.
var (
	horizontalRuns = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	newlineRuns    = regexp.MustCompile(`[ ]*\n[\n ]*`)
)

// Normalize cleans raw extracted text into its canonical form: invalid UTF-8
// and control characters dropped, whitespace collapsed, edges trimmed.
// Normalize is idempotent and never produces a longer string than its input.
func Normalize(raw string) string {
	clean := dropUnprintable(raw)
	clean = horizontalRuns.ReplaceAllString(clean, " ")
	clean = newlineRuns.ReplaceAllString(clean, "\n")
	return strings.TrimSpace(clean)
}

// dropUnprintable removes control characters (except newline and tab, which
// the collapsing passes handle) and invalid UTF-8 sequences.
func dropUnprintable(s string) string {
	if utf8.ValidString(s) && !strings.ContainsFunc(s, isDisallowed) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == utf8.RuneError || isDisallowed(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDisallowed(r rune) bool {
	if r == '\n' || r == '\t' || r == '\r' {
		return false
	}
	return r < 0x20 || r == 0x7f
}
