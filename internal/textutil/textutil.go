// Package textutil holds the small text transformations shared by every
// extractor: transcript sanitization, date standardization, and word counting.
package textutil

import (
	"strings"

	"github.com/araddon/dateparse"
)

// DateLayout is the canonical rendering for every stored timestamp.
const DateLayout = "2006-01-02 15:04:05"

// typographic punctuation that should survive sanitization as ASCII.
var punctReplacer = strings.NewReplacer(
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"–", "-", // en dash
	"—", "-", // em dash
)

// CleanText maps typographic quote and dash variants to their ASCII
// equivalents, then collapses every remaining run of non-ASCII code points to
// a single space. Idempotent: its output is pure ASCII.
func CleanText(s string) string {
	s = punctReplacer.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r > 0x7F {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		b.WriteRune(r)
		inRun = false
	}
	return b.String()
}

// StandardizeDate parses a loosely formatted date string and re-renders it as
// "YYYY-MM-DD HH:MM:SS". The second return is false when the input cannot be
// parsed; callers log and degrade rather than fail.
func StandardizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
