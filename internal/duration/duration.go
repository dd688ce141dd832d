// Package duration estimates how long a piece of content takes to consume.
package duration

import "github.com/narrativelab/narratives/internal/textutil"

// WordsPerMinute is the assumed average reading speed.
const WordsPerMinute = 200

// Analyse returns the estimated consumption time in whole minutes, rounding
// up so any non-empty text costs at least one minute.
func Analyse(text string) int {
	words := textutil.CountWords(text)
	if words == 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
