// Package sentiment scores transcript sentiment on a [-1, 1] scale. Scoring
// is a pluggable stage: the pipeline runs whichever Scorer it is handed.
package sentiment

import (
	"fmt"
	"strings"

	"github.com/jonreiter/govader"
)

// Scorer produces a sentiment score in [-1, 1] for a piece of text.
type Scorer interface {
	Score(text string) (float64, error)
}

// Placeholder always scores 0, the behavior of the active processing path
// before a real scorer is enabled.
type Placeholder struct{}

func (Placeholder) Score(string) (float64, error) { return 0, nil }

// VADER scores text with the VADER lexicon's compound polarity.
type VADER struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVADER builds a ready-to-use VADER scorer.
func NewVADER() *VADER {
	return &VADER{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VADER) Score(text string) (float64, error) {
	if v.analyzer == nil {
		return 0, fmt.Errorf("vader scorer not initialized")
	}
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	return v.analyzer.PolarityScores(text).Compound, nil
}
