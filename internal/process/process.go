// Package process maps logical processing-stage names to the components that
// implement them, so the pipeline resolves its stages by name rather than by
// concrete type.
package process

import (
	"context"
	"fmt"

	"github.com/narrativelab/narratives/internal/duration"
	"github.com/narrativelab/narratives/internal/sentiment"
	"github.com/narrativelab/narratives/internal/summarize"
)

// Stage names the registry understands.
const (
	StageDuration  = "duration"
	StageSummarise = "summarise"
	StageSentiment = "sentiment"
)

// ErrUnknownProcessor indicates a stage name outside the registered set.
var ErrUnknownProcessor = fmt.Errorf("unknown processor")

// Output carries a stage's derived value; each processor fills exactly one
// field.
type Output struct {
	Minutes   int
	Summary   string
	Sentiment float64
}

// Processor runs one processing stage over a transcript.
type Processor interface {
	Process(ctx context.Context, transcript string) (Output, error)
}

// Registry resolves stage names to processors.
type Registry struct {
	procs map[string]Processor
}

// NewRegistry wires the standard stages: duration estimation, two-pass
// summarization, and the configured sentiment scorer.
func NewRegistry(engine *summarize.Engine, scorer sentiment.Scorer) *Registry {
	return &Registry{procs: map[string]Processor{
		StageDuration:  durationProcessor{},
		StageSummarise: summaryProcessor{engine: engine},
		StageSentiment: sentimentProcessor{scorer: scorer},
	}}
}

// Get returns the processor registered under name.
func (r *Registry) Get(name string) (Processor, error) {
	p, ok := r.procs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcessor, name)
	}
	return p, nil
}

type durationProcessor struct{}

func (durationProcessor) Process(_ context.Context, transcript string) (Output, error) {
	return Output{Minutes: duration.Analyse(transcript)}, nil
}

type summaryProcessor struct {
	engine *summarize.Engine
}

func (p summaryProcessor) Process(ctx context.Context, transcript string) (Output, error) {
	summary, err := p.engine.ProcessText(ctx, transcript)
	if err != nil {
		return Output{}, err
	}
	return Output{Summary: summary}, nil
}

type sentimentProcessor struct {
	scorer sentiment.Scorer
}

func (p sentimentProcessor) Process(_ context.Context, transcript string) (Output, error) {
	score, err := p.scorer.Score(transcript)
	if err != nil {
		return Output{}, fmt.Errorf("score sentiment: %w", err)
	}
	return Output{Sentiment: score}, nil
}
