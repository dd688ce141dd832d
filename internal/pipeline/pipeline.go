// Package pipeline orchestrates content ingestion: register the identifier,
// scrape the source into the record, then derive duration, summary, and
// sentiment from the transcript.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/narrativelab/narratives/internal/process"
	"github.com/narrativelab/narratives/internal/scrape"
	"github.com/narrativelab/narratives/internal/store"
)

// ErrAlreadyExists reports an identifier that is already registered; the
// ingest is a no-op.
var ErrAlreadyExists = errors.New("content id already exists")

const unknownValue = "Unknown"

// Pipeline wires the scraper router, processor registry, and store together.
// It runs strictly sequentially; callers serialize concurrent triggers.
type Pipeline struct {
	Store    store.Store
	Scrape   scrape.Deps
	Registry *process.Registry
	Log      zerolog.Logger
	// Now is the clock used for date_added; nil means time.Now.
	Now func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Ingest registers a content identifier and runs the scrape and process
// stages. An already-registered identifier returns ErrAlreadyExists without
// touching the record.
func (p *Pipeline) Ingest(ctx context.Context, contentID string) error {
	created, err := p.Store.AddContent(ctx, contentID, p.now())
	if err != nil {
		return fmt.Errorf("register %s: %w", contentID, err)
	}
	if !created {
		return fmt.Errorf("%s: %w", contentID, ErrAlreadyExists)
	}
	p.Log.Info().Str("content_id", contentID).Msg("registered content id")

	if err := p.ScrapeContent(ctx, contentID); err != nil {
		return err
	}
	return p.ProcessContent(ctx, contentID)
}

// IngestBatch ingests each identifier in turn. One identifier's failure is
// logged and never aborts the rest of the batch.
func (p *Pipeline) IngestBatch(ctx context.Context, contentIDs []string) {
	for _, id := range contentIDs {
		if err := p.Ingest(ctx, id); err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				p.Log.Warn().Str("content_id", id).Msg("content id already exists, skipping")
				continue
			}
			p.Log.Error().Err(err).Str("content_id", id).Msg("ingest failed")
		}
	}
}

// ScrapeContent routes the identifier to its extractor, pulls all five
// fields, resolves the publisher profile, and writes the record in one
// update. Fields the extractor could not produce persist as NULL.
func (p *Pipeline) ScrapeContent(ctx context.Context, contentID string) error {
	ex, err := scrape.Route(contentID, p.Scrape)
	if err != nil {
		return fmt.Errorf("route %s: %w", contentID, err)
	}

	var f store.ScrapedFields
	if v, ok := ex.Title(ctx); ok {
		f.Title = &v
	}
	if v, ok := ex.Transcript(ctx); ok {
		f.Transcript = &v
	}
	if v, ok := ex.DatePublished(ctx); ok {
		f.DatePublished = &v
	}
	if v, ok := ex.Publisher(ctx); ok {
		f.Publisher = &v
	}
	if v, ok := ex.ReferenceImage(ctx); ok {
		f.ReferenceImage = &v
	}
	f.Platform = scrape.Platform(contentID)

	f.Orientation, f.Country = unknownValue, unknownValue
	if f.Publisher != nil {
		profile, err := p.Store.PublisherProfile(ctx, *f.Publisher)
		if err != nil {
			return fmt.Errorf("resolve publisher %q: %w", *f.Publisher, err)
		}
		if profile != nil {
			f.Orientation, f.Country = profile.Orientation, profile.Country
		} else if err := p.Store.AddPublisherStub(ctx, *f.Publisher); err != nil {
			return fmt.Errorf("add publisher stub %q: %w", *f.Publisher, err)
		}
	}

	if err := p.Store.UpdateScraped(ctx, contentID, f); err != nil {
		return fmt.Errorf("store scraped fields for %s: %w", contentID, err)
	}
	p.Log.Info().Str("content_id", contentID).Msg("scraped content id")
	return nil
}

// ProcessContent derives duration, summary, and sentiment from the record's
// transcript and writes all three in one update. An empty transcript is a
// logged no-op. A summarization failure leaves every derived field untouched.
func (p *Pipeline) ProcessContent(ctx context.Context, contentID string) error {
	rec, err := p.Store.Content(ctx, contentID)
	if err != nil {
		return fmt.Errorf("load %s: %w", contentID, err)
	}
	if rec == nil || rec.Transcript == nil || *rec.Transcript == "" {
		p.Log.Warn().Str("content_id", contentID).Msg("no transcript, skipping processing")
		return nil
	}
	transcript := *rec.Transcript

	outputs := make(map[string]process.Output, 3)
	for _, stage := range []string{process.StageDuration, process.StageSummarise, process.StageSentiment} {
		proc, err := p.Registry.Get(stage)
		if err != nil {
			return err
		}
		out, err := proc.Process(ctx, transcript)
		if err != nil {
			return fmt.Errorf("process %s for %s: %w", stage, contentID, err)
		}
		outputs[stage] = out
	}

	err = p.Store.UpdateProcessed(ctx, contentID,
		outputs[process.StageDuration].Minutes,
		outputs[process.StageSummarise].Summary,
		outputs[process.StageSentiment].Sentiment)
	if err != nil {
		return fmt.Errorf("store processed fields for %s: %w", contentID, err)
	}
	p.Log.Info().Str("content_id", contentID).Msg("processed content id")
	return nil
}

// CatchUp scrapes and processes every record whose transcript is still empty,
// continuing past per-identifier failures.
func (p *Pipeline) CatchUp(ctx context.Context) error {
	ids, err := p.Store.UnprocessedIDs(ctx)
	if err != nil {
		return fmt.Errorf("list unprocessed: %w", err)
	}
	for _, id := range ids {
		if err := p.ScrapeContent(ctx, id); err != nil {
			p.Log.Error().Err(err).Str("content_id", id).Msg("scrape failed")
			continue
		}
		if err := p.ProcessContent(ctx, id); err != nil {
			p.Log.Error().Err(err).Str("content_id", id).Msg("processing failed")
		}
	}
	return nil
}
