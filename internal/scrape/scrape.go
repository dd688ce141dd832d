// Package scrape routes a content identifier to the extractor variant for its
// source and implements the per-source extraction rules.
package scrape

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/narrativelab/narratives/internal/captions"
	"github.com/narrativelab/narratives/internal/fetch"
)

// ErrUnsupportedSource indicates the identifier matches no known source
// pattern. Fatal for that identifier only.
var ErrUnsupportedSource = errors.New("unsupported content source")

// Platform names stored on records.
const (
	PlatformVideo = "Video"
	PlatformWeb   = "Web"
)

// Extractor is the capability set every source variant exposes. Each method
// is independently callable and fault tolerant: a missing field or a failed
// fetch yields ("", false) and a log record, never an error or panic.
type Extractor interface {
	Title(ctx context.Context) (string, bool)
	Transcript(ctx context.Context) (string, bool)
	DatePublished(ctx context.Context) (string, bool)
	Publisher(ctx context.Context) (string, bool)
	ReferenceImage(ctx context.Context) (string, bool)
}

// Deps bundles the collaborators an extractor needs.
type Deps struct {
	Fetcher  *fetch.Client
	Captions captions.Service
	// Languages is the caption language preference order; empty means
	// captions.DefaultLanguages.
	Languages []string
	Log       zerolog.Logger
}

// Ordered dispatch patterns; first match wins.
var patterns = []struct {
	substr string
	build  func(contentID string, d Deps) Extractor
}{
	{"bbc.co.uk", func(id string, d Deps) Extractor { return NewBBC(id, d) }},
	{"cnbc.com", func(id string, d Deps) Extractor { return NewCNBC(id, d) }},
	{"youtube.com", func(id string, d Deps) Extractor { return NewYouTube(id, d) }},
}

// Route selects the extractor variant for a content identifier by ordered
// substring match. Pure dispatch: no state, no I/O.
func Route(contentID string, d Deps) (Extractor, error) {
	for _, p := range patterns {
		if strings.Contains(contentID, p.substr) {
			return p.build(contentID, d), nil
		}
	}
	return nil, ErrUnsupportedSource
}

// Supported reports whether Route would succeed for the identifier.
func Supported(contentID string) bool {
	for _, p := range patterns {
		if strings.Contains(contentID, p.substr) {
			return true
		}
	}
	return false
}

// Platform derives the record's platform label from the identifier pattern.
func Platform(contentID string) string {
	if strings.Contains(contentID, "youtube.com") {
		return PlatformVideo
	}
	return PlatformWeb
}
