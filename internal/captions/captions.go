// Package captions retrieves video transcripts from the platform's caption
// (timedtext) endpoint.
package captions

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/narrativelab/narratives/internal/fetch"
)

// DefaultEndpoint is the public timedtext caption endpoint.
const DefaultEndpoint = "https://video.google.com/timedtext"

// DefaultLanguages is the caption language preference order.
var DefaultLanguages = []string{"en"}

// Segment is one caption cue: its text plus start offset and duration in
// seconds.
type Segment struct {
	Text  string
	Start float64
	Dur   float64
}

// Service fetches the ordered caption sequence for a video. Implementations
// return an error for any failure (no captions, captions disabled, geo
// restriction); callers are expected to degrade rather than propagate.
type Service interface {
	Transcript(ctx context.Context, videoID string, languages []string) ([]Segment, error)
}

// TimedText is the HTTP-backed Service implementation.
type TimedText struct {
	Fetcher *fetch.Client
	// Endpoint overrides DefaultEndpoint, used by tests.
	Endpoint string
}

type timedTextDoc struct {
	XMLName xml.Name       `xml:"transcript"`
	Texts   []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Body  string  `xml:",chardata"`
}

// Transcript tries each preferred language in order and returns the first
// non-empty caption track.
func (t *TimedText) Transcript(ctx context.Context, videoID string, languages []string) ([]Segment, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, fmt.Errorf("empty video id")
	}
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	endpoint := t.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	var lastErr error
	for _, lang := range languages {
		q := url.Values{"v": {videoID}, "lang": {lang}}
		body, err := t.Fetcher.Get(ctx, endpoint+"?"+q.Encode())
		if err != nil {
			lastErr = err
			continue
		}
		segments, err := parseTimedText(body)
		if err != nil {
			lastErr = err
			continue
		}
		if len(segments) > 0 {
			return segments, nil
		}
		lastErr = fmt.Errorf("no captions for language %q", lang)
	}
	return nil, fmt.Errorf("transcript for video %s: %w", videoID, lastErr)
}

func parseTimedText(body []byte) ([]Segment, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}
	segments := make([]Segment, 0, len(doc.Texts))
	for _, cue := range doc.Texts {
		// Caption text arrives double-escaped in practice.
		text := strings.TrimSpace(html.UnescapeString(cue.Body))
		if text == "" {
			continue
		}
		segments = append(segments, Segment{Text: text, Start: cue.Start, Dur: cue.Dur})
	}
	return segments, nil
}

// JoinText concatenates segment texts with single spaces, the form the
// extractors feed into sanitization.
func JoinText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
