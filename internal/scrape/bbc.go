package scrape

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/narrativelab/narratives/internal/textutil"
)

// BBC extracts article fields from bbc.co.uk pages. Title, publisher, and
// reference image come from Open Graph metadata; the transcript is the joined
// text of the article's text-block components; the date comes from the
// embedded ld+json structured data.
type BBC struct {
	contentID string
	page      *page
	log       zerolog.Logger
}

// NewBBC builds the extractor; nothing is fetched until a field is requested.
func NewBBC(contentID string, d Deps) *BBC {
	log := d.Log.With().Str("scraper", "bbc").Str("content_id", contentID).Logger()
	return &BBC{
		contentID: contentID,
		page:      newPage(contentID, d.Fetcher, log),
		log:       log,
	}
}

func (s *BBC) Title(ctx context.Context) (string, bool) {
	return s.page.metaProperty(ctx, "og:title")
}

func (s *BBC) Transcript(ctx context.Context) (string, bool) {
	doc := s.page.document(ctx)
	if doc == nil {
		return "", false
	}
	var texts []string
	doc.Find(`div[data-component="text-block"]`).Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			texts = append(texts, t)
		}
	})
	if len(texts) == 0 {
		s.log.Warn().Msg("transcript blocks not found")
		return "", false
	}
	return textutil.CleanText(strings.Join(texts, " ")), true
}

func (s *BBC) DatePublished(ctx context.Context) (string, bool) {
	doc := s.page.document(ctx)
	if doc == nil {
		return "", false
	}
	raw := doc.Find(`script[type="application/ld+json"]`).First().Text()
	if strings.TrimSpace(raw) == "" {
		s.log.Warn().Msg("ld+json script tag not found")
		return "", false
	}

	var payload json.RawMessage = []byte(raw)
	// The structured data is an object, possibly wrapped in a single-element
	// array.
	var arr []json.RawMessage
	if err := json.Unmarshal(payload, &arr); err == nil && len(arr) > 0 {
		payload = arr[0]
	}
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		s.log.Error().Err(err).Msg("malformed ld+json structured data")
		return "", false
	}
	// Gated on datePublished but reading dateModified, matching the site's
	// observed structured data.
	if _, ok := data["datePublished"]; !ok {
		s.log.Warn().Msg("datePublished missing from structured data")
		return "", false
	}
	modified, _ := data["dateModified"].(string)
	std, ok := textutil.StandardizeDate(modified)
	if !ok {
		s.log.Error().Str("raw", modified).Msg("unparseable dateModified")
		return "", false
	}
	return std, true
}

func (s *BBC) Publisher(ctx context.Context) (string, bool) {
	return s.page.metaProperty(ctx, "og:site_name")
}

func (s *BBC) ReferenceImage(ctx context.Context) (string, bool) {
	return s.page.metaProperty(ctx, "og:image")
}
