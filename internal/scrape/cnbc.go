package scrape

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/narrativelab/narratives/internal/textutil"
)

// CNBC extracts article fields from cnbc.com pages. It shares the Open Graph
// metadata conventions with BBC but reads the transcript from a single named
// article-body container and the date from an itemprop meta tag.
type CNBC struct {
	contentID string
	page      *page
	log       zerolog.Logger
}

// NewCNBC builds the extractor; nothing is fetched until a field is requested.
func NewCNBC(contentID string, d Deps) *CNBC {
	log := d.Log.With().Str("scraper", "cnbc").Str("content_id", contentID).Logger()
	return &CNBC{
		contentID: contentID,
		page:      newPage(contentID, d.Fetcher, log),
		log:       log,
	}
}

func (s *CNBC) Title(ctx context.Context) (string, bool) {
	return s.page.metaProperty(ctx, "og:title")
}

func (s *CNBC) Transcript(ctx context.Context) (string, bool) {
	doc := s.page.document(ctx)
	if doc == nil {
		return "", false
	}
	body := doc.Find("div.ArticleBody-articleBody").First()
	if body.Length() == 0 {
		s.log.Warn().Msg("article body not found")
		return "", false
	}
	text := strings.TrimSpace(body.Text())
	if text == "" {
		s.log.Warn().Msg("article body empty")
		return "", false
	}
	return textutil.CleanText(text), true
}

func (s *CNBC) DatePublished(ctx context.Context) (string, bool) {
	raw, ok := s.page.metaItemprop(ctx, "dateCreated")
	if !ok {
		return "", false
	}
	std, ok := textutil.StandardizeDate(raw)
	if !ok {
		s.log.Error().Str("raw", raw).Msg("unparseable dateCreated")
		return "", false
	}
	return std, true
}

func (s *CNBC) Publisher(ctx context.Context) (string, bool) {
	return s.page.metaProperty(ctx, "og:site_name")
}

func (s *CNBC) ReferenceImage(ctx context.Context) (string, bool) {
	return s.page.metaProperty(ctx, "og:image")
}
