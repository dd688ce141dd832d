package scrape

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/narrativelab/narratives/internal/captions"
	"github.com/narrativelab/narratives/internal/textutil"
)

var videoKeyPattern = regexp.MustCompile(`v=([^&#]+)`)

// YouTube extracts video metadata from youtube.com watch pages and the
// transcript from the caption service. The identifier may be a full watch URL
// or a bare video key.
type YouTube struct {
	contentID string
	videoID   string
	captions  captions.Service
	languages []string
	page      *page
	log       zerolog.Logger
}

// NewYouTube builds the extractor; nothing is fetched until a field is
// requested.
func NewYouTube(contentID string, d Deps) *YouTube {
	log := d.Log.With().Str("scraper", "youtube").Str("content_id", contentID).Logger()
	languages := d.Languages
	if len(languages) == 0 {
		languages = captions.DefaultLanguages
	}
	return &YouTube{
		contentID: contentID,
		videoID:   ExtractVideoID(contentID),
		captions:  d.Captions,
		languages: languages,
		page:      newPage(contentID, d.Fetcher, log),
		log:       log,
	}
}

// ExtractVideoID pulls the video key out of a watch URL's v= query parameter,
// falling back to the identifier itself for bare keys.
func ExtractVideoID(contentID string) string {
	if m := videoKeyPattern.FindStringSubmatch(contentID); m != nil {
		return m[1]
	}
	return contentID
}

func (s *YouTube) Title(ctx context.Context) (string, bool) {
	return s.page.metaProperty(ctx, "og:title")
}

// Transcript fetches the caption track for the video. Every caption failure
// (no captions, disabled captions, geo restriction) is logged and degraded to
// an unavailable field.
func (s *YouTube) Transcript(ctx context.Context) (string, bool) {
	if s.captions == nil {
		s.log.Warn().Msg("no caption service configured")
		return "", false
	}
	segments, err := s.captions.Transcript(ctx, s.videoID, s.languages)
	if err != nil {
		s.log.Warn().Err(err).Str("video_id", s.videoID).Msg("could not fetch transcript")
		return "", false
	}
	text := captions.JoinText(segments)
	if strings.TrimSpace(text) == "" {
		s.log.Warn().Str("video_id", s.videoID).Msg("empty caption track")
		return "", false
	}
	return textutil.CleanText(text), true
}

func (s *YouTube) DatePublished(ctx context.Context) (string, bool) {
	raw, ok := s.page.metaItemprop(ctx, "datePublished")
	if !ok {
		return "", false
	}
	std, ok := textutil.StandardizeDate(raw)
	if !ok {
		s.log.Error().Str("raw", raw).Msg("unparseable datePublished")
		return "", false
	}
	return std, true
}

// Publisher reads the channel name out of the page's nested author metadata.
func (s *YouTube) Publisher(ctx context.Context) (string, bool) {
	doc := s.page.document(ctx)
	if doc == nil {
		return "", false
	}
	val, ok := doc.Find(`[itemprop="author"] [itemprop="name"]`).First().Attr("content")
	if !ok || val == "" {
		s.log.Warn().Msg("author metadata not found")
		return "", false
	}
	return val, true
}

func (s *YouTube) ReferenceImage(ctx context.Context) (string, bool) {
	return s.page.metaProperty(ctx, "og:image")
}
