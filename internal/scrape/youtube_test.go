package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/narrativelab/narratives/internal/captions"
)

const youtubeWatchPage = `<!DOCTYPE html>
<html>
<head>
  <meta property="og:title" content="Deep Dive Episode 4">
  <meta property="og:image" content="https://example.test/thumb.jpg">
  <meta itemprop="datePublished" content="2024-02-20">
</head>
<body>
  <span itemprop="author" itemscope itemtype="http://schema.org/Person">
    <link itemprop="url" href="https://example.test/channel">
    <link itemprop="name" content="The Deep Dive Channel">
  </span>
</body>
</html>`

type fakeCaptions struct {
	segments []captions.Segment
	err      error
	lastID   string
	lastLang []string
}

func (f *fakeCaptions) Transcript(ctx context.Context, videoID string, languages []string) ([]captions.Segment, error) {
	f.lastID = videoID
	f.lastLang = languages
	return f.segments, f.err
}

func TestYouTube_ScrapesAllFields(t *testing.T) {
	srv, _ := serveHTML(t, youtubeWatchPage)
	d, _ := testDeps(t)
	fc := &fakeCaptions{segments: []captions.Segment{
		{Text: "hello “world”", Start: 0, Dur: 2},
		{Text: "second cue", Start: 2, Dur: 2},
	}}
	d.Captions = fc
	s := NewYouTube(srv.URL+"/youtube.com/watch?v=ABC123", d)
	ctx := context.Background()

	if title, ok := s.Title(ctx); !ok || title != "Deep Dive Episode 4" {
		t.Fatalf("Title = %q, %v", title, ok)
	}
	if pub, ok := s.Publisher(ctx); !ok || pub != "The Deep Dive Channel" {
		t.Fatalf("Publisher = %q, %v", pub, ok)
	}
	if img, ok := s.ReferenceImage(ctx); !ok || img != "https://example.test/thumb.jpg" {
		t.Fatalf("ReferenceImage = %q, %v", img, ok)
	}
	if date, ok := s.DatePublished(ctx); !ok || date != "2024-02-20 00:00:00" {
		t.Fatalf("DatePublished = %q, %v", date, ok)
	}
	transcript, ok := s.Transcript(ctx)
	if !ok {
		t.Fatalf("expected transcript")
	}
	if transcript != `hello "world" second cue` {
		t.Fatalf("transcript = %q", transcript)
	}
	if fc.lastID != "ABC123" {
		t.Fatalf("caption service called with video id %q", fc.lastID)
	}
	if len(fc.lastLang) != 1 || fc.lastLang[0] != "en" {
		t.Fatalf("default language preference = %v", fc.lastLang)
	}
}

func TestYouTube_CaptionFailureDegrades(t *testing.T) {
	srv, _ := serveHTML(t, youtubeWatchPage)
	d, buf := testDeps(t)
	d.Captions = &fakeCaptions{err: errors.New("captions disabled")}
	s := NewYouTube(srv.URL+"/youtube.com/watch?v=ABC123", d)
	ctx := context.Background()

	if _, ok := s.Transcript(ctx); ok {
		t.Fatalf("caption failure must degrade, not propagate")
	}
	// Metadata fields are unaffected.
	if title, ok := s.Title(ctx); !ok || title != "Deep Dive Episode 4" {
		t.Fatalf("Title = %q, %v", title, ok)
	}
	if !strings.Contains(buf.String(), "could not fetch transcript") {
		t.Fatalf("expected warning in log sink, got: %s", buf.String())
	}
}

func TestYouTube_BareKeyIdentifier(t *testing.T) {
	d, _ := testDeps(t)
	d.Captions = &fakeCaptions{segments: []captions.Segment{{Text: "cue"}}}
	// A bare key never matches the v= pattern and is used as-is.
	s := NewYouTube("ABC123", d)

	if s.videoID != "ABC123" {
		t.Fatalf("videoID = %q", s.videoID)
	}
	if transcript, ok := s.Transcript(context.Background()); !ok || transcript != "cue" {
		t.Fatalf("Transcript = %q, %v", transcript, ok)
	}
}
