package store

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strptr(s string) *string { return &s }

func TestAddContent_SkipsExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	added, err := s.AddContent(ctx, "https://www.bbc.co.uk/news/a", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil || !added {
		t.Fatalf("first add: %v, %v", added, err)
	}
	added, err = s.AddContent(ctx, "https://www.bbc.co.uk/news/a", time.Now())
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if added {
		t.Fatalf("duplicate id must not be re-added")
	}

	rec, err := s.Content(ctx, "https://www.bbc.co.uk/news/a")
	if err != nil || rec == nil {
		t.Fatalf("Content: %v, %v", rec, err)
	}
	if rec.DateAdded != "2024-03-01 12:00:00" {
		t.Fatalf("DateAdded = %q (must keep the original)", rec.DateAdded)
	}
	if rec.Transcript != nil || rec.Duration != nil || rec.Summary != nil {
		t.Fatalf("derived fields must start NULL: %+v", rec)
	}
}

func TestContent_MissingIsNil(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.Content(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record")
	}
}

func TestUnprocessedIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.AddContent(ctx, id, now); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	err := s.UpdateScraped(ctx, "b", ScrapedFields{
		Transcript: strptr("scraped text"), Orientation: "Unknown", Country: "Unknown", Platform: "Web",
	})
	if err != nil {
		t.Fatalf("update scraped: %v", err)
	}

	ids, err := s.UnprocessedIDs(ctx)
	if err != nil {
		t.Fatalf("unprocessed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v", ids)
	}
	for _, id := range ids {
		if id == "b" {
			t.Fatalf("scraped id should not be listed")
		}
	}
}

func TestUpdateScraped_NilFieldsPersistAsNull(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.AddContent(ctx, "a", time.Now()); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := s.UpdateScraped(ctx, "a", ScrapedFields{
		Title:       strptr("Headline"),
		Transcript:  nil, // scrape failed for this field
		Publisher:   strptr("BBC News"),
		Orientation: "Unknown",
		Country:     "Unknown",
		Platform:    "Web",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, err := s.Content(ctx, "a")
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if rec.Title == nil || *rec.Title != "Headline" {
		t.Fatalf("Title = %v", rec.Title)
	}
	if rec.Transcript != nil {
		t.Fatalf("Transcript should be NULL, got %q", *rec.Transcript)
	}
	if rec.Platform == nil || *rec.Platform != "Web" {
		t.Fatalf("Platform = %v", rec.Platform)
	}
}

func TestUpdateProcessed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.AddContent(ctx, "a", time.Now()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.UpdateProcessed(ctx, "a", 7, "the summary", 0.25); err != nil {
		t.Fatalf("update processed: %v", err)
	}
	rec, _ := s.Content(ctx, "a")
	if rec.Duration == nil || *rec.Duration != 7 {
		t.Fatalf("Duration = %v", rec.Duration)
	}
	if rec.Summary == nil || *rec.Summary != "the summary" {
		t.Fatalf("Summary = %v", rec.Summary)
	}
	if rec.Sentiment == nil || *rec.Sentiment != 0.25 {
		t.Fatalf("Sentiment = %v", rec.Sentiment)
	}
}

func TestPublisherProfile_StubAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, err := s.PublisherProfile(ctx, "BBC News")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p != nil {
		t.Fatalf("expected no profile yet")
	}
	if err := s.AddPublisherStub(ctx, "BBC News"); err != nil {
		t.Fatalf("stub: %v", err)
	}
	// Stub insert is idempotent.
	if err := s.AddPublisherStub(ctx, "BBC News"); err != nil {
		t.Fatalf("second stub: %v", err)
	}
	p, err = s.PublisherProfile(ctx, "BBC News")
	if err != nil || p == nil {
		t.Fatalf("lookup after stub: %v, %v", p, err)
	}
	if p.Orientation != "" || p.Country != "" {
		t.Fatalf("stub should be empty: %+v", p)
	}
}

func TestUpdatePublisherProfile_CascadesToRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for id, pub := range map[string]string{"a": "BBC News", "b": "BBC News", "c": "CNBC"} {
		if _, err := s.AddContent(ctx, id, now); err != nil {
			t.Fatalf("add: %v", err)
		}
		err := s.UpdateScraped(ctx, id, ScrapedFields{
			Publisher: strptr(pub), Orientation: "Unknown", Country: "Unknown", Platform: "Web",
		})
		if err != nil {
			t.Fatalf("scrape: %v", err)
		}
	}

	err := s.UpdatePublisherProfile(ctx, PublisherProfile{
		Publisher: "BBC News", Orientation: "Centre", Country: "United Kingdom",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}

	for _, id := range []string{"a", "b"} {
		rec, _ := s.Content(ctx, id)
		if rec.Country == nil || *rec.Country != "United Kingdom" {
			t.Fatalf("record %s country = %v", id, rec.Country)
		}
		if rec.Orientation == nil || *rec.Orientation != "Centre" {
			t.Fatalf("record %s orientation = %v", id, rec.Orientation)
		}
	}
	// Other publishers untouched.
	rec, _ := s.Content(ctx, "c")
	if rec.Country == nil || *rec.Country != "Unknown" {
		t.Fatalf("record c country = %v", rec.Country)
	}

	profiles, err := s.PublisherProfiles(ctx)
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Publisher != "BBC News" {
		t.Fatalf("profiles = %+v", profiles)
	}
}

func TestFilteredContent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	seed := []struct {
		id, pub, platform, country string
	}{
		{"a", "BBC News", "Web", "United Kingdom"},
		{"b", "CNBC", "Web", "United States"},
		{"c", "The Deep Dive Channel", "Video", "Unknown"},
	}
	for _, row := range seed {
		if _, err := s.AddContent(ctx, row.id, now); err != nil {
			t.Fatalf("add: %v", err)
		}
		err := s.UpdateScraped(ctx, row.id, ScrapedFields{
			Publisher: strptr(row.pub), Orientation: "Unknown", Country: row.country, Platform: row.platform,
		})
		if err != nil {
			t.Fatalf("scrape: %v", err)
		}
	}

	all, err := s.FilteredContent(ctx, Filter{})
	if err != nil {
		t.Fatalf("empty filter: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("empty filter should return everything, got %d", len(all))
	}

	web, err := s.FilteredContent(ctx, Filter{Platforms: []string{"Web"}})
	if err != nil {
		t.Fatalf("platform filter: %v", err)
	}
	if len(web) != 2 {
		t.Fatalf("web rows = %d", len(web))
	}

	combo, err := s.FilteredContent(ctx, Filter{
		Platforms:  []string{"Web"},
		Publishers: []string{"CNBC"},
	})
	if err != nil {
		t.Fatalf("combined filter: %v", err)
	}
	if len(combo) != 1 || combo[0].ContentID != "b" {
		t.Fatalf("combined rows = %+v", combo)
	}
}

func TestUpdateTopic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.AddContent(ctx, "a", time.Now()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.UpdateTopic(ctx, "a", "Energy"); err != nil {
		t.Fatalf("update topic: %v", err)
	}
	rec, _ := s.Content(ctx, "a")
	if rec.MacroTopic == nil || *rec.MacroTopic != "Energy" {
		t.Fatalf("MacroTopic = %v", rec.MacroTopic)
	}
}
