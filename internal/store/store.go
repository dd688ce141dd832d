// Package store persists content records and publisher profiles.
package store

import (
	"context"
	"time"
)

// ContentRecord is one row of the library, keyed by the externally supplied
// content identifier. Pointer fields are NULL until the relevant stage runs.
type ContentRecord struct {
	ContentID      string
	Title          *string
	Publisher      *string
	Author         *string
	Platform       *string
	DatePublished  *string
	DateAdded      string // set at creation, immutable
	Duration       *int
	Transcript     *string
	Summary        *string
	Sentiment      *float64
	MacroTopic     *string
	Orientation    *string
	Country        *string
	ReferenceImage *string
	SentBy         *string
	Comments       *string
}

// PublisherProfile holds operator-editable editorial metadata shared by every
// record from one publisher.
type PublisherProfile struct {
	Publisher   string
	Orientation string
	Country     string
}

// ScrapedFields is everything the scrape stage writes in one update. Nil
// members persist as NULL.
type ScrapedFields struct {
	Title          *string
	Transcript     *string
	DatePublished  *string
	Publisher      *string
	ReferenceImage *string
	Orientation    string
	Country        string
	Platform       string
}

// Filter selects library rows for the front end. Empty slices and strings
// mean "no constraint"; date bounds use the store's timestamp rendering.
type Filter struct {
	Publishers  []string
	Platforms   []string
	Countries   []string
	MacroTopics []string
	AddedFrom   string
	AddedTo     string
}

// Store is the row-level persistence boundary used by the pipeline; only
// point lookups and single multi-column updates per record per stage.
type Store interface {
	// AddContent registers a new content id with the given date_added.
	// It returns false without modifying anything when the id already exists.
	AddContent(ctx context.Context, contentID string, addedAt time.Time) (bool, error)
	Content(ctx context.Context, contentID string) (*ContentRecord, error)
	// UnprocessedIDs lists ids whose transcript is NULL or empty.
	UnprocessedIDs(ctx context.Context) ([]string, error)
	UpdateScraped(ctx context.Context, contentID string, f ScrapedFields) error
	UpdateProcessed(ctx context.Context, contentID string, minutes int, summary string, sentimentScore float64) error

	// PublisherProfile returns nil when the publisher has no profile yet.
	PublisherProfile(ctx context.Context, publisher string) (*PublisherProfile, error)
	// AddPublisherStub creates an empty profile row; no-op when present.
	AddPublisherStub(ctx context.Context, publisher string) error
	// UpdatePublisherProfile upserts the profile and cascades orientation and
	// country onto every content record sharing the publisher.
	UpdatePublisherProfile(ctx context.Context, p PublisherProfile) error
	PublisherProfiles(ctx context.Context) ([]PublisherProfile, error)

	UpdateTopic(ctx context.Context, contentID, topic string) error
	FilteredContent(ctx context.Context, f Filter) ([]ContentRecord, error)
}
