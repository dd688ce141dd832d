package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/narrativelab/narratives/internal/textutil"
)

const libraryDDL = `
CREATE TABLE IF NOT EXISTS library (
    content_id VARCHAR(200) PRIMARY KEY,
    title TEXT,
    publisher TEXT,
    author TEXT,
    date_published DATETIME,
    date_added DATETIME,
    duration INTEGER,
    platform TEXT,
    transcript TEXT,
    summary TEXT,
    sentiment_analysis REAL,
    macro_topic TEXT,
    publisher_political_orientation TEXT,
    country TEXT,
    sent_by TEXT,
    comments TEXT,
    reference_image TEXT
);`

const publisherDDL = `
CREATE TABLE IF NOT EXISTS publisher_options (
    publisher TEXT PRIMARY KEY,
    publisher_political_orientation TEXT,
    country TEXT
);`

// SQLite is the Store implementation over a local SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	for _, ddl := range []string{libraryDDL, publisherDDL} {
		if _, err := db.Exec(ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) AddContent(ctx context.Context, contentID string, addedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO library (content_id, date_added) VALUES (?, ?)`,
		contentID, addedAt.Format(textutil.DateLayout))
	if err != nil {
		return false, fmt.Errorf("insert content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) Content(ctx context.Context, contentID string) (*ContentRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM library WHERE content_id = ?`, contentID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	return rec, nil
}

func (s *SQLite) UnprocessedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content_id FROM library WHERE transcript IS NULL OR transcript = ''`)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ids, nil
}

func (s *SQLite) UpdateScraped(ctx context.Context, contentID string, f ScrapedFields) error {
	query, args, err := sq.Update("library").
		Set("title", f.Title).
		Set("transcript", f.Transcript).
		Set("date_published", f.DatePublished).
		Set("publisher", f.Publisher).
		Set("reference_image", f.ReferenceImage).
		Set("publisher_political_orientation", f.Orientation).
		Set("country", f.Country).
		Set("platform", f.Platform).
		Where(sq.Eq{"content_id": contentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update scraped fields: %w", err)
	}
	return nil
}

func (s *SQLite) UpdateProcessed(ctx context.Context, contentID string, minutes int, summary string, sentimentScore float64) error {
	query, args, err := sq.Update("library").
		Set("duration", minutes).
		Set("summary", summary).
		Set("sentiment_analysis", sentimentScore).
		Where(sq.Eq{"content_id": contentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update processed fields: %w", err)
	}
	return nil
}

func (s *SQLite) PublisherProfile(ctx context.Context, publisher string) (*PublisherProfile, error) {
	var p PublisherProfile
	var orientation, country sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT publisher, publisher_political_orientation, country FROM publisher_options WHERE publisher = ?`,
		publisher).Scan(&p.Publisher, &orientation, &country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query publisher: %w", err)
	}
	p.Orientation = orientation.String
	p.Country = country.String
	return &p, nil
}

func (s *SQLite) AddPublisherStub(ctx context.Context, publisher string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO publisher_options (publisher) VALUES (?)`, publisher)
	if err != nil {
		return fmt.Errorf("insert publisher stub: %w", err)
	}
	return nil
}

func (s *SQLite) UpdatePublisherProfile(ctx context.Context, p PublisherProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO publisher_options (publisher, publisher_political_orientation, country)
         VALUES (?, ?, ?)
         ON CONFLICT(publisher) DO UPDATE
         SET publisher_political_orientation = excluded.publisher_political_orientation,
             country = excluded.country`,
		p.Publisher, p.Orientation, p.Country)
	if err != nil {
		return fmt.Errorf("upsert publisher: %w", err)
	}
	// Edits cascade to every record sharing the publisher.
	_, err = tx.ExecContext(ctx,
		`UPDATE library SET publisher_political_orientation = ?, country = ? WHERE publisher = ?`,
		p.Orientation, p.Country, p.Publisher)
	if err != nil {
		return fmt.Errorf("cascade publisher edit: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) PublisherProfiles(ctx context.Context) ([]PublisherProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT publisher, publisher_political_orientation, country FROM publisher_options ORDER BY publisher`)
	if err != nil {
		return nil, fmt.Errorf("query publishers: %w", err)
	}
	defer rows.Close()

	var out []PublisherProfile
	for rows.Next() {
		var p PublisherProfile
		var orientation, country sql.NullString
		if err := rows.Scan(&p.Publisher, &orientation, &country); err != nil {
			return nil, fmt.Errorf("scan publisher: %w", err)
		}
		p.Orientation = orientation.String
		p.Country = country.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (s *SQLite) UpdateTopic(ctx context.Context, contentID, topic string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE library SET macro_topic = ? WHERE content_id = ?`, topic, contentID)
	if err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	return nil
}

func (s *SQLite) FilteredContent(ctx context.Context, f Filter) ([]ContentRecord, error) {
	b := sq.Select(recordColumns).From("library")
	if len(f.Publishers) > 0 {
		b = b.Where(sq.Eq{"publisher": f.Publishers})
	}
	if len(f.Platforms) > 0 {
		b = b.Where(sq.Eq{"platform": f.Platforms})
	}
	if len(f.Countries) > 0 {
		b = b.Where(sq.Eq{"country": f.Countries})
	}
	if len(f.MacroTopics) > 0 {
		b = b.Where(sq.Eq{"macro_topic": f.MacroTopics})
	}
	if f.AddedFrom != "" && f.AddedTo != "" {
		b = b.Where(sq.Expr("date_added BETWEEN ? AND ?", f.AddedFrom, f.AddedTo))
	}
	query, args, err := b.OrderBy("date_added DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filter query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query filtered content: %w", err)
	}
	defer rows.Close()

	var out []ContentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

const recordColumns = `content_id, title, publisher, author, date_published, date_added,
    duration, platform, transcript, summary, sentiment_analysis, macro_topic,
    publisher_political_orientation, country, sent_by, comments, reference_image`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*ContentRecord, error) {
	var rec ContentRecord
	var (
		title, publisher, author, datePublished, dateAdded sql.NullString
		platform, transcript, summary, macroTopic          sql.NullString
		orientation, country, sentBy, comments, refImage   sql.NullString
		durationMinutes                                    sql.NullInt64
		sentimentScore                                     sql.NullFloat64
	)
	err := row.Scan(&rec.ContentID, &title, &publisher, &author, &datePublished, &dateAdded,
		&durationMinutes, &platform, &transcript, &summary, &sentimentScore, &macroTopic,
		&orientation, &country, &sentBy, &comments, &refImage)
	if err != nil {
		return nil, err
	}
	rec.Title = nullableString(title)
	rec.Publisher = nullableString(publisher)
	rec.Author = nullableString(author)
	rec.DatePublished = nullableString(datePublished)
	rec.DateAdded = dateAdded.String
	rec.Platform = nullableString(platform)
	rec.Transcript = nullableString(transcript)
	rec.Summary = nullableString(summary)
	rec.MacroTopic = nullableString(macroTopic)
	rec.Orientation = nullableString(orientation)
	rec.Country = nullableString(country)
	rec.SentBy = nullableString(sentBy)
	rec.Comments = nullableString(comments)
	rec.ReferenceImage = nullableString(refImage)
	if durationMinutes.Valid {
		m := int(durationMinutes.Int64)
		rec.Duration = &m
	}
	if sentimentScore.Valid {
		v := sentimentScore.Float64
		rec.Sentiment = &v
	}
	return &rec, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
