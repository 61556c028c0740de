// Package sqlite provides a SQLite-backed implementation of the repository ports.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Adapter implements the passport and community repositories for SQLite
type Adapter struct {
	db *sql.DB
}

// compile-time interface assertions
var (
	_ ports.PassportRepository  = (*Adapter)(nil)
	_ ports.CommunityRepository = (*Adapter)(nil)
)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", dsn(storagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// Every pooled connection to :memory: would see its own empty database.
	if storagePath == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

func dsn(path string) string {
	if path == MemoryPath || strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ping reports whether the database is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// SaveSummary stores s with its ordered counts and region shares.
func (a *Adapter) SaveSummary(ctx context.Context, s domain.PassportSummary) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO passport_summaries (id, user_id, created_at, total_artists)
		VALUES (?, ?, ?, ?)
	`, s.ID, s.UserID, s.CreatedAt.UTC().UnixNano(), s.TotalArtists); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	stmtCount, err := tx.PrepareContext(ctx, `
		INSERT INTO summary_country_counts (summary_id, position, country, count)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmtCount.Close()

	for i, entry := range s.CountryCounts.Entries() {
		if _, err := stmtCount.ExecContext(ctx, s.ID, i, string(entry.Country), entry.Count); err != nil {
			return fmt.Errorf("failed to save country %s: %w", entry.Country, err)
		}
	}

	stmtRegion, err := tx.PrepareContext(ctx, `
		INSERT INTO summary_region_percentages (summary_id, position, region, fraction)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmtRegion.Close()

	for i, share := range s.RegionPercentages.Entries() {
		if _, err := stmtRegion.ExecContext(ctx, s.ID, i, string(share.Region), share.Fraction); err != nil {
			return fmt.Errorf("failed to save region %s: %w", share.Region, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// LatestSummary returns the newest summary saved for userID.
func (a *Adapter) LatestSummary(ctx context.Context, userID string) (domain.PassportSummary, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, total_artists
		FROM passport_summaries
		WHERE user_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`, userID)

	var s domain.PassportSummary
	var createdAt int64
	if err := row.Scan(&s.ID, &s.UserID, &createdAt, &s.TotalArtists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PassportSummary{}, domain.ErrNotFound
		}
		return domain.PassportSummary{}, fmt.Errorf("failed to load summary: %w", err)
	}
	s.CreatedAt = time.Unix(0, createdAt).UTC()

	counts, err := a.loadCountryCounts(ctx, s.ID)
	if err != nil {
		return domain.PassportSummary{}, err
	}
	s.CountryCounts = counts

	regions, err := a.loadRegionPercentages(ctx, s.ID)
	if err != nil {
		return domain.PassportSummary{}, err
	}
	s.RegionPercentages = regions

	return s, nil
}

func (a *Adapter) loadCountryCounts(ctx context.Context, summaryID string) (domain.CountryCounts, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT country, count
		FROM summary_country_counts
		WHERE summary_id = ?
		ORDER BY position ASC
	`, summaryID)
	if err != nil {
		return domain.CountryCounts{}, fmt.Errorf("failed to load country counts: %w", err)
	}
	defer rows.Close()

	var counts domain.CountryCounts
	for rows.Next() {
		var country string
		var n int
		if err := rows.Scan(&country, &n); err != nil {
			return domain.CountryCounts{}, fmt.Errorf("failed to scan country count: %w", err)
		}
		counts.Add(domain.CountryCode(country), n)
	}
	if err := rows.Err(); err != nil {
		return domain.CountryCounts{}, fmt.Errorf("failed to iterate country counts: %w", err)
	}
	return counts, nil
}

func (a *Adapter) loadRegionPercentages(ctx context.Context, summaryID string) (domain.RegionPercentages, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT region, fraction
		FROM summary_region_percentages
		WHERE summary_id = ?
		ORDER BY position ASC
	`, summaryID)
	if err != nil {
		return domain.RegionPercentages{}, fmt.Errorf("failed to load region percentages: %w", err)
	}
	defer rows.Close()

	var shares []domain.RegionShare
	for rows.Next() {
		var share domain.RegionShare
		var region string
		if err := rows.Scan(&region, &share.Fraction); err != nil {
			return domain.RegionPercentages{}, fmt.Errorf("failed to scan region share: %w", err)
		}
		share.Region = domain.Region(region)
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return domain.RegionPercentages{}, fmt.Errorf("failed to iterate region percentages: %w", err)
	}
	return domain.NewRegionPercentages(shares), nil
}

// RecordArtists adds names for userID. Names already recorded keep their
// origin.
func (a *Adapter) RecordArtists(ctx context.Context, userID string, names []string) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO user_artists (user_id, name)
		VALUES (?, ?)
		ON CONFLICT(user_id, name) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, userID, name); err != nil {
			return fmt.Errorf("failed to record artist %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// ListUserArtists returns userID's artists in the order they were recorded.
func (a *Adapter) ListUserArtists(ctx context.Context, userID string) ([]domain.UserArtist, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT user_id, name, origin
		FROM user_artists
		WHERE user_id = ?
		ORDER BY seq ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user artists: %w", err)
	}
	defer rows.Close()

	artists := []domain.UserArtist{}
	for rows.Next() {
		var ua domain.UserArtist
		if err := rows.Scan(&ua.UserID, &ua.Name, &ua.Origin); err != nil {
			return nil, fmt.Errorf("failed to scan user artist: %w", err)
		}
		artists = append(artists, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user artists: %w", err)
	}
	return artists, nil
}

// UpdateArtistOrigin stores the raw origin label for a recorded artist.
func (a *Adapter) UpdateArtistOrigin(ctx context.Context, userID, name, origin string) error {
	res, err := a.db.ExecContext(ctx, `
		UPDATE user_artists SET origin = ? WHERE user_id = ? AND name = ?
	`, origin, userID, name)
	if err != nil {
		return fmt.Errorf("failed to update artist origin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update artist origin: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendPost adds p to the community feed.
func (a *Adapter) AppendPost(ctx context.Context, p domain.CommunityPost) error {
	if _, err := a.db.ExecContext(ctx, `
		INSERT INTO community_posts (id, display_name, message, passport_summary, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.DisplayName, p.Message, p.PassportSummary, p.CreatedAt.UTC().UnixNano()); err != nil {
		return fmt.Errorf("failed to append post: %w", err)
	}
	return nil
}

// ListPosts returns up to limit posts, newest first. limit <= 0 returns all.
func (a *Adapter) ListPosts(ctx context.Context, limit int) ([]domain.CommunityPost, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, display_name, message, passport_summary, created_at
		FROM community_posts
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.CommunityPost{}
	for rows.Next() {
		var p domain.CommunityPost
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Message, &p.PassportSummary, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.CreatedAt = time.Unix(0, createdAt).UTC()
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS passport_summaries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		total_artists INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_passport_summaries_user
		ON passport_summaries (user_id, created_at);

	CREATE TABLE IF NOT EXISTS summary_country_counts (
		summary_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		country TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (summary_id, position),
		FOREIGN KEY(summary_id) REFERENCES passport_summaries(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS summary_region_percentages (
		summary_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		region TEXT NOT NULL,
		fraction REAL NOT NULL,
		PRIMARY KEY (summary_id, position),
		FOREIGN KEY(summary_id) REFERENCES passport_summaries(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS user_artists (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		origin TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, name)
	);

	CREATE TABLE IF NOT EXISTS community_posts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		message TEXT NOT NULL,
		passport_summary TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	`
	_, err := a.db.Exec(query)
	return err
}
