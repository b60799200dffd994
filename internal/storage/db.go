package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"moviedash/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS movies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  movie_name TEXT NOT NULL,
  rating REAL,
  voting_counts INTEGER NOT NULL DEFAULT 0,
  genre TEXT NOT NULL,
  duration_minutes INTEGER,
  duration_category TEXT,
  duration TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_movies_genre ON movies(genre);
CREATE INDEX IF NOT EXISTS idx_movies_duration ON movies(duration);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  stage TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceMovies swaps the whole table contents in one transaction. Missing
// vote counts are stored as 0; missing ratings stay NULL.
func (d *DB) ReplaceMovies(ctx context.Context, movies []internal.Movie) (int, error) {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM movies`); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO movies (movie_name, rating, voting_counts, genre, duration_minutes, duration_category, duration)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, m := range movies {
		votes := int64(0)
		if m.Votes != nil {
			votes = *m.Votes
		}
		if _, err := stmt.ExecContext(ctx, m.Name, m.Rating, votes, m.Genre, m.DurationMinutes, m.DurationCategory, m.Duration); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(movies), nil
}

// ListMovies returns rows matching f in insertion order. Empty genre or
// duration sets do not restrict. A positive MinRating drops unrated rows.
func (d *DB) ListMovies(ctx context.Context, f internal.MovieFilter) ([]internal.Movie, error) {
	query, args := buildListSQL(f)
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Movie
	for rows.Next() {
		var (
			m        internal.Movie
			rating   sql.NullFloat64
			votes    int64
			minutes  sql.NullInt64
			category sql.NullString
		)
		if err := rows.Scan(&m.Name, &rating, &votes, &m.Genre, &minutes, &category, &m.Duration); err != nil {
			return nil, err
		}
		if rating.Valid {
			r := rating.Float64
			m.Rating = &r
		}
		m.Votes = &votes
		if minutes.Valid {
			v := int(minutes.Int64)
			m.DurationMinutes = &v
		}
		if category.Valid {
			c := category.String
			m.DurationCategory = &c
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func buildListSQL(f internal.MovieFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if len(f.Genres) > 0 {
		where = append(where, "genre IN ("+placeholders(len(f.Genres))+")")
		for _, g := range f.Genres {
			args = append(args, g)
		}
	}
	if len(f.Durations) > 0 {
		where = append(where, "duration IN ("+placeholders(len(f.Durations))+")")
		for _, d := range f.Durations {
			args = append(args, d)
		}
	}
	if f.MinRating > 0 {
		where = append(where, "rating IS NOT NULL AND rating >= ?")
		args = append(args, f.MinRating)
	}
	if f.MinVotes > 0 {
		where = append(where, "voting_counts >= ?")
		args = append(args, f.MinVotes)
	}

	query := `SELECT movie_name, rating, voting_counts, genre, duration_minutes, duration_category, duration FROM movies`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY id ASC", args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func (d *DB) CountMovies(ctx context.Context) (int, error) {
	var n int
	err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n)
	return n, err
}

// InsertRun records one pipeline stage and returns its trace id.
func (d *DB) InsertRun(ctx context.Context, stage string, timings map[string]float64, counts map[string]int) (string, error) {
	traceID := uuid.NewString()
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.ExecContext(ctx, `INSERT INTO runs (traceId, stage, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, stage, string(timingsJSON), string(countsJSON))
	if err != nil {
		return "", err
	}
	return traceID, nil
}

// LatestRun returns the newest run for stage, or nil if there is none.
func (d *DB) LatestRun(ctx context.Context, stage string) (*internal.RunRow, error) {
	var (
		row                     internal.RunRow
		timingsJSON, countsJSON string
	)
	err := d.conn.QueryRowContext(ctx, `
SELECT id, traceId, stage, timingsJson, countsJson, createdAt
FROM runs WHERE stage = ? ORDER BY id DESC LIMIT 1
`, stage).Scan(&row.ID, &row.TraceID, &row.Stage, &timingsJSON, &countsJSON, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(timingsJSON), &row.Timings)
	_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
	return &row, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// Genres lists the distinct genres, sorted.
func (d *DB) Genres(ctx context.Context) ([]string, error) {
	return d.distinct(ctx, `SELECT DISTINCT genre FROM movies WHERE genre <> '' ORDER BY genre`)
}

// DurationBuckets lists the distinct buckets, sorted.
func (d *DB) DurationBuckets(ctx context.Context) ([]string, error) {
	return d.distinct(ctx, `SELECT DISTINCT duration FROM movies WHERE duration <> '' ORDER BY duration`)
}

func (d *DB) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// RatingBounds returns the min and max rating. ok is false when no row has one.
func (d *DB) RatingBounds(ctx context.Context) (lo, hi float64, ok bool, err error) {
	var minR, maxR sql.NullFloat64
	err = d.conn.QueryRowContext(ctx, `SELECT MIN(rating), MAX(rating) FROM movies`).Scan(&minR, &maxR)
	if err != nil || !minR.Valid {
		return 0, 0, false, err
	}
	return minR.Float64, maxR.Float64, true, nil
}

// VoteBounds returns the min and max vote count. ok is false on an empty table.
func (d *DB) VoteBounds(ctx context.Context) (lo, hi int64, ok bool, err error) {
	var minV, maxV sql.NullInt64
	err = d.conn.QueryRowContext(ctx, `SELECT MIN(voting_counts), MAX(voting_counts) FROM movies`).Scan(&minV, &maxV)
	if err != nil || !minV.Valid {
		return 0, 0, false, err
	}
	return minV.Int64, maxV.Int64, true, nil
}
