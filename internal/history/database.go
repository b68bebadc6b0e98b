package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB is the local review history log. It records only actions the user
// took from this client; cards, articles and their scheduling state stay
// server-owned and are never persisted here.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to
// date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Review is one logged card outcome.
type Review struct {
	ID         int64
	Lang       string
	Group      string
	CardID     uint64
	Outcome    string
	Rating     int
	ReviewedAt time.Time
}

// RecordReview logs a submitted card outcome. Rating is zero for proposal
// dispositions.
func (db *DB) RecordReview(lang, group string, cardID uint64, outcome string, rating int) error {
	_, err := db.conn.Exec(`
		INSERT INTO reviews (lang, group_name, card_id, outcome, rating, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, lang, group, cardID, outcome, rating, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record review for card %d: %w", cardID, err)
	}
	return nil
}

// RecordReadingResult logs a graded reading score.
func (db *DB) RecordReadingResult(readingID uint64, score float64) error {
	_, err := db.conn.Exec(`
		INSERT INTO reading_results (reading_id, score, submitted_at)
		VALUES (?, ?, ?)
	`, readingID, score, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record reading result %d: %w", readingID, err)
	}
	return nil
}

// RecentReviews returns the latest logged reviews, newest first.
func (db *DB) RecentReviews(limit int) ([]Review, error) {
	rows, err := db.conn.Query(`
		SELECT id, lang, group_name, card_id, outcome, rating, reviewed_at
		FROM reviews ORDER BY reviewed_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.Lang, &r.Group, &r.CardID, &r.Outcome, &r.Rating, &r.ReviewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// OutcomeCounts returns how many reviews were logged per outcome.
func (db *DB) OutcomeCounts() (map[string]int, error) {
	rows, err := db.conn.Query(`
		SELECT outcome, COUNT(*) FROM reviews GROUP BY outcome
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome row: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// AverageReadingScore returns the mean of all logged reading scores and
// the number of attempts.
func (db *DB) AverageReadingScore() (float64, int, error) {
	var avg sql.NullFloat64
	var n int
	row := db.conn.QueryRow(`SELECT AVG(score), COUNT(*) FROM reading_results`)
	if err := row.Scan(&avg, &n); err != nil {
		return 0, 0, fmt.Errorf("failed to average reading scores: %w", err)
	}
	return avg.Float64, n, nil
}
