package history

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordReview(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordReview("jpx", "minna", 7, "good", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.RecordReview("jpx", "minna", 8, "again", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.RecordReview("jpx", "", 9, "learn", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reviews, err := db.RecentReviews(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(reviews))
	}
	// Newest first.
	if reviews[0].CardID != 9 || reviews[0].Outcome != "learn" {
		t.Errorf("unexpected newest review: %+v", reviews[0])
	}
	if reviews[2].CardID != 7 || reviews[2].Rating != 3 {
		t.Errorf("unexpected oldest review: %+v", reviews[2])
	}

	t.Run("limit caps the result", func(t *testing.T) {
		reviews, err := db.RecentReviews(2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reviews) != 2 {
			t.Errorf("expected 2 reviews, got %d", len(reviews))
		}
	})
}

func TestOutcomeCounts(t *testing.T) {
	db := openTestDB(t)

	counts, err := db.OutcomeCounts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("expected no counts in an empty database, got %v", counts)
	}

	outcomes := []string{"good", "good", "again", "learn"}
	for i, outcome := range outcomes {
		if err := db.RecordReview("jpx", "minna", uint64(i+1), outcome, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	counts, err = db.OutcomeCounts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["good"] != 2 || counts["again"] != 1 || counts["learn"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestAverageReadingScore(t *testing.T) {
	db := openTestDB(t)

	avg, n, err := db.AverageReadingScore()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 || avg != 0 {
		t.Errorf("expected zero values for an empty log, got avg=%v n=%d", avg, n)
	}

	if err := db.RecordReadingResult(42, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.RecordReadingResult(43, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	avg, n, err = db.AverageReadingScore()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || avg != 75 {
		t.Errorf("expected avg=75 n=2, got avg=%v n=%d", avg, n)
	}
}
