package review

import (
	"fmt"

	"github.com/nhuongmh/langfi-go/internal/model"
)

// Rating is the user's spaced-repetition response to a practice card,
// forwarded verbatim to the backend scheduler.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

// ParseRating converts a rating name to its numeric value. The mapping is
// total over {again, hard, good, easy}; anything else is a programming
// error, never a silent default.
func ParseRating(name string) (Rating, error) {
	switch name {
	case "again":
		return Again, nil
	case "hard":
		return Hard, nil
	case "good":
		return Good, nil
	case "easy":
		return Easy, nil
	default:
		return 0, fmt.Errorf("%w: %q", model.ErrUnknownRating, name)
	}
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return fmt.Sprintf("rating(%d)", int(r))
	}
}

// Dispositions for the proposal curation queue, distinct from ratings.
const (
	DispositionLearn   = "learn"
	DispositionDiscard = "discard"
	DispositionSave    = "save"
)

// ValidDisposition reports whether s is a recognized curation outcome.
func ValidDisposition(s string) bool {
	switch s {
	case DispositionLearn, DispositionDiscard, DispositionSave:
		return true
	}
	return false
}
