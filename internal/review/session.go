package review

import (
	"context"
	"fmt"

	"github.com/nhuongmh/langfi-go/internal/api"
	"github.com/nhuongmh/langfi-go/internal/model"
)

// Mode selects which backend queue a session works through.
type Mode int

const (
	// Practice reviews learning cards with a 1-4 rating.
	Practice Mode = iota
	// Proposal curates new cards with a learn/discard/save disposition.
	Proposal
)

// Session drives one card-review screen: exactly one card is in play at a
// time, submissions are followed by a re-fetch of the next card, and every
// failure degrades to a user-visible message instead of a crash. The same
// session serves both the practice and proposal queues; only the endpoints
// and the outcome vocabulary differ.
type Session struct {
	api   *api.Client
	mode  Mode
	lang  string
	group string

	card   *model.Card
	edit   *model.Card
	errMsg string
}

// NewPractice creates a spaced-repetition review session.
func NewPractice(client *api.Client, lang, group string) *Session {
	return &Session{api: client, mode: Practice, lang: lang, group: group}
}

// NewProposal creates a card curation session.
func NewProposal(client *api.Client, lang, group string) *Session {
	return &Session{api: client, mode: Proposal, lang: lang, group: group}
}

// Card returns the card currently in play, or nil when the queue is empty.
func (s *Session) Card() *model.Card { return s.card }

// EditCopy returns the working copy used by the editor.
func (s *Session) EditCopy() *model.Card { return s.edit }

// Err returns the current user-visible error message, empty when the last
// action succeeded.
func (s *Session) Err() string { return s.errMsg }

// Refresh fetches the next card. A missing group is reported inline and no
// request is issued. Fetch failures keep the previous card on screen, as
// the original client did.
func (s *Session) Refresh(ctx context.Context) {
	if s.group == "" {
		s.errMsg = model.ErrNoGroup.Error()
		return
	}

	var (
		card *model.Card
		err  error
	)
	switch s.mode {
	case Practice:
		card, err = s.api.FetchPracticeCard(ctx, s.lang, s.group)
	case Proposal:
		card, err = s.api.FetchProposalCard(ctx, s.lang, s.group)
	}
	if err != nil {
		s.errMsg = "Failed to fetch card from server: " + err.Error()
		return
	}
	s.card = card
	s.edit = card.Clone()
	s.errMsg = ""
}

// SubmitRating reports a practice outcome by name (again/hard/good/easy)
// and, unless suppressed, fetches the next card afterwards. The re-fetch
// is sequenced strictly after the submission round-trip, success or
// failure. An unrecognized rating name is returned as an error before any
// request is made.
func (s *Session) SubmitRating(ctx context.Context, name string, fetchNext bool) error {
	if s.mode != Practice {
		return fmt.Errorf("rating submitted on a %s session", s.modeName())
	}
	if s.card == nil {
		return nil
	}
	rating, err := ParseRating(name)
	if err != nil {
		return err
	}

	if err := s.api.SubmitPracticeCard(ctx, s.lang, s.group, s.card.ID, int(rating)); err != nil {
		s.errMsg = "Failed to submit card status: " + err.Error()
	} else {
		s.errMsg = ""
	}
	if fetchNext {
		s.Refresh(ctx)
	}
	return nil
}

// SubmitDisposition reports a curation outcome (learn/discard/save) and,
// unless suppressed, fetches the next card afterwards.
func (s *Session) SubmitDisposition(ctx context.Context, status string, fetchNext bool) error {
	if s.mode != Proposal {
		return fmt.Errorf("disposition submitted on a %s session", s.modeName())
	}
	if s.card == nil {
		return nil
	}
	if !ValidDisposition(status) {
		return fmt.Errorf("unknown disposition %q", status)
	}

	if err := s.api.SubmitProposalCard(ctx, s.lang, s.card.ID, status); err != nil {
		s.errMsg = "Failed to submit card status: " + err.Error()
	} else {
		s.errMsg = ""
	}
	if fetchNext {
		s.Refresh(ctx)
	}
	return nil
}

// SetEdit updates the text fields of the working copy only; the canonical
// card is untouched until SaveEdit succeeds.
func (s *Session) SetEdit(front, back string) {
	if s.edit == nil {
		return
	}
	s.edit.Front = front
	s.edit.Back = back
}

// SaveEdit sends the whole working copy to the edit endpoint. On success
// both the canonical and working copies are replaced by the server's
// returned card; the next card is not fetched.
func (s *Session) SaveEdit(ctx context.Context) {
	if s.edit == nil {
		return
	}
	updated, err := s.api.EditCard(ctx, s.lang, s.edit)
	if err != nil {
		s.errMsg = "Failed to edit card: " + err.Error()
		return
	}
	s.card = updated
	s.edit = updated.Clone()
	s.errMsg = ""
}

// CancelEdit discards pending edits by resetting the working copy to the
// canonical card.
func (s *Session) CancelEdit() {
	s.edit = s.card.Clone()
}

func (s *Session) modeName() string {
	if s.mode == Practice {
		return "practice"
	}
	return "proposal"
}
