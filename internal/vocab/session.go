package vocab

import (
	"context"
	"strings"

	"github.com/nhuongmh/langfi-go/internal/api"
	"github.com/nhuongmh/langfi-go/internal/model"
)

// Selection is a set of word strings, or the "all" sentinel meaning every
// row present at submission time, including rows added after the initial
// fetch.
type Selection struct {
	all   bool
	words map[string]struct{}
}

// SelectAll marks every current and future row as selected.
func (sel *Selection) SelectAll() {
	sel.all = true
	sel.words = nil
}

// Select adds a single word to the selection.
func (sel *Selection) Select(word string) {
	if sel.all {
		return
	}
	if sel.words == nil {
		sel.words = make(map[string]struct{})
	}
	sel.words[word] = struct{}{}
}

// Deselect removes a word; it also dissolves the "all" sentinel into
// nothing, since a partial "all" is no longer all.
func (sel *Selection) Deselect(word string) {
	if sel.all {
		sel.all = false
		sel.words = nil
		return
	}
	delete(sel.words, word)
}

// Has reports whether a word is selected.
func (sel *Selection) Has(word string) bool {
	if sel.all {
		return true
	}
	_, ok := sel.words[word]
	return ok
}

// Session curates vocabulary for one article. It shows the confirmed
// learning list when one exists; otherwise it falls back to the proposed
// list with a selection workflow. Submission is terminal.
type Session struct {
	api       *api.Client
	articleID uint64

	learning  []model.LearningWord
	proposals []model.ProposedWord
	Selection Selection

	confirmed bool
	submitted bool
	errMsg    string
}

// New creates a curation session for one article.
func New(client *api.Client, articleID uint64) *Session {
	return &Session{api: client, articleID: articleID}
}

// Learning returns the confirmed vocabulary list, nil when the session is
// in the proposal workflow.
func (s *Session) Learning() []model.LearningWord { return s.learning }

// Proposals returns the current proposal rows.
func (s *Session) Proposals() []model.ProposedWord { return s.proposals }

// Confirmed reports whether a confirmed learning list was found.
func (s *Session) Confirmed() bool { return s.confirmed }

// Submitted reports whether the proposal selection has been submitted.
func (s *Session) Submitted() bool { return s.submitted }

// Err returns the current user-visible error message.
func (s *Session) Err() string { return s.errMsg }

// Load tries the confirmed learning list first; if the backend reports
// none exists, it falls back to the proposed list. Malformed proposal data
// degrades to an inline notice rather than an error page.
func (s *Session) Load(ctx context.Context) {
	words, err := s.api.LearningVocab(ctx, s.articleID)
	if err == nil && words != nil {
		s.learning = words
		s.confirmed = true
		s.errMsg = ""
		return
	}

	proposals, err := s.api.ProposedVocab(ctx, s.articleID)
	if err != nil {
		s.errMsg = "vocabulary data not available"
		return
	}
	s.proposals = proposals
	s.errMsg = ""
}

// Add appends a user-typed word to the proposal list with zero frequency
// and no context sentence. Blank input is ignored.
func (s *Session) Add(word string) {
	word = strings.TrimSpace(word)
	if word == "" {
		return
	}
	s.proposals = append(s.proposals, model.ProposedWord{
		Word:         word,
		Freq:         0,
		RefArticleID: s.articleID,
	})
}

// Selected filters the proposal list down to the current selection, at
// the moment of the call.
func (s *Session) Selected() []model.ProposedWord {
	var out []model.ProposedWord
	for _, w := range s.proposals {
		if s.Selection.Has(w.Word) {
			out = append(out, w)
		}
	}
	return out
}

// Submit posts the selected proposals. The session is terminal afterwards;
// there is no edit-then-resubmit loop.
func (s *Session) Submit(ctx context.Context) error {
	if s.submitted {
		return nil
	}
	selected := s.Selected()
	if err := s.api.SubmitProposedVocab(ctx, s.articleID, selected); err != nil {
		s.errMsg = "Failed to submit vocabularies: " + err.Error()
		return nil
	}
	s.errMsg = ""
	s.submitted = true
	return nil
}
