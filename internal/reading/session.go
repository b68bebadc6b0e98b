package reading

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhuongmh/langfi-go/internal/api"
	"github.com/nhuongmh/langfi-go/internal/model"
)

// Session runs one reading-comprehension test: it loads an article and its
// question set, collects per-question answers, and submits them as a batch
// for grading. Answers are strings keyed by question ID; for option-based
// question types the canonical representation is the option letter or the
// literal option text, which is what the grader compares against.
type Session struct {
	api       *api.Client
	articleID uint64

	article *model.Article
	reading *model.ArticleReading
	score   float64
	graded  bool
	loading bool
	errMsg  string
}

// New creates a session for one article attempt.
func New(client *api.Client, articleID uint64) *Session {
	return &Session{api: client, articleID: articleID, loading: true}
}

// Article returns the loaded article, nil until Load succeeds.
func (s *Session) Article() *model.Article { return s.article }

// Reading returns the loaded question set, nil until Load succeeds.
func (s *Session) Reading() *model.ArticleReading { return s.reading }

// Loading reports whether the initial fetches are still outstanding. It
// clears only once both the article and the reading are known, success or
// failure.
func (s *Session) Loading() bool { return s.loading }

// Err returns the current user-visible error message.
func (s *Session) Err() string { return s.errMsg }

// Graded reports whether the test has been submitted and graded.
func (s *Session) Graded() bool { return s.graded }

// Score returns the aggregate score, valid only after grading.
func (s *Session) Score() float64 { return s.score }

// Load issues the article and question-set fetches. A single error slot
// captures whichever failed; the loading flag clears once both are known.
func (s *Session) Load(ctx context.Context) {
	s.loading = true
	s.errMsg = ""

	article, err := s.api.GetArticle(ctx, s.articleID)
	if err != nil {
		s.errMsg = "Error fetching article: " + err.Error()
	} else {
		s.article = article
	}

	reading, err := s.api.GetArticleReading(ctx, s.articleID)
	if err != nil {
		s.errMsg = "Error fetching questions: " + err.Error()
	} else {
		s.reading = reading
	}

	s.loading = false
}

// SetAnswer records the in-progress answer for a question. Answers are
// mutable only before grading; unknown question IDs are ignored.
func (s *Session) SetAnswer(questionID uint64, answer string) error {
	if s.reading == nil {
		return model.ErrNotLoaded
	}
	if s.graded {
		return model.ErrGraded
	}
	for i := range s.reading.Questions {
		if s.reading.Questions[i].ID == questionID {
			s.reading.Questions[i].UserAnswer = answer
			return nil
		}
	}
	return nil
}

// Submit validates that every question has a non-empty answer, then posts
// the batch for grading and merges the result. A blank answer aborts the
// submission before any network call.
func (s *Session) Submit(ctx context.Context) error {
	if s.reading == nil {
		return model.ErrNotLoaded
	}
	if s.graded {
		return model.ErrGraded
	}

	answers := make(map[uint64]string, len(s.reading.Questions))
	for i := range s.reading.Questions {
		q := &s.reading.Questions[i]
		if strings.TrimSpace(q.UserAnswer) == "" {
			return fmt.Errorf("all questions must be answered before submitting (question %d is blank)", i+1)
		}
		answers[q.ID] = q.UserAnswer
	}

	result, err := s.api.SubmitReadingAnswers(ctx, s.reading.ID, answers)
	if err != nil {
		s.errMsg = "Failed to submit answers: " + err.Error()
		return nil
	}
	s.errMsg = ""
	s.Apply(result)
	return nil
}

// Apply merges a grading result into the question list by matching
// identifiers and records the aggregate score. Applying the same result
// twice leaves the state unchanged.
func (s *Session) Apply(result *model.TestResult) {
	if s.reading == nil || result == nil {
		return
	}
	byID := make(map[uint64]model.QuestionResult, len(result.QuestionResults))
	for _, qr := range result.QuestionResults {
		byID[qr.QuestionID] = qr
	}
	for i := range s.reading.Questions {
		q := &s.reading.Questions[i]
		qr, ok := byID[q.ID]
		if !ok {
			continue
		}
		q.Correct = qr.Correct
		q.CorrectAnswer = qr.Answer
		if qr.UserAnswer != "" {
			q.UserAnswer = qr.UserAnswer
		}
	}
	s.reading.Score = result.Score
	s.score = result.Score
	s.graded = true
}
