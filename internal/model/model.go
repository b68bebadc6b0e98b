package model

import "time"

// Card is a flashcard as served by the langfi backend. The scheduling
// record (FsrsData) is owned and computed server-side; the client only
// displays it and never writes it back.
type Card struct {
	ID         uint64         `json:"id"`
	Front      string         `json:"front"`
	Back       string         `json:"back"`
	State      string         `json:"state"`
	Properties map[string]any `json:"properties"`
	FsrsData   FsrsData       `json:"FsrsData"`
}

// FsrsData mirrors the backend's scheduler state for a card.
type FsrsData struct {
	Due           time.Time `json:"Due"`
	LastReview    time.Time `json:"LastReview"`
	ScheduledDays int       `json:"ScheduledDays"`
}

// Clone returns a deep copy of the card, so an edit working copy can be
// mutated without touching the canonical one.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Properties != nil {
		cp.Properties = make(map[string]any, len(c.Properties))
		for k, v := range c.Properties {
			cp.Properties[k] = v
		}
	}
	return &cp
}

// Card states as labelled by the backend.
const (
	CardNew     = "New"
	CardLearn   = "Learn"
	CardDiscard = "Discard"
	CardSave    = "Save"
)

// GroupStats is one row of the practice group statistics table.
type GroupStats struct {
	Group    string `json:"group"`
	NumCards int    `json:"num_cards"`
	Proposal int    `json:"proposal"`
	Learning int    `json:"learning"`
	Discard  int    `json:"discard"`
	Save     int    `json:"save"`
}

// Article is a reading passage.
type Article struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Origin      string `json:"origin"`
	Author      string `json:"author"`
	Image       string `json:"image"`
	PublishDate string `json:"publish_date"`
}

// ArticleSummary is the article list row.
type ArticleSummary struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Origin    string `json:"origin"`
	CreatedAt string `json:"created_at"`
}

// Question types understood by the reading test renderer. Anything else
// is shown as an unknown-type placeholder.
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionShortAnswer    = "short_answer"
	QuestionTrueFalse      = "true_false_not_given"
	QuestionMatching       = "matching_headings"
)

// TrueFalseOptions are the fixed choices for true_false_not_given questions.
var TrueFalseOptions = []string{"TRUE", "FALSE", "NOT GIVEN"}

// Question is a single reading-comprehension question. UserAnswer holds the
// in-progress answer; Correct and CorrectAnswer are populated only after
// grading, at which point the question is terminal for the session.
type Question struct {
	ID        uint64   `json:"id"`
	Type      string   `json:"type"`
	Text      string   `json:"question"`
	Options   []string `json:"options,omitempty"`
	Headings  []string `json:"headings,omitempty"`
	Paragraph string   `json:"paragraph,omitempty"`

	UserAnswer    string `json:"user_answer_str,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Correct       bool   `json:"correct,omitempty"`
}

// ArticleReading is the question set for one article attempt. Question
// order is significant: it is both the display and the grading order.
type ArticleReading struct {
	ID        uint64     `json:"id"`
	ArticleID uint64     `json:"article_id"`
	Status    string     `json:"status"`
	Score     float64    `json:"score"`
	Questions []Question `json:"questions"`
}

// QuestionResult is the per-question grading outcome.
type QuestionResult struct {
	QuestionID uint64 `json:"question_id"`
	Answer     string `json:"answer"`
	UserAnswer string `json:"user_answer"`
	Correct    bool   `json:"correct"`
}

// TestResult is the server's grading response for a reading submission.
type TestResult struct {
	ID               uint64           `json:"id"`
	ArticleReadingID uint64           `json:"article_reading_id"`
	QuestionResults  []QuestionResult `json:"question_results"`
	Score            float64          `json:"score"`
}

// ProposedWord is a system-suggested vocabulary candidate awaiting user
// confirmation. Selection is keyed by the word text.
type ProposedWord struct {
	Word         string  `json:"word"`
	Context      string  `json:"context_sentence"`
	Freq         float64 `json:"freq"`
	RefArticleID uint64  `json:"ref_id"`
}

// LearningWord is a confirmed vocabulary entry.
type LearningWord struct {
	ID           uint64  `json:"id"`
	Word         string  `json:"word"`
	Context      string  `json:"context_sentence"`
	Freq         float64 `json:"freq"`
	RefArticleID uint64  `json:"ref_id"`
}
