package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nhuongmh/langfi-go/internal/model"
)

// Client talks HTTP/JSON to the langfi backend. The backend serves the
// flashcard endpoints under a public prefix and the reading/vocabulary
// endpoints under a private one.
type Client struct {
	public  string
	private string
	http    *http.Client
}

// New creates a client for the given URL prefixes. A nil httpClient gets a
// default client with no timeout, matching the original behavior of never
// timing a request out.
func New(publicURL, privateURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		public:  strings.TrimRight(publicURL, "/"),
		private: strings.TrimRight(privateURL, "/"),
		http:    httpClient,
	}
}

// Error is a non-success response from the backend, carrying the HTTP
// status and the server's best-effort message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d", e.Status)
	}
	return fmt.Sprintf("server responded %d, %s", e.Status, e.Message)
}

// do runs the request and decodes the JSON response into out, if out is
// non-nil. Empty and "null" bodies leave out untouched and return
// (false, nil) so callers can distinguish "no more data" from a real
// payload.
func (c *Client) do(req *http.Request, out any) (bool, error) {
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return false, apiErr
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

func (c *Client) get(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, url string, body, out any) (bool, error) {
	payload := []byte("{}")
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

// FetchPracticeCard returns the next due card for a practice group, or nil
// when the group has no more cards.
func (c *Client) FetchPracticeCard(ctx context.Context, lang, group string) (*model.Card, error) {
	var card model.Card
	ok, err := c.get(ctx, fmt.Sprintf("%s/practice/%s/%s/fetch", c.public, lang, group), &card)
	if err != nil || !ok {
		return nil, err
	}
	return &card, nil
}

// SubmitPracticeCard reports a 1-4 spaced-repetition rating for a card.
func (c *Client) SubmitPracticeCard(ctx context.Context, lang, group string, cardID uint64, rating int) error {
	u := fmt.Sprintf("%s/practice/%s/%s/submit?cardID=%d&rating=%d", c.public, lang, group, cardID, rating)
	_, err := c.post(ctx, u, nil, nil)
	return err
}

// GroupStats returns per-group card counts for a language.
func (c *Client) GroupStats(ctx context.Context, lang string) ([]model.GroupStats, error) {
	var stats []model.GroupStats
	if _, err := c.get(ctx, fmt.Sprintf("%s/practice/%s/stats", c.public, lang), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// FetchProposalCard returns the next card awaiting curation, or nil when
// the queue is empty.
func (c *Client) FetchProposalCard(ctx context.Context, lang, group string) (*model.Card, error) {
	var card model.Card
	u := fmt.Sprintf("%s/process/%s/fetch?group=%s", c.public, lang, url.QueryEscape(group))
	ok, err := c.get(ctx, u, &card)
	if err != nil || !ok {
		return nil, err
	}
	return &card, nil
}

// SubmitProposalCard reports a curation disposition (learn/discard/save).
func (c *Client) SubmitProposalCard(ctx context.Context, lang string, cardID uint64, status string) error {
	u := fmt.Sprintf("%s/process/%s/submit?cardID=%d&status=%s", c.public, lang, cardID, url.QueryEscape(status))
	_, err := c.post(ctx, u, nil, nil)
	return err
}

// EditCard sends the whole card to the edit endpoint and returns the
// server's (possibly re-validated) copy.
func (c *Client) EditCard(ctx context.Context, lang string, card *model.Card) (*model.Card, error) {
	var updated model.Card
	ok, err := c.post(ctx, fmt.Sprintf("%s/process/%s/edit", c.public, lang), card, &updated)
	if err != nil {
		return nil, err
	}
	if !ok {
		return card.Clone(), nil
	}
	return &updated, nil
}

// GetArticle fetches one article.
func (c *Client) GetArticle(ctx context.Context, id uint64) (*model.Article, error) {
	var article model.Article
	if _, err := c.get(ctx, fmt.Sprintf("%s/ie/article/%d", c.private, id), &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// ListArticles fetches the article index.
func (c *Client) ListArticles(ctx context.Context) ([]model.ArticleSummary, error) {
	var articles []model.ArticleSummary
	if _, err := c.get(ctx, c.private+"/ie/article", &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// CreateArticle submits a new article.
func (c *Client) CreateArticle(ctx context.Context, article *model.Article) error {
	_, err := c.post(ctx, c.private+"/ie/article", article, nil)
	return err
}

// LoadArticleFromURL asks the backend to extract article metadata and text
// from a source link, used to pre-fill the submission form.
func (c *Client) LoadArticleFromURL(ctx context.Context, source string) (*model.Article, error) {
	var article model.Article
	u := fmt.Sprintf("%s/ie/article/url?url=%s", c.private, url.QueryEscape(source))
	if _, err := c.get(ctx, u, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticleReading fetches the question set for an article.
func (c *Client) GetArticleReading(ctx context.Context, articleID uint64) (*model.ArticleReading, error) {
	var reading model.ArticleReading
	if _, err := c.get(ctx, fmt.Sprintf("%s/ie/article/%d/reading", c.private, articleID), &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}

// SubmitReadingAnswers posts the answers, keyed by question ID, for
// grading and returns the per-question results and aggregate score.
func (c *Client) SubmitReadingAnswers(ctx context.Context, readingID uint64, answers map[uint64]string) (*model.TestResult, error) {
	var result model.TestResult
	u := fmt.Sprintf("%s/ie/article/reading/%d/submit", c.private, readingID)
	if _, err := c.post(ctx, u, answers, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProposedVocab fetches the system-proposed vocabulary for an article.
func (c *Client) ProposedVocab(ctx context.Context, articleID uint64) ([]model.ProposedWord, error) {
	var words []model.ProposedWord
	if _, err := c.get(ctx, fmt.Sprintf("%s/ie/article/%d/proposed_vocab", c.private, articleID), &words); err != nil {
		return nil, err
	}
	return words, nil
}

// SubmitProposedVocab posts the user's selected vocabulary candidates.
func (c *Client) SubmitProposedVocab(ctx context.Context, articleID uint64, words []model.ProposedWord) error {
	_, err := c.post(ctx, fmt.Sprintf("%s/ie/article/%d/proposed_vocab", c.private, articleID), words, nil)
	return err
}

// LearningVocab fetches the confirmed learning vocabulary for an article.
// A non-success status means no confirmed list exists yet.
func (c *Client) LearningVocab(ctx context.Context, articleID uint64) ([]model.LearningWord, error) {
	var words []model.LearningWord
	if _, err := c.get(ctx, fmt.Sprintf("%s/ie/article/%d/vocab", c.private, articleID), &words); err != nil {
		return nil, err
	}
	return words, nil
}
