package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nhuongmh/langfi-go/internal/api"
	"github.com/nhuongmh/langfi-go/internal/article"
	"github.com/nhuongmh/langfi-go/internal/config"
	"github.com/nhuongmh/langfi-go/internal/history"
	"github.com/nhuongmh/langfi-go/internal/model"
	"github.com/nhuongmh/langfi-go/internal/reading"
	"github.com/nhuongmh/langfi-go/internal/review"
	"github.com/nhuongmh/langfi-go/internal/vocab"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the local web UI. Every screen renders
// backend data and proxies user actions to it; the only local state is the
// review history log.
type Server struct {
	cfg       config.Config
	api       *api.Client
	db        *history.DB
	router    *http.ServeMux
	templates *template.Template
}

// NewServer creates and configures a new server.
func NewServer(cfg config.Config, client *api.Client, db *history.DB) *Server {
	funcs := template.FuncMap{
		"letter":           func(i int) string { return string(rune('A' + i)) },
		"add1":             func(i int) int { return i + 1 },
		"trueFalseOptions": func() []string { return model.TrueFalseOptions },
	}
	tpl, err := template.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	s := &Server{
		cfg:       cfg,
		api:       client,
		db:        db,
		router:    http.NewServeMux(),
		templates: tpl,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create sub-filesystem for static assets: %v", err)
	}
	s.router.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("/", s.handleIndex())

	// HTMX-based review routes
	s.router.HandleFunc("/review", s.handleReviewPage())
	s.router.HandleFunc("/review/next", s.handleNextCard(review.Practice))
	s.router.HandleFunc("/review/submit", s.handleSubmitRating())
	s.router.HandleFunc("/process", s.handleProcessPage())
	s.router.HandleFunc("/process/next", s.handleNextCard(review.Proposal))
	s.router.HandleFunc("/process/submit", s.handleSubmitDisposition())
	s.router.HandleFunc("/process/edit", s.handleEditCard())

	// Reading tests and vocabulary curation
	s.router.HandleFunc("/reading/", s.handleReading())
	s.router.HandleFunc("/vocab/", s.handleVocab())

	// Articles
	s.router.HandleFunc("/articles", s.handleArticles())
	s.router.HandleFunc("/articles/new", s.handleArticleForm())
	s.router.HandleFunc("/articles/load", s.handleArticleLoad())

	s.router.HandleFunc("/stats", s.handleStats())
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("render failed", "template", name, "error", err)
	}
}

func (s *Server) scope(r *http.Request) (lang, group string) {
	lang = r.FormValue("lang")
	if lang == "" {
		lang = s.cfg.Lang
	}
	group = r.FormValue("group")
	if group == "" {
		group = s.cfg.Group
	}
	return lang, group
}

// handleIndex renders the group statistics landing page.
func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		lang, _ := s.scope(r)
		data := map[string]any{"Lang": lang}
		stats, err := s.api.GroupStats(r.Context(), lang)
		if err != nil {
			data["Error"] = "Failed to fetch group stats: " + err.Error()
		}
		data["Groups"] = stats
		s.render(w, "index", data)
	}
}

type cardView struct {
	Mode    string
	Lang    string
	Group   string
	Card    *model.Card
	Error   string
	PropsJS string
}

func cardData(mode string, sess *review.Session, lang, group string) cardView {
	v := cardView{Mode: mode, Lang: lang, Group: group, Card: sess.Card(), Error: sess.Err()}
	if v.Card != nil {
		if raw, err := json.Marshal(v.Card.Properties); err == nil {
			v.PropsJS = string(raw)
		}
	}
	return v
}

func (s *Server) handleReviewPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang, group := s.scope(r)
		s.render(w, "review", cardView{Mode: "review", Lang: lang, Group: group})
	}
}

func (s *Server) handleProcessPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang, group := s.scope(r)
		s.render(w, "process", cardView{Mode: "process", Lang: lang, Group: group})
	}
}

// handleNextCard renders the card fragment for the next card in the given
// queue.
func (s *Server) handleNextCard(mode review.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang, group := s.scope(r)
		var sess *review.Session
		name := "review"
		if mode == review.Practice {
			sess = review.NewPractice(s.api, lang, group)
		} else {
			sess = review.NewProposal(s.api, lang, group)
			name = "process"
		}
		sess.Refresh(r.Context())
		s.render(w, "card", cardData(name, sess, lang, group))
	}
}

// handleSubmitRating processes a practice rating and renders the next
// card. The next card is fetched only after the submission round-trip has
// completed.
func (s *Server) handleSubmitRating() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		lang, group := s.scope(r)
		cardID, err := strconv.ParseUint(r.PostFormValue("cardID"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid card ID", http.StatusBadRequest)
			return
		}
		rating, err := review.ParseRating(r.PostFormValue("rating"))
		if err != nil {
			http.Error(w, "Invalid rating", http.StatusBadRequest)
			return
		}

		errMsg := ""
		if err := s.api.SubmitPracticeCard(r.Context(), lang, group, cardID, int(rating)); err != nil {
			errMsg = "Failed to submit card status: " + err.Error()
		} else if err := s.db.RecordReview(lang, group, cardID, rating.String(), int(rating)); err != nil {
			slog.Warn("failed to record review", "card", cardID, "error", err)
		}

		sess := review.NewPractice(s.api, lang, group)
		sess.Refresh(r.Context())
		data := cardData("review", sess, lang, group)
		if data.Error == "" {
			data.Error = errMsg
		}
		s.render(w, "card", data)
	}
}

// handleSubmitDisposition processes a learn/discard/save outcome and
// renders the next proposal card.
func (s *Server) handleSubmitDisposition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		lang, group := s.scope(r)
		cardID, err := strconv.ParseUint(r.PostFormValue("cardID"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid card ID", http.StatusBadRequest)
			return
		}
		status := r.PostFormValue("status")
		if !review.ValidDisposition(status) {
			http.Error(w, "Invalid disposition", http.StatusBadRequest)
			return
		}

		errMsg := ""
		if err := s.api.SubmitProposalCard(r.Context(), lang, cardID, status); err != nil {
			errMsg = "Failed to submit card status: " + err.Error()
		} else if err := s.db.RecordReview(lang, group, cardID, status, 0); err != nil {
			slog.Warn("failed to record review", "card", cardID, "error", err)
		}

		sess := review.NewProposal(s.api, lang, group)
		sess.Refresh(r.Context())
		data := cardData("process", sess, lang, group)
		if data.Error == "" {
			data.Error = errMsg
		}
		s.render(w, "card", data)
	}
}

// handleEditCard sends the whole edited card to the backend and renders
// the server's returned copy without advancing to the next card.
func (s *Server) handleEditCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		lang, group := s.scope(r)
		cardID, err := strconv.ParseUint(r.PostFormValue("cardID"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid card ID", http.StatusBadRequest)
			return
		}
		card := &model.Card{
			ID:    cardID,
			Front: r.PostFormValue("front"),
			Back:  r.PostFormValue("back"),
			State: r.PostFormValue("state"),
		}
		if raw := r.PostFormValue("properties"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &card.Properties); err != nil {
				http.Error(w, "Invalid card properties", http.StatusBadRequest)
				return
			}
		}

		v := cardView{Mode: r.PostFormValue("mode"), Lang: lang, Group: group}
		if v.Mode == "" {
			v.Mode = "process"
		}
		updated, err := s.api.EditCard(r.Context(), lang, card)
		if err != nil {
			v.Card = card
			v.Error = "Failed to edit card: " + err.Error()
		} else {
			v.Card = updated
		}
		if v.Card != nil {
			if raw, err := json.Marshal(v.Card.Properties); err == nil {
				v.PropsJS = string(raw)
			}
		}
		s.render(w, "card", v)
	}
}

type readingView struct {
	Article *model.Article
	Reading *model.ArticleReading
	Error   string
	Graded  bool
	Score   float64
}

func readingData(sess *reading.Session, errMsg string) readingView {
	v := readingView{
		Article: sess.Article(),
		Reading: sess.Reading(),
		Error:   sess.Err(),
		Graded:  sess.Graded(),
		Score:   sess.Score(),
	}
	if v.Error == "" {
		v.Error = errMsg
	}
	return v
}

// handleReading serves GET /reading/{id} (the test page) and
// POST /reading/{id}/submit (grading).
func (s *Server) handleReading() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/reading/")
		idStr, action, _ := strings.Cut(rest, "/")
		articleID, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid article ID", http.StatusBadRequest)
			return
		}

		sess := reading.New(s.api, articleID)
		sess.Load(r.Context())

		switch {
		case r.Method == http.MethodGet && action == "":
			s.render(w, "reading", readingData(sess, ""))
		case r.Method == http.MethodPost && action == "submit":
			s.submitReading(w, r, sess)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) submitReading(w http.ResponseWriter, r *http.Request, sess *reading.Session) {
	if sess.Reading() == nil {
		s.render(w, "reading", readingData(sess, ""))
		return
	}
	for _, q := range sess.Reading().Questions {
		if err := sess.SetAnswer(q.ID, r.PostFormValue("q"+strconv.FormatUint(q.ID, 10))); err != nil {
			break
		}
	}
	if err := sess.Submit(r.Context()); err != nil {
		s.render(w, "reading", readingData(sess, err.Error()))
		return
	}
	if sess.Graded() {
		if err := s.db.RecordReadingResult(sess.Reading().ID, sess.Score()); err != nil {
			slog.Warn("failed to record reading result", "reading", sess.Reading().ID, "error", err)
		}
	}
	s.render(w, "reading", readingData(sess, ""))
}

type vocabView struct {
	ArticleID uint64
	Article   *model.Article
	Session   *vocab.Session
	Error     string
}

// handleVocab serves GET /vocab/{articleID} and POST
// /vocab/{articleID}/submit.
func (s *Server) handleVocab() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/vocab/")
		idStr, action, _ := strings.Cut(rest, "/")
		articleID, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid article ID", http.StatusBadRequest)
			return
		}

		sess := vocab.New(s.api, articleID)
		sess.Load(r.Context())

		v := vocabView{ArticleID: articleID, Session: sess}
		if a, err := s.api.GetArticle(r.Context(), articleID); err == nil {
			v.Article = a
		}

		switch {
		case r.Method == http.MethodGet && action == "":
			v.Error = sess.Err()
			s.render(w, "vocab", v)
		case r.Method == http.MethodPost && action == "submit":
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form", http.StatusBadRequest)
				return
			}
			for _, word := range r.PostForm["new_word"] {
				sess.Add(word)
			}
			if r.PostFormValue("all") != "" {
				sess.Selection.SelectAll()
			} else {
				for _, word := range r.PostForm["selected"] {
					sess.Selection.Select(word)
				}
			}
			if err := sess.Submit(r.Context()); err != nil {
				v.Error = err.Error()
			} else {
				v.Error = sess.Err()
			}
			s.render(w, "vocab", v)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleArticles renders the article index.
func (s *Server) handleArticles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{}
		articles, err := s.api.ListArticles(r.Context())
		if err != nil {
			data["Error"] = "Failed to fetch articles: " + err.Error()
		}
		data["Articles"] = articles
		s.render(w, "articles", data)
	}
}

// handleArticleForm serves the new-article form and its submission.
func (s *Server) handleArticleForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := article.NewForm(s.api)
		switch r.Method {
		case http.MethodGet:
			s.render(w, "article_form", map[string]any{"Draft": form.Draft})
		case http.MethodPost:
			form.Draft = article.Draft{
				Origin:  r.PostFormValue("origin"),
				Title:   r.PostFormValue("title"),
				Image:   r.PostFormValue("image"),
				Content: r.PostFormValue("content"),
			}
			if err := form.Submit(r.Context()); err != nil {
				s.render(w, "article_form", map[string]any{"Draft": form.Draft, "Error": err.Error()})
				return
			}
			http.Redirect(w, r, "/articles", http.StatusSeeOther)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleArticleLoad pre-fills the form from a pasted source link.
func (s *Server) handleArticleLoad() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		form := article.NewForm(s.api)
		form.Draft.Origin = r.PostFormValue("origin")
		data := map[string]any{}
		if err := form.Prefill(r.Context()); err != nil {
			data["Error"] = err.Error()
		}
		data["Draft"] = form.Draft
		s.render(w, "article_form", data)
	}
}

// handleStats renders backend group statistics next to the local review
// history.
func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang, _ := s.scope(r)
		data := map[string]any{"Lang": lang}

		groups, err := s.api.GroupStats(r.Context(), lang)
		if err != nil {
			data["Error"] = "Failed to fetch group stats: " + err.Error()
		}
		data["Groups"] = groups

		if counts, err := s.db.OutcomeCounts(); err == nil {
			data["Outcomes"] = counts
		}
		if avg, n, err := s.db.AverageReadingScore(); err == nil {
			data["ReadingAvg"] = avg
			data["ReadingCount"] = n
		}
		if recent, err := s.db.RecentReviews(20); err == nil {
			data["Recent"] = recent
		}
		s.render(w, "stats", data)
	}
}
