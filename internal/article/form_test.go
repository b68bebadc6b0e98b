package article

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nhuongmh/langfi-go/internal/api"
	"github.com/nhuongmh/langfi-go/internal/model"
)

func newTestForm(t *testing.T, creates *atomic.Int32, created *model.Article) *Form {
	mux := http.NewServeMux()
	mux.HandleFunc("/ie/article/url", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") != "https://news.example/dogs" {
			t.Errorf("unexpected url parameter %q", r.URL.Query().Get("url"))
		}
		json.NewEncoder(w).Encode(model.Article{
			Title:   "On Dogs",
			Image:   "https://news.example/dogs.jpg",
			Content: "Dogs are good.",
		})
	})
	mux.HandleFunc("/ie/article", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		creates.Add(1)
		if err := json.NewDecoder(r.Body).Decode(created); err != nil {
			t.Errorf("failed to decode article: %v", err)
		}
		w.Write([]byte(`{}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return NewForm(api.New(ts.URL, ts.URL, nil))
}

func TestPrefill(t *testing.T) {
	var creates atomic.Int32
	var created model.Article
	form := newTestForm(t, &creates, &created)

	t.Run("requires a source link", func(t *testing.T) {
		if err := form.Prefill(context.Background()); err == nil {
			t.Error("expected an error without an origin link")
		}
	})

	form.Draft.Origin = "https://news.example/dogs"
	if err := form.Prefill(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form.Draft.Title != "On Dogs" || form.Draft.Content != "Dogs are good." {
		t.Errorf("unexpected draft: %+v", form.Draft)
	}
	if form.Draft.Origin != "https://news.example/dogs" {
		t.Errorf("origin must survive prefill, got %q", form.Draft.Origin)
	}
}

func TestSubmit(t *testing.T) {
	var creates atomic.Int32
	var created model.Article
	form := newTestForm(t, &creates, &created)
	ctx := context.Background()

	t.Run("rejects an invalid draft before any request", func(t *testing.T) {
		form.Draft = Draft{Title: "", Content: "text"}
		if err := form.Submit(ctx); err == nil {
			t.Error("expected an error for a missing title")
		}
		form.Draft = Draft{Title: "On Dogs", Origin: "not a link"}
		if err := form.Submit(ctx); err == nil {
			t.Error("expected an error for a malformed origin")
		}
		if creates.Load() != 0 {
			t.Errorf("expected no creation requests, got %d", creates.Load())
		}
	})

	form.Draft = Draft{
		Origin:  "https://news.example/dogs",
		Title:   "On Dogs",
		Content: "Dogs are good.",
	}
	if err := form.Submit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creates.Load() != 1 {
		t.Fatalf("expected one creation request, got %d", creates.Load())
	}
	if created.Title != "On Dogs" || created.Origin != "https://news.example/dogs" {
		t.Errorf("unexpected created article: %+v", created)
	}
	if form.Draft != (Draft{}) {
		t.Errorf("expected the form to clear after submission, got %+v", form.Draft)
	}
}
