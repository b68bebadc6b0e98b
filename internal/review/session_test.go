package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nhuongmh/langfi-go/internal/api"
	"github.com/nhuongmh/langfi-go/internal/model"
)

func TestParseRating(t *testing.T) {
	cases := map[string]Rating{
		"again": Again,
		"hard":  Hard,
		"good":  Good,
		"easy":  Easy,
	}
	for name, want := range cases {
		got, err := ParseRating(name)
		if err != nil {
			t.Errorf("ParseRating(%q) returned error: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseRating(%q) = %d, want %d", name, got, want)
		}
	}

	t.Run("unknown rating fails fast", func(t *testing.T) {
		if _, err := ParseRating("great"); !errors.Is(err, model.ErrUnknownRating) {
			t.Errorf("expected ErrUnknownRating, got %v", err)
		}
		if _, err := ParseRating(""); !errors.Is(err, model.ErrUnknownRating) {
			t.Errorf("expected ErrUnknownRating, got %v", err)
		}
	})
}

// fakeBackend records the method+path of every request in order.
type fakeBackend struct {
	mu       sync.Mutex
	requests []string
	cardID   uint64
	failNext bool
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.RequestURI())
		fail := b.failNext
		b.failNext = false
		b.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"boom"}`))
			return
		}

		switch {
		case r.URL.Path == "/practice/jpx/minna/fetch" || r.URL.Path == "/process/jpx/fetch":
			b.mu.Lock()
			b.cardID++
			id := b.cardID
			b.mu.Unlock()
			json.NewEncoder(w).Encode(model.Card{
				ID: id, Front: "犬", Back: "dog", State: model.CardNew,
				Properties: map[string]any{"reading": "いぬ"},
			})
		case r.URL.Path == "/process/jpx/edit":
			var card model.Card
			json.NewDecoder(r.Body).Decode(&card)
			json.NewEncoder(w).Encode(card)
		default:
			w.Write([]byte(`{}`))
		}
	})
}

func (b *fakeBackend) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *fakeBackend) failOnce() {
	b.mu.Lock()
	b.failNext = true
	b.mu.Unlock()
}

func newTestSession(t *testing.T, mode Mode) (*Session, *fakeBackend) {
	backend := &fakeBackend{}
	ts := httptest.NewServer(backend.handler(t))
	t.Cleanup(ts.Close)
	client := api.New(ts.URL, ts.URL, nil)
	if mode == Practice {
		return NewPractice(client, "jpx", "minna"), backend
	}
	return NewProposal(client, "jpx", "minna"), backend
}

func TestSubmitThenRefetchSequencing(t *testing.T) {
	sess, backend := newTestSession(t, Practice)
	ctx := context.Background()

	sess.Refresh(ctx)
	if sess.Card() == nil {
		t.Fatal("expected a card after refresh")
	}
	firstID := sess.Card().ID

	if err := sess.SubmitRating(ctx, "good", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"GET /practice/jpx/minna/fetch",
		fmt.Sprintf("POST /practice/jpx/minna/submit?cardID=%d&rating=3", firstID),
		"GET /practice/jpx/minna/fetch",
	}
	got := backend.recorded()
	if len(got) != len(want) {
		t.Fatalf("expected %d requests, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("request %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if sess.Card().ID == firstID {
		t.Error("expected the next card to replace the submitted one")
	}
}

func TestSubmitWithoutRefetch(t *testing.T) {
	sess, backend := newTestSession(t, Practice)
	ctx := context.Background()

	sess.Refresh(ctx)
	if err := sess.SubmitRating(ctx, "again", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := backend.recorded()
	if len(got) != 2 {
		t.Fatalf("expected fetch+submit only, got %v", got)
	}
}

func TestUnknownRatingMakesNoRequest(t *testing.T) {
	sess, backend := newTestSession(t, Practice)
	ctx := context.Background()

	sess.Refresh(ctx)
	before := len(backend.recorded())

	err := sess.SubmitRating(ctx, "great", true)
	if !errors.Is(err, model.ErrUnknownRating) {
		t.Fatalf("expected ErrUnknownRating, got %v", err)
	}
	if len(backend.recorded()) != before {
		t.Errorf("expected no requests after an unknown rating, got %v", backend.recorded()[before:])
	}
}

func TestRefreshWithoutGroup(t *testing.T) {
	backend := &fakeBackend{}
	ts := httptest.NewServer(backend.handler(t))
	t.Cleanup(ts.Close)

	sess := NewProposal(api.New(ts.URL, ts.URL, nil), "jpx", "")
	sess.Refresh(context.Background())

	if sess.Err() != model.ErrNoGroup.Error() {
		t.Errorf("expected no-group error, got %q", sess.Err())
	}
	if len(backend.recorded()) != 0 {
		t.Errorf("expected no request without a group, got %v", backend.recorded())
	}
}

func TestFailedSubmitStillRefetches(t *testing.T) {
	sess, backend := newTestSession(t, Practice)
	ctx := context.Background()

	sess.Refresh(ctx)
	backend.failOnce()
	if err := sess.SubmitRating(ctx, "hard", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := backend.recorded()
	if len(got) != 3 {
		t.Fatalf("expected submit failure to be followed by a refetch, got %v", got)
	}
	// The refetch succeeded, so the earlier submit error is cleared and a
	// fresh card is on screen.
	if sess.Card() == nil {
		t.Error("expected a card after the refetch")
	}
}

func TestDispositionSubmit(t *testing.T) {
	sess, backend := newTestSession(t, Proposal)
	ctx := context.Background()

	sess.Refresh(ctx)
	id := sess.Card().ID
	if err := sess.SubmitDisposition(ctx, DispositionLearn, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := backend.recorded()
	want := fmt.Sprintf("POST /process/jpx/submit?cardID=%d&status=learn", id)
	if len(got) != 3 || got[1] != want {
		t.Errorf("expected %q in sequence, got %v", want, got)
	}

	if err := sess.SubmitDisposition(ctx, "burn", false); err == nil {
		t.Error("expected an error for an unknown disposition")
	}
}

func TestEditor(t *testing.T) {
	sess, _ := newTestSession(t, Proposal)
	ctx := context.Background()
	sess.Refresh(ctx)

	t.Run("cancel resets the working copy", func(t *testing.T) {
		sess.SetEdit("猫", "cat")
		if sess.Card().Front != "犬" {
			t.Error("canonical card should not change while editing")
		}
		sess.CancelEdit()
		if sess.EditCopy().Front != "犬" || sess.EditCopy().Back != "dog" {
			t.Errorf("expected working copy reset, got %+v", sess.EditCopy())
		}
	})

	t.Run("save replaces both copies with the server card", func(t *testing.T) {
		sess.SetEdit("猫", "cat")
		sess.SaveEdit(ctx)
		if sess.Err() != "" {
			t.Fatalf("unexpected error: %s", sess.Err())
		}
		if sess.Card().Front != "猫" || sess.Card().Back != "cat" {
			t.Errorf("expected canonical card updated, got %+v", sess.Card())
		}
		if sess.EditCopy().Front != "猫" {
			t.Errorf("expected working copy updated, got %+v", sess.EditCopy())
		}
	})
}

func TestSubmitWithNoCardIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	ts := httptest.NewServer(backend.handler(t))
	t.Cleanup(ts.Close)

	sess := NewPractice(api.New(ts.URL, ts.URL, nil), "jpx", "minna")
	if err := sess.SubmitRating(context.Background(), "good", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.recorded()) != 0 {
		t.Errorf("expected no requests without a card, got %v", backend.recorded())
	}
}
