package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/nhuongmh/langfi-go/internal/api"
	"github.com/nhuongmh/langfi-go/internal/config"
	"github.com/nhuongmh/langfi-go/internal/history"
	"github.com/nhuongmh/langfi-go/internal/review"
	"github.com/nhuongmh/langfi-go/internal/web"
)

const usage = `Usage: langfi <command> [flags]

Commands:
  serve     Run the local web UI
  review    Terminal practice session (again/hard/good/easy)
  process   Terminal proposal curation session (learn/discard/save)
  stats     Show group statistics and local review history
`

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := args[0]

	flags := config.Flags()
	if err := flags.Parse(args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}
	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	defer db.Close()

	client := api.New(cfg.PublicURL, cfg.PrivateURL, &http.Client{Timeout: cfg.Timeout()})
	ctx := context.Background()

	switch command {
	case "serve":
		serve(cfg, client, db)
	case "review":
		runSession(ctx, review.NewPractice(client, cfg.Lang, cfg.Group), cfg, db, practiceActions)
	case "process":
		runSession(ctx, review.NewProposal(client, cfg.Lang, cfg.Group), cfg, db, proposalActions)
	case "stats":
		showStats(ctx, client, cfg, db)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func serve(cfg config.Config, client *api.Client, db *history.DB) {
	server := web.NewServer(cfg, client, db)
	slog.Info("Serving web UI", "listen", cfg.Listen, "public", cfg.PublicURL, "private", cfg.PrivateURL)
	if err := http.ListenAndServe(cfg.Listen, server); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// action maps a prompt key to the outcome submitted to the backend.
type action struct {
	key     string
	outcome string
	rating  review.Rating // zero for dispositions
}

var practiceActions = []action{
	{"1", "again", review.Again},
	{"2", "hard", review.Hard},
	{"3", "good", review.Good},
	{"4", "easy", review.Easy},
}

var proposalActions = []action{
	{"l", review.DispositionLearn, 0},
	{"d", review.DispositionDiscard, 0},
	{"s", review.DispositionSave, 0},
}

// runSession drives a terminal review loop: show the front, reveal the
// back on demand, submit the chosen outcome, and move on to the next card.
func runSession(ctx context.Context, sess *review.Session, cfg config.Config, db *history.DB, actions []action) {
	reader := bufio.NewReader(os.Stdin)
	sess.Refresh(ctx)

	for {
		if sess.Err() != "" {
			fmt.Println("!", sess.Err())
		}
		card := sess.Card()
		if card == nil {
			fmt.Println("No more cards.")
			return
		}

		fmt.Println("\n========================================")
		fmt.Printf("Front: %s\n", card.Front)
		fmt.Println("Press Enter to show the back, q to quit...")
		line, _ := reader.ReadString('\n')
		if strings.TrimSpace(line) == "q" {
			return
		}

		fmt.Printf("Back:  %s\n", card.Back)
		for k, v := range card.Properties {
			fmt.Printf("  %s: %v\n", k, v)
		}
		if !card.FsrsData.Due.IsZero() {
			fmt.Printf("Due %s, interval %dd\n", card.FsrsData.Due.Format("2006-01-02"), card.FsrsData.ScheduledDays)
		}

		var prompts []string
		for _, a := range actions {
			prompts = append(prompts, fmt.Sprintf("%s=%s", a.key, a.outcome))
		}
		fmt.Printf("[%s, e=edit, q=quit]: ", strings.Join(prompts, ", "))
		line, _ = reader.ReadString('\n')
		choice := strings.TrimSpace(line)

		switch choice {
		case "q":
			return
		case "e":
			editCard(ctx, sess, reader)
			continue
		}

		matched := false
		for _, a := range actions {
			if choice != a.key && choice != a.outcome {
				continue
			}
			matched = true
			cardID := card.ID
			var err error
			if a.rating != 0 {
				err = sess.SubmitRating(ctx, a.outcome, true)
			} else {
				err = sess.SubmitDisposition(ctx, a.outcome, true)
			}
			if err != nil {
				log.Fatalf("Failed to submit: %v", err)
			}
			if dbErr := db.RecordReview(cfg.Lang, cfg.Group, cardID, a.outcome, int(a.rating)); dbErr != nil {
				slog.Warn("failed to record review", "card", cardID, "error", dbErr)
			}
			break
		}
		if !matched {
			fmt.Println("Unrecognized choice.")
		}
	}
}

// editCard prompts for replacement text and saves the whole card. The
// session stays on the same card afterwards.
func editCard(ctx context.Context, sess *review.Session, reader *bufio.Reader) {
	edit := sess.EditCopy()
	if edit == nil {
		return
	}
	fmt.Printf("Front [%s]: ", edit.Front)
	front, _ := reader.ReadString('\n')
	fmt.Printf("Back [%s]: ", edit.Back)
	back, _ := reader.ReadString('\n')

	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" {
		front = edit.Front
	}
	if back == "" {
		back = edit.Back
	}
	sess.SetEdit(front, back)
	sess.SaveEdit(ctx)
	if sess.Err() != "" {
		fmt.Println("!", sess.Err())
	}
}

func showStats(ctx context.Context, client *api.Client, cfg config.Config, db *history.DB) {
	groups, err := client.GroupStats(ctx, cfg.Lang)
	if err != nil {
		fmt.Printf("Failed to fetch group stats: %v\n", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tCARDS\tPROPOSAL\tLEARNING\tDISCARD\tSAVE")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", g.Group, g.NumCards, g.Proposal, g.Learning, g.Discard, g.Save)
	}
	w.Flush()

	counts, err := db.OutcomeCounts()
	if err != nil {
		log.Fatalf("Failed to read local history: %v", err)
	}
	if len(counts) > 0 {
		fmt.Println("\nLocal reviews:")
		for outcome, n := range counts {
			fmt.Printf("  %s: %d\n", outcome, n)
		}
	}
	if avg, n, err := db.AverageReadingScore(); err == nil && n > 0 {
		fmt.Printf("\nReading tests: %d, average score %.1f\n", n, avg)
	}
}
