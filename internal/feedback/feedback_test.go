package feedback

import (
	"context"
	"testing"

	"seoflow/internal/logging"
	"seoflow/internal/services/completion"
	"seoflow/internal/sheet"
	"seoflow/internal/testsupport"
)

func seedHistory(t *testing.T, store *sheet.Store) {
	t.Helper()
	testsupport.AppendRecord(t, store, sheet.TabDailyMetrics, map[string]string{
		"date": "2026-08-28", "articles_published": "12", "keywords_ranking": "8", "avg_position": "14.5", "leads_total": "40",
	})
	testsupport.AppendRecord(t, store, sheet.TabKeywordRankings, map[string]string{
		"date": "2026-08-28", "keyword": "kettlebell workouts", "position": "24",
	})
}

func TestRunClosesTheLoopAppendOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	seedHistory(t, store)
	historical, err := store.List(context.Background(), sheet.TabDailyMetrics)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	ai := completion.NewFake(`{
		"recommendations": ["Refresh the kettlebell article", "Target beginner keywords"],
		"keywords": ["beginner kettlebell routine"],
		"refresh": [{"slug": "kettlebell-workouts", "title": "Kettlebell Workouts, Updated", "keyword": "kettlebell workouts", "outline": ["What changed", "New programming"]}]
	}`)
	wf := New(cfg, store, ai, logging.NewNop())
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// One log row, one queued keyword, one refresh calendar row.
	if summary.Processed != 3 {
		t.Fatalf("summary = %+v, want 3 appended rows", summary)
	}

	logRows, err := store.List(context.Background(), sheet.TabOptimizationLog)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(logRows) != 1 || logRows[0].Field("recommendations") == "" {
		t.Fatalf("optimization log = %v", logRows)
	}

	queue, err := store.List(context.Background(), sheet.TabContentQueue)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(queue) != 1 || queue[0].Status != sheet.StatusNew || queue[0].Field("source") != "optimization" {
		t.Fatalf("content queue = %v, want the new keyword seeded at new", queue)
	}

	calendar, err := store.List(context.Background(), sheet.TabContentCalendar)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(calendar) != 1 || calendar[0].Field("refresh_of") != "kettlebell-workouts" {
		t.Fatalf("calendar = %v, want one refresh entry", calendar)
	}

	// Historical rows must be byte-for-byte untouched.
	after, err := store.List(context.Background(), sheet.TabDailyMetrics)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(after) != len(historical) {
		t.Fatalf("metrics rows changed from %d to %d", len(historical), len(after))
	}
	for i := range after {
		if after[i].UpdatedAt != historical[i].UpdatedAt {
			t.Fatalf("historical row %d was mutated", after[i].ID)
		}
	}
}

func TestRunAnalyzesOncePerDay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	seedHistory(t, store)

	wf := New(cfg, store, completion.NewFake(), logging.NewNop())
	if _, err := wf.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.Processed != 0 {
		t.Fatalf("summary = %+v, want the repeat analysis suppressed", summary)
	}
}

func TestRunDedupsQueuedKeywords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	seedHistory(t, store)
	testsupport.AppendRecord(t, store, sheet.TabContentQueue, map[string]string{"keyword": "beginner kettlebell routine"})

	ai := completion.NewFake(`{"recommendations": ["Keep going"], "keywords": ["beginner kettlebell routine"], "refresh": []}`)
	wf := New(cfg, store, ai, logging.NewNop())
	if _, err := wf.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	queue, err := store.List(context.Background(), sheet.TabContentQueue)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("queue rows = %d, want the duplicate suppressed", len(queue))
	}
}

func TestRunNoOpsWithoutHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	wf := New(cfg, store, completion.NewFake(), logging.NewNop())
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Processed != 0 || len(summary.Notes) == 0 {
		t.Fatalf("summary = %+v, want a noted no-op", summary)
	}
}
