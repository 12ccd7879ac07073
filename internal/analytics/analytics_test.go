package analytics

import (
	"context"
	"testing"

	"seoflow/internal/logging"
	"seoflow/internal/services/dataforseo"
	"seoflow/internal/sheet"
	"seoflow/internal/testsupport"
)

func TestRunAppendsRankingsAndDailySnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.AppendRecord(t, store, sheet.TabPublishedArticles, map[string]string{
		"title": "Kettlebell Workouts", "keyword": "kettlebell workouts", "url": "https://example.com/kw",
	})
	testsupport.AppendRecord(t, store, sheet.TabMasterLeadList, map[string]string{"email": "a@example.com"})

	keywords := dataforseo.NewFake()
	keywords.Positions = map[string]int{"kettlebell workouts": 7}

	wf := New(cfg, store, keywords, logging.NewNop())
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Processed != 2 {
		t.Fatalf("summary = %+v, want one ranking row plus one metrics row", summary)
	}

	rankings, err := store.List(context.Background(), sheet.TabKeywordRankings)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rankings) != 1 || rankings[0].Field("position") != "7" {
		t.Fatalf("rankings = %v, want the tracked keyword at position 7", rankings)
	}

	metrics, err := store.List(context.Background(), sheet.TabDailyMetrics)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("metrics rows = %d, want 1", len(metrics))
	}
	snapshot := metrics[0]
	if snapshot.Field("articles_published") != "1" || snapshot.Field("leads_total") != "1" || snapshot.Field("avg_position") != "7.0" {
		t.Fatalf("snapshot fields = %v", snapshot.Fields)
	}
}

func TestRunSnapshotsOncePerDay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.AppendRecord(t, store, sheet.TabPublishedArticles, map[string]string{
		"title": "Kettlebell Workouts", "keyword": "kettlebell workouts", "url": "https://example.com/kw",
	})

	wf := New(cfg, store, dataforseo.NewFake(), logging.NewNop())
	if _, err := wf.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.Processed != 0 {
		t.Fatalf("summary = %+v, want the second snapshot suppressed", summary)
	}
	metrics, err := store.List(context.Background(), sheet.TabDailyMetrics)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("metrics rows = %d, want exactly one per day", len(metrics))
	}
}

func TestRunSnapshotsEmptyPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	wf := New(cfg, store, dataforseo.NewFake(), logging.NewNop())
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("summary = %+v, want just the metrics row", summary)
	}
}
