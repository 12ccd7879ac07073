package research

import (
	"context"
	"testing"

	"seoflow/internal/logging"
	"seoflow/internal/services/completion"
	"seoflow/internal/services/dataforseo"
	"seoflow/internal/sheet"
	"seoflow/internal/testsupport"
)

func TestRunQueuesTopKeywordsAndAdvancesInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.MinKeywordVolume = 100
	cfg.Workflow.TopKeywordsToQueue = 2
	store := testsupport.MustOpenStore(t, cfg)
	input := testsupport.AppendRecord(t, store, sheet.TabNicheInputs, map[string]string{"niche": "home fitness"})

	ai := completion.NewFake(`{"keywords": ["kettlebell workouts", "resistance bands", "obscure gear"], "gaps": [{"topic": "apartment workouts", "competitor": "example.org", "opportunity": "thin content"}]}`)
	keywords := dataforseo.NewFake()
	keywords.Metrics = map[string]dataforseo.KeywordMetrics{
		"kettlebell workouts": {Keyword: "kettlebell workouts", SearchVolume: 5000, Competition: 0.3},
		"resistance bands":    {Keyword: "resistance bands", SearchVolume: 2200, Competition: 0.4},
		"obscure gear":        {Keyword: "obscure gear", SearchVolume: 40, Competition: 0.1},
	}

	wf := New(cfg, store, ai, keywords, logging.NewNop())
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("summary = %+v, want 1 processed", summary)
	}

	advanced, err := store.Get(context.Background(), input.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if advanced.Status != sheet.StatusResearched {
		t.Fatalf("input status = %s, want researched", advanced.Status)
	}

	queue, err := store.List(context.Background(), sheet.TabContentQueue)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("queued %d keywords, want the configured top 2", len(queue))
	}
	if queue[0].Field("keyword") != "kettlebell workouts" {
		t.Fatalf("first queued keyword = %q, want the highest volume first", queue[0].Field("keyword"))
	}

	research, err := store.List(context.Background(), sheet.TabKeywordResearch)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(research) != 2 {
		t.Fatalf("recorded %d research rows, want low-volume keyword filtered out", len(research))
	}
	gaps, err := store.List(context.Background(), sheet.TabCompetitorGaps)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(gaps) != 1 || gaps[0].Field("topic") != "apartment workouts" {
		t.Fatalf("gaps = %v, want the single competitor gap recorded", gaps)
	}
}

func TestRunSkipsInputMissingNiche(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	bad := testsupport.AppendRecord(t, store, sheet.TabNicheInputs, map[string]string{"notes": "no niche set"})

	wf := New(cfg, store, completion.NewFake(), dataforseo.NewFake(), logging.NewNop())
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Skipped != 1 || summary.Processed != 0 {
		t.Fatalf("summary = %+v, want 1 skipped", summary)
	}

	record, err := store.Get(context.Background(), bad.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record.Status != sheet.StatusNew || record.LastError == "" {
		t.Fatalf("record = %+v, want status unchanged with last_error set", record)
	}
}

func TestRunDedupsAlreadyQueuedKeywords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.AppendRecord(t, store, sheet.TabNicheInputs, map[string]string{"niche": "home fitness"})
	testsupport.AppendRecord(t, store, sheet.TabContentQueue, map[string]string{"keyword": "kettlebell workouts"})

	ai := completion.NewFake(`{"keywords": ["kettlebell workouts"], "gaps": []}`)
	keywords := dataforseo.NewFake()
	keywords.Metrics = map[string]dataforseo.KeywordMetrics{
		"kettlebell workouts": {Keyword: "kettlebell workouts", SearchVolume: 5000},
	}

	wf := New(cfg, store, ai, keywords, logging.NewNop())
	if _, err := wf.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	queue, err := store.List(context.Background(), sheet.TabContentQueue)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("queue has %d rows, want the duplicate suppressed", len(queue))
	}
}

func TestRunSecondPassIsNoOp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.AppendRecord(t, store, sheet.TabNicheInputs, map[string]string{"niche": "home fitness"})

	wf := New(cfg, store, completion.NewFake(), dataforseo.NewFake(), logging.NewNop())
	if _, err := wf.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.Total() != 0 {
		t.Fatalf("second run touched %d records, want 0", summary.Total())
	}
}
