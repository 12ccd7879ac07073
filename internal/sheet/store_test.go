package sheet_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"seoflow/internal/services"
	"seoflow/internal/sheet"
	"seoflow/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record, err := store.Append(ctx, sheet.TabContentQueue, map[string]string{
		"keyword": "adjustable dumbbells",
		"intent":  "commercial",
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if record.ID == 0 {
		t.Fatal("expected record ID to be assigned")
	}
	if record.Status != sheet.StatusNew {
		t.Fatalf("expected initial status new, got %q", record.Status)
	}

	fetched, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched == nil || fetched.Field("keyword") != "adjustable dumbbells" {
		t.Fatalf("unexpected fetched record: %#v", fetched)
	}
}

func TestAppendOnlyTabsStartRecorded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	record := testsupport.AppendRecord(t, store, sheet.TabKeywordResearch, map[string]string{
		"keyword": "resistance bands",
	})
	if record.Status != sheet.StatusRecorded {
		t.Fatalf("expected recorded status, got %q", record.Status)
	}
	if !record.Terminal() {
		t.Fatal("expected append-only record to be terminal")
	}
}

func TestAdvanceFollowsSequence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.AppendRecord(t, store, sheet.TabPublishQueue, map[string]string{
		"title": "Best Home Gym Setups",
	})
	if record.Status != sheet.StatusReady {
		t.Fatalf("expected ready, got %q", record.Status)
	}

	steps := []sheet.Status{sheet.StatusIllustrated, sheet.StatusApproved, sheet.StatusPublished}
	for _, next := range steps {
		if err := store.Advance(ctx, record, next); err != nil {
			t.Fatalf("Advance to %s failed: %v", next, err)
		}
		if record.Status != next {
			t.Fatalf("expected in-memory status %s, got %s", next, record.Status)
		}
	}

	fetched, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Status != sheet.StatusPublished {
		t.Fatalf("expected persisted status published, got %q", fetched.Status)
	}
}

func TestAdvanceRejectsRegressionAndSkips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.AppendRecord(t, store, sheet.TabPublishQueue, nil)

	// Skipping a step is rejected.
	err := store.Advance(ctx, record, sheet.StatusApproved)
	if err == nil {
		t.Fatal("expected error when skipping illustrated")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := store.Advance(ctx, record, sheet.StatusIllustrated); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// Moving backwards is rejected.
	if err := store.Advance(ctx, record, sheet.StatusReady); err == nil {
		t.Fatal("expected error when regressing to ready")
	}

	fetched, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Status != sheet.StatusIllustrated {
		t.Fatalf("expected status unchanged at illustrated, got %q", fetched.Status)
	}
}

func TestAdvanceAllowsBranchingTerminals(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	hot := testsupport.AppendRecord(t, store, sheet.TabMasterLeadList, map[string]string{"email": "a@example.com"})
	cold := testsupport.AppendRecord(t, store, sheet.TabMasterLeadList, map[string]string{"email": "b@example.com"})

	for _, record := range []*sheet.Record{hot, cold} {
		if err := store.Advance(ctx, record, sheet.StatusNurturing); err != nil {
			t.Fatalf("Advance to nurturing failed: %v", err)
		}
	}
	if err := store.Advance(ctx, hot, sheet.StatusConverted); err != nil {
		t.Fatalf("Advance to converted failed: %v", err)
	}
	if err := store.Advance(ctx, cold, sheet.StatusPassive); err != nil {
		t.Fatalf("Advance to passive failed: %v", err)
	}
	if !hot.Terminal() || !cold.Terminal() {
		t.Fatal("expected both branch targets to be terminal")
	}
}

func TestRecordsByStatusOrdersAndLimits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		testsupport.AppendRecord(t, store, sheet.TabContentQueue, map[string]string{
			"keyword": fmt.Sprintf("keyword-%d", i),
		})
	}

	records, err := store.RecordsByStatus(ctx, sheet.TabContentQueue, sheet.StatusNew, 3)
	if err != nil {
		t.Fatalf("RecordsByStatus failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, record := range records {
		if want := fmt.Sprintf("keyword-%d", i); record.Field("keyword") != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, record.Field("keyword"))
		}
	}

	all, err := store.RecordsByStatus(ctx, sheet.TabContentQueue, sheet.StatusNew, 0)
	if err != nil {
		t.Fatalf("RecordsByStatus failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 records, got %d", len(all))
	}
}

func TestHasDetectsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.AppendRecord(t, store, sheet.TabKeywordResearch, map[string]string{
		"keyword": "kettlebell swings",
	})

	found, err := store.Has(ctx, sheet.TabKeywordResearch, "keyword", "kettlebell swings")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !found {
		t.Fatal("expected duplicate to be found")
	}

	missing, err := store.Has(ctx, sheet.TabKeywordResearch, "keyword", "burpees")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if missing {
		t.Fatal("expected no match for unseen keyword")
	}
}

func TestUpdateFieldsMergesWithoutStatusChange(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.AppendRecord(t, store, sheet.TabContentCalendar, map[string]string{
		"title": "Draft Title",
	})

	if err := store.UpdateFields(ctx, record.ID, map[string]string{
		"title":      "Final Title",
		"word_count": "1800",
	}); err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}

	fetched, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Status != sheet.StatusPlanned {
		t.Fatalf("expected status unchanged, got %q", fetched.Status)
	}
	if fetched.Field("title") != "Final Title" || fetched.Field("word_count") != "1800" {
		t.Fatalf("unexpected fields: %#v", fetched.Fields)
	}
}

func TestSetLastErrorAndClearOnAdvance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.AppendRecord(t, store, sheet.TabContentQueue, nil)

	if err := store.SetLastError(ctx, record.ID, "upstream timeout"); err != nil {
		t.Fatalf("SetLastError failed: %v", err)
	}
	fetched, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.LastError != "upstream timeout" {
		t.Fatalf("expected last error persisted, got %q", fetched.LastError)
	}
	if fetched.Status != sheet.StatusNew {
		t.Fatalf("expected failure to keep status, got %q", fetched.Status)
	}

	if err := store.Advance(ctx, fetched, sheet.StatusPlanned); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	cleared, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cleared.LastError != "" {
		t.Fatalf("expected last error cleared on advance, got %q", cleared.LastError)
	}
}

func TestStatsGroupsByTabAndStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.AppendRecord(t, store, sheet.TabContentQueue, nil)
	testsupport.AppendRecord(t, store, sheet.TabContentQueue, nil)
	planned := testsupport.AppendRecord(t, store, sheet.TabContentQueue, nil)
	if err := store.Advance(ctx, planned, sheet.StatusPlanned); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	testsupport.AppendRecord(t, store, sheet.TabKeywordResearch, nil)

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[sheet.TabContentQueue][sheet.StatusNew] != 2 {
		t.Fatalf("unexpected new count: %#v", stats)
	}
	if stats[sheet.TabContentQueue][sheet.StatusPlanned] != 1 {
		t.Fatalf("unexpected planned count: %#v", stats)
	}
	if stats[sheet.TabKeywordResearch][sheet.StatusRecorded] != 1 {
		t.Fatalf("unexpected recorded count: %#v", stats)
	}
}

func TestHealthReportsDatabaseState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.AppendRecord(t, store, sheet.TabContentQueue, nil)

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("expected healthy database: %#v", health)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.TotalRecords != 1 {
		t.Fatalf("expected 1 record, got %d", health.TotalRecords)
	}
}
