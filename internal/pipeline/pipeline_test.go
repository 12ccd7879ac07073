package pipeline

import (
	"context"
	"fmt"
	"testing"

	"seoflow/internal/logging"
	"seoflow/internal/notify"
	"seoflow/internal/services/completion"
	"seoflow/internal/sheet"
	"seoflow/internal/testsupport"
)

func TestNewRegistryOrdersAllWorkflows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	registry := NewRegistry(cfg, store, NewCapabilities(cfg), logging.NewNop())
	all := registry.All()
	if len(all) != 11 {
		t.Fatalf("registry holds %d workflows, want 11", len(all))
	}
	for i, wf := range all {
		want := fmt.Sprintf("wf%02d", i+1)
		if wf.ID() != want {
			t.Errorf("position %d has workflow %s, want %s", i, wf.ID(), want)
		}
	}
}

func TestNewCapabilitiesHonorsDryRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	caps := NewCapabilities(cfg)
	if _, ok := caps.AI.(*completion.Fake); !ok {
		t.Fatalf("dry-run AI capability is %T, want the fake", caps.AI)
	}

	live := testsupport.NewConfig(t, testsupport.WithLiveProviders())
	liveCaps := NewCapabilities(live)
	if _, ok := liveCaps.AI.(*completion.Fake); ok {
		t.Fatal("live configuration should not select the fake client")
	}
}

func TestDryRunPipelineEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.AppendRecord(t, store, sheet.TabNicheInputs, map[string]string{"niche": "home fitness"})

	manager := NewManager(cfg, store, logging.NewNop(), notify.NewCapture())
	ctx := context.Background()
	for _, id := range []string{"wf01", "wf02", "wf03", "wf04"} {
		if _, err := manager.Run(ctx, id); err != nil {
			t.Fatalf("Run(%s) error = %v", id, err)
		}
	}

	// The dry-run fakes should have carried one keyword batch from niche
	// input all the way to illustrated publish-queue rows.
	queue, err := store.List(ctx, sheet.TabPublishQueue)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(queue) == 0 {
		t.Fatal("publish queue is empty after running wf01-wf04")
	}
	for _, row := range queue {
		if row.Status != sheet.StatusIllustrated {
			t.Fatalf("queue row %d status = %s, want illustrated awaiting approval", row.ID, row.Status)
		}
	}
}
