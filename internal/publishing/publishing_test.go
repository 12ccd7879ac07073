package publishing

import (
	"context"
	"testing"

	"seoflow/internal/logging"
	"seoflow/internal/services/wordpress"
	"seoflow/internal/sheet"
	"seoflow/internal/testsupport"
)

func approvedRow(t *testing.T, store *sheet.Store) *sheet.Record {
	t.Helper()
	row := testsupport.AppendRecord(t, store, sheet.TabPublishQueue, map[string]string{
		"title":            "Kettlebell Workouts at Home",
		"slug":             "kettlebell-workouts-at-home",
		"keyword":          "kettlebell workouts",
		"body":             "Article body.",
		"meta_description": "Practical kettlebell workouts.",
		"seo_score":        "81",
		"featured_image":   "https://images.invalid/abc.png",
	})
	ctx := context.Background()
	for _, status := range []sheet.Status{sheet.StatusIllustrated, sheet.StatusApproved} {
		if err := store.Advance(ctx, row, status); err != nil {
			t.Fatalf("Advance(%s) error = %v", status, err)
		}
	}
	return row
}

func TestRunPublishesApprovedArticles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	row := approvedRow(t, store)

	cms := wordpress.NewFake()
	wf := New(cfg, store, cms, logging.NewNop())
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("summary = %+v, want 1 processed", summary)
	}

	updated, err := store.Get(context.Background(), row.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if updated.Status != sheet.StatusPublished {
		t.Fatalf("status = %s, want published", updated.Status)
	}
	if updated.Field("url") == "" {
		t.Fatal("published URL not written back to the queue row")
	}

	articles, err := store.List(context.Background(), sheet.TabPublishedArticles)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("published articles = %d rows, want 1", len(articles))
	}
	article := articles[0]
	if article.Field("url") != updated.Field("url") || article.Field("post_id") == "" {
		t.Fatalf("article fields = %v, want CMS identity recorded", article.Fields)
	}
	if posts := cms.Posts(); len(posts) != 1 || posts[0].FeaturedImage == "" {
		t.Fatalf("cms posts = %v, want one post carrying the featured image", posts)
	}
}

func TestRunIgnoresRowsAwaitingApproval(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	row := testsupport.AppendRecord(t, store, sheet.TabPublishQueue, map[string]string{
		"title": "Not Yet Approved", "body": "Body.",
	})
	if err := store.Advance(context.Background(), row, sheet.StatusIllustrated); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	wf := New(cfg, store, wordpress.NewFake(), logging.NewNop())
	summary, err := wf.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Total() != 0 {
		t.Fatalf("summary = %+v, want the review gate respected", summary)
	}
}

func TestRunSkipsApprovedRowMissingBody(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	row := testsupport.AppendRecord(t, store, sheet.TabPublishQueue, map[string]string{"title": "No Body"})
	ctx := context.Background()
	for _, status := range []sheet.Status{sheet.StatusIllustrated, sheet.StatusApproved} {
		if err := store.Advance(ctx, row, status); err != nil {
			t.Fatalf("Advance(%s) error = %v", status, err)
		}
	}

	wf := New(cfg, store, wordpress.NewFake(), logging.NewNop())
	summary, err := wf.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Skipped != 1 {
		t.Fatalf("summary = %+v, want 1 skipped", summary)
	}
}
