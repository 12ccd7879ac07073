// Package social implements wf06: recently published articles get
// platform-specific social post drafts queued for distribution.
package social

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/services"
	"seoflow/internal/services/completion"
	"seoflow/internal/sheet"
	"seoflow/internal/workflow"
)

const component = "social"

// recentWindow bounds how far back this workflow looks for articles that
// still need social posts.
const recentWindow = 7 * 24 * time.Hour

// Workflow drafts SocialPosts rows for fresh PublishedArticles entries.
type Workflow struct {
	cfg    *config.Config
	store  *sheet.Store
	ai     completion.Service
	logger *slog.Logger

	now func() time.Time
}

// New constructs the social distribution workflow.
func New(cfg *config.Config, store *sheet.Store, ai completion.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:    cfg,
		store:  store,
		ai:     ai,
		logger: logging.NewComponentLogger(logger, component),
		now:    time.Now,
	}
}

func (w *Workflow) ID() string { return "wf06" }

func (w *Workflow) Name() string { return "Social Distribution" }

// Run drafts posts for every recently published article that has none yet.
// Articles are never mutated, so idempotence comes from the dedup check.
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	articles, err := w.store.List(ctx, sheet.TabPublishedArticles)
	if err != nil {
		return workflow.Summary{}, err
	}
	cutoff := w.now().Add(-recentWindow)
	pending := make([]*sheet.Record, 0, len(articles))
	for _, article := range articles {
		if article.CreatedAt.Before(cutoff) {
			continue
		}
		slug := article.Field("slug")
		if slug == "" {
			continue
		}
		exists, err := w.store.Has(ctx, sheet.TabSocialPosts, "slug", slug)
		if err != nil {
			return workflow.Summary{}, err
		}
		if !exists {
			pending = append(pending, article)
		}
	}
	return workflow.RunBatch(ctx, w.logger, w.store, pending, w.process)
}

type postDrafts struct {
	Posts []struct {
		Platform string `json:"platform"`
		Text     string `json:"text"`
	} `json:"posts"`
}

func (w *Workflow) process(ctx context.Context, article *sheet.Record) error {
	title := strings.TrimSpace(article.Field("title"))
	url := article.Field("url")
	if title == "" || url == "" {
		return services.Wrap(services.ErrValidation, component, "process", "published article is missing title or url", nil)
	}

	system := "You are a social media manager for a niche website. Respond with JSON only."
	user := fmt.Sprintf(
		"Article: %s\nURL: %s\nNiche: %s\n\n"+
			"Draft one post each for linkedin, twitter, and facebook. Return "+
			"{\"posts\": [{\"platform\": ..., \"text\": ...}]}.",
		title, url, w.cfg.Site.Niche,
	)
	payload, err := w.ai.CompleteJSON(ctx, system, user)
	if err != nil {
		return err
	}
	var drafts postDrafts
	if err := completion.DecodeJSON(payload, &drafts); err != nil {
		return err
	}
	if len(drafts.Posts) == 0 {
		return services.Wrap(services.ErrInvalidResponse, component, "process", "model returned no social posts", nil)
	}

	for _, post := range drafts.Posts {
		if post.Text == "" {
			continue
		}
		if _, err := w.store.Append(ctx, sheet.TabSocialPosts, map[string]string{
			"slug":     article.Field("slug"),
			"title":    title,
			"url":      url,
			"platform": post.Platform,
			"text":     post.Text,
		}); err != nil {
			return err
		}
	}

	w.logger.Info("social posts drafted",
		logging.Int64(logging.FieldRecordID, article.ID),
		logging.String("slug", article.Field("slug")),
		logging.Int("posts", len(drafts.Posts)),
	)
	return nil
}
