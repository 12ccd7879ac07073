// Package publishing implements wf05: approved articles are pushed to the
// CMS and recorded in the published-articles log. Approval itself is a
// manual advance from "illustrated", this workflow never bypasses it.
package publishing

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/services"
	"seoflow/internal/services/wordpress"
	"seoflow/internal/sheet"
	"seoflow/internal/workflow"
)

const component = "publishing"

// Workflow publishes PublishQueue rows at "approved".
type Workflow struct {
	cfg    *config.Config
	store  *sheet.Store
	cms    wordpress.Service
	logger *slog.Logger
}

// New constructs the publishing workflow.
func New(cfg *config.Config, store *sheet.Store, cms wordpress.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:    cfg,
		store:  store,
		cms:    cms,
		logger: logging.NewComponentLogger(logger, component),
	}
}

func (w *Workflow) ID() string { return "wf05" }

func (w *Workflow) Name() string { return "Publishing" }

// Run publishes every PublishQueue record at "approved" and advances the
// survivors to "published".
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	records, err := w.store.RecordsByStatus(ctx, sheet.TabPublishQueue, sheet.StatusApproved, w.cfg.Workflow.RecordLimit)
	if err != nil {
		return workflow.Summary{}, err
	}
	return workflow.RunBatch(ctx, w.logger, w.store, records, w.process)
}

func (w *Workflow) process(ctx context.Context, record *sheet.Record) error {
	title := strings.TrimSpace(record.Field("title"))
	body := record.Field("body")
	if title == "" || body == "" {
		return services.Wrap(services.ErrValidation, component, "process", "approved row is missing title or body", nil)
	}

	published, err := w.cms.Publish(ctx, wordpress.Post{
		Title:           title,
		Slug:            record.Field("slug"),
		Content:         body,
		Excerpt:         record.Field("meta_description"),
		FeaturedImage:   record.Field("featured_image"),
		MetaDescription: record.Field("meta_description"),
	})
	if err != nil {
		return err
	}

	if _, err := w.store.Append(ctx, sheet.TabPublishedArticles, map[string]string{
		"title":     title,
		"slug":      published.Slug,
		"url":       published.URL,
		"keyword":   record.Field("keyword"),
		"seo_score": record.Field("seo_score"),
		"post_id":   strconv.FormatInt(published.ID, 10),
	}); err != nil {
		return err
	}
	if err := w.store.UpdateFields(ctx, record.ID, map[string]string{
		"url": published.URL,
	}); err != nil {
		return err
	}

	w.logger.Info("article published",
		logging.Int64(logging.FieldRecordID, record.ID),
		logging.String("slug", published.Slug),
		logging.String("url", published.URL),
	)
	return w.store.Advance(ctx, record, sheet.StatusPublished)
}
