// Package email implements wf09: recent articles are rolled into one
// newsletter per period, drafted for the active subscriber list.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/services"
	"seoflow/internal/services/completion"
	"seoflow/internal/sheet"
	"seoflow/internal/workflow"
)

const component = "email"

// articleWindow bounds how far back the newsletter looks for content.
const articleWindow = 7 * 24 * time.Hour

// Workflow drafts one EmailPerformance newsletter row per calendar week.
type Workflow struct {
	cfg    *config.Config
	store  *sheet.Store
	ai     completion.Service
	logger *slog.Logger

	now func() time.Time
}

// New constructs the newsletter workflow.
func New(cfg *config.Config, store *sheet.Store, ai completion.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:    cfg,
		store:  store,
		ai:     ai,
		logger: logging.NewComponentLogger(logger, component),
		now:    time.Now,
	}
}

func (w *Workflow) ID() string { return "wf09" }

func (w *Workflow) Name() string { return "Email Newsletter" }

type newsletterDraft struct {
	Subject   string `json:"subject"`
	Preview   string `json:"preview"`
	EmailBody string `json:"email_body"`
}

// Run drafts at most one newsletter per period. Reruns inside the same
// period are no-ops.
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	start := w.now()
	summary := workflow.Summary{}
	defer func() { summary.Elapsed = time.Since(start) }()

	period := periodKey(start)
	exists, err := w.store.Has(ctx, sheet.TabEmailPerformance, "period", period)
	if err != nil {
		return summary, err
	}
	if exists {
		summary.AddNote("newsletter for %s already drafted", period)
		return summary, nil
	}

	articles, err := w.recentArticles(ctx, start)
	if err != nil {
		return summary, err
	}
	if len(articles) == 0 {
		summary.AddNote("no articles published in the last week")
		return summary, nil
	}
	subscribers, err := w.store.List(ctx, sheet.TabMasterLeadList, sheet.StatusNew, sheet.StatusNurturing, sheet.StatusConverted)
	if err != nil {
		return summary, err
	}
	if len(subscribers) == 0 {
		summary.AddNote("no active subscribers")
		return summary, nil
	}

	draft, err := w.draftNewsletter(ctx, articles)
	if err != nil {
		summary.Failed++
		return summary, err
	}
	if draft.Subject == "" || draft.EmailBody == "" {
		summary.Failed++
		return summary, services.Wrap(services.ErrInvalidResponse, component, "run", "model returned an incomplete newsletter", nil)
	}

	row, err := w.store.Append(ctx, sheet.TabEmailPerformance, map[string]string{
		"period":     period,
		"subject":    draft.Subject,
		"preview":    draft.Preview,
		"body":       draft.EmailBody,
		"recipients": strconv.Itoa(len(subscribers)),
		"articles":   strconv.Itoa(len(articles)),
	})
	if err != nil {
		return summary, err
	}
	if err := w.store.Advance(ctx, row, sheet.StatusScheduled); err != nil {
		return summary, err
	}

	summary.Processed = 1
	summary.AddNote("newsletter %s scheduled for %d subscribers", period, len(subscribers))
	w.logger.Info("newsletter drafted",
		logging.String("period", period),
		logging.Int("articles", len(articles)),
		logging.Int("recipients", len(subscribers)),
	)
	return summary, nil
}

func (w *Workflow) recentArticles(ctx context.Context, now time.Time) ([]*sheet.Record, error) {
	articles, err := w.store.List(ctx, sheet.TabPublishedArticles)
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-articleWindow)
	recent := make([]*sheet.Record, 0, len(articles))
	for _, article := range articles {
		if !article.CreatedAt.Before(cutoff) {
			recent = append(recent, article)
		}
	}
	return recent, nil
}

func (w *Workflow) draftNewsletter(ctx context.Context, articles []*sheet.Record) (newsletterDraft, error) {
	var digest strings.Builder
	for _, article := range articles {
		fmt.Fprintf(&digest, "- %s (%s)\n", article.Field("title"), article.Field("url"))
	}
	system := "You are a newsletter editor for a niche website. Respond with JSON only."
	user := fmt.Sprintf(
		"Niche: %s\nAudience: %s\n\nThis week's articles:\n%s\n"+
			"Draft the weekly newsletter. Return {\"subject\": ..., \"preview\": ..., \"email_body\": ...}.",
		w.cfg.Site.Niche, w.cfg.Site.Audience, digest.String(),
	)
	payload, err := w.ai.CompleteJSON(ctx, system, user)
	if err != nil {
		return newsletterDraft{}, err
	}
	var draft newsletterDraft
	if err := completion.DecodeJSON(payload, &draft); err != nil {
		return newsletterDraft{}, err
	}
	return draft, nil
}

// periodKey identifies one newsletter period, e.g. 2026-W35.
func periodKey(now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
