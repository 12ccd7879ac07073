// Package planning implements wf02: queued keywords become a content plan
// with outlines, cluster assignments, and publish dates on a
// Monday/Wednesday/Friday cadence.
package planning

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
	"seoflow/internal/textutil"
	"seoflow/internal/workflow"
)

const (
	component = "planning"

	dateLayout = "2006-01-02"
)

// Workflow turns ContentQueue rows at "new" into ContentCalendar entries.
type Workflow struct {
	cfg    *config.Config
	store  *sheet.Store
	ai     completion.Service
	logger *slog.Logger

	// now is injectable so tests can pin the calendar cadence.
	now func() time.Time

	// cursor is the last assigned publish date, valid for one run.
	cursor time.Time
}

// New constructs the content planning workflow.
func New(cfg *config.Config, store *sheet.Store, ai completion.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:    cfg,
		store:  store,
		ai:     ai,
		logger: logging.NewComponentLogger(logger, component),
		now:    time.Now,
	}
}

func (w *Workflow) ID() string { return "wf02" }

func (w *Workflow) Name() string { return "Content Planning" }

// Run plans every ContentQueue record at "new" and advances each to
// "planned" alongside its new calendar entry.
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	records, err := w.store.RecordsByStatus(ctx, sheet.TabContentQueue, sheet.StatusNew, w.cfg.Workflow.RecordLimit)
	if err != nil {
		return workflow.Summary{}, err
	}
	if err := w.resetCursor(ctx); err != nil {
		return workflow.Summary{}, err
	}
	return workflow.RunBatch(ctx, w.logger, w.store, records, w.process)
}

type contentPlan struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Angle           string   `json:"angle"`
	Audience        string   `json:"audience"`
	MetaDescription string   `json:"meta_description"`
	Outline         []string `json:"outline"`
	Cluster         string   `json:"cluster"`
}

func (w *Workflow) process(ctx context.Context, record *sheet.Record) error {
	keyword := strings.TrimSpace(record.Field("keyword"))
	if keyword == "" {
		return services.Wrap(services.ErrValidation, component, "process", "queue row has no keyword field", nil)
	}

	plan, err := w.planContent(ctx, keyword, record.Field("niche"))
	if err != nil {
		return err
	}
	if plan.Title == "" || len(plan.Outline) == 0 {
		return services.Wrap(services.ErrInvalidResponse, component, "process", "model returned an incomplete content plan", nil)
	}
	if plan.Slug == "" {
		plan.Slug = textutil.Slugify(plan.Title)
	}

	publishDate := w.nextSlot()
	calendar, err := w.store.Append(ctx, sheet.TabContentCalendar, map[string]string{
		"keyword":          keyword,
		"title":            plan.Title,
		"slug":             plan.Slug,
		"angle":            plan.Angle,
		"audience":         plan.Audience,
		"meta_description": plan.MetaDescription,
		"outline":          strings.Join(plan.Outline, "\n"),
		"cluster":          plan.Cluster,
		"publish_date":     publishDate.Format(dateLayout),
	})
	if err != nil {
		return err
	}
	if _, err := w.store.Append(ctx, sheet.TabBlogOutlines, map[string]string{
		"slug":    plan.Slug,
		"title":   plan.Title,
		"keyword": keyword,
		"outline": strings.Join(plan.Outline, "\n"),
	}); err != nil {
		return err
	}
	if plan.Cluster != "" {
		if err := w.recordCluster(ctx, plan.Cluster, keyword, plan.Slug); err != nil {
			return err
		}
	}

	w.logger.Info("content planned",
		logging.Int64(logging.FieldRecordID, record.ID),
		logging.String("slug", plan.Slug),
		logging.String("publish_date", publishDate.Format(dateLayout)),
		logging.Int64("calendar_id", calendar.ID),
	)
	return w.store.Advance(ctx, record, sheet.StatusPlanned)
}

func (w *Workflow) planContent(ctx context.Context, keyword, niche string) (contentPlan, error) {
	system := "You are a content strategist for a niche website. Respond with JSON only."
	user := fmt.Sprintf(
		"Niche: %s\nTarget keyword: %s\nAudience: %s\n\n"+
			"Plan one article targeting this keyword. Return {\"title\": ..., \"slug\": ..., "+
			"\"angle\": ..., \"audience\": ..., \"meta_description\": ..., \"outline\": "+
			"[section headings], \"cluster\": topic cluster name}.",
		niche, keyword, w.cfg.Site.Audience,
	)
	payload, err := w.ai.CompleteJSON(ctx, system, user)
	if err != nil {
		return contentPlan{}, err
	}
	var plan contentPlan
	if err := completion.DecodeJSON(payload, &plan); err != nil {
		return contentPlan{}, err
	}
	return plan, nil
}

func (w *Workflow) recordCluster(ctx context.Context, cluster, keyword, slug string) error {
	exists, err := w.store.Has(ctx, sheet.TabClusterMap, "slug", slug)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = w.store.Append(ctx, sheet.TabClusterMap, map[string]string{
		"cluster": cluster,
		"keyword": keyword,
		"slug":    slug,
	})
	return err
}

// resetCursor starts the scheduling cadence after the latest date already
// on the calendar, or today when the calendar is empty.
func (w *Workflow) resetCursor(ctx context.Context) error {
	w.cursor = w.now().Truncate(24 * time.Hour)
	rows, err := w.store.List(ctx, sheet.TabContentCalendar)
	if err != nil {
		return err
	}
	for _, row := range rows {
		scheduled, err := time.Parse(dateLayout, row.Field("publish_date"))
		if err != nil {
			continue
		}
		if scheduled.After(w.cursor) {
			w.cursor = scheduled
		}
	}
	return nil
}

// nextSlot returns the next Monday, Wednesday, or Friday strictly after the
// previous slot.
func (w *Workflow) nextSlot() time.Time {
	slot := w.cursor
	for {
		slot = slot.AddDate(0, 0, 1)
		switch slot.Weekday() {
		case time.Monday, time.Wednesday, time.Friday:
			w.cursor = slot
			return slot
		}
	}
}
