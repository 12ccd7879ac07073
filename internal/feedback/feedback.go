// Package feedback implements wf11: performance history is analyzed and
// new seed work is appended back into the top of the pipeline. Historical
// records are never touched.
package feedback

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

const (
	component = "feedback"

	dateLayout = "2006-01-02"

	// historyWindow bounds how much metric history feeds the analysis.
	historyWindow = 30 * 24 * time.Hour
)

// Workflow appends OptimizationLog analysis plus new ContentQueue and
// ContentCalendar seed rows.
type Workflow struct {
	cfg    *config.Config
	store  *sheet.Store
	ai     completion.Service
	logger *slog.Logger

	now func() time.Time
}

// New constructs the optimization feedback workflow.
func New(cfg *config.Config, store *sheet.Store, ai completion.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:    cfg,
		store:  store,
		ai:     ai,
		logger: logging.NewComponentLogger(logger, component),
		now:    time.Now,
	}
}

func (w *Workflow) ID() string { return "wf11" }

func (w *Workflow) Name() string { return "Optimization Feedback" }

type analysis struct {
	Recommendations []string      `json:"recommendations"`
	Keywords        []string      `json:"keywords"`
	Refresh         []refreshItem `json:"refresh"`
}

type refreshItem struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Keyword string   `json:"keyword"`
	Outline []string `json:"outline"`
}

// Run performs at most one analysis per day.
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	start := w.now()
	summary := workflow.Summary{}
	defer func() { summary.Elapsed = time.Since(start) }()

	today := start.Format(dateLayout)
	exists, err := w.store.Has(ctx, sheet.TabOptimizationLog, "date", today)
	if err != nil {
		return summary, err
	}
	if exists {
		summary.AddNote("analysis for %s already logged", today)
		return summary, nil
	}

	metrics, rankings, err := w.loadHistory(ctx, start)
	if err != nil {
		return summary, err
	}
	if len(metrics) == 0 {
		summary.AddNote("no metric history to analyze")
		return summary, nil
	}

	result, err := w.analyze(ctx, metrics, rankings)
	if err != nil {
		summary.Failed++
		return summary, err
	}

	if _, err := w.store.Append(ctx, sheet.TabOptimizationLog, map[string]string{
		"date":            today,
		"recommendations": strings.Join(result.Recommendations, "\n"),
		"new_keywords":    strconv.Itoa(len(result.Keywords)),
		"refresh_items":   strconv.Itoa(len(result.Refresh)),
	}); err != nil {
		return summary, err
	}
	summary.Processed++

	queued, err := w.queueKeywords(ctx, result.Keywords)
	if err != nil {
		return summary, err
	}
	summary.Processed += queued

	refreshed, err := w.scheduleRefreshes(ctx, result.Refresh)
	if err != nil {
		return summary, err
	}
	summary.Processed += refreshed

	summary.AddNote("queued %d keywords, scheduled %d refreshes", queued, refreshed)
	w.logger.Info("optimization analysis logged",
		logging.String("date", today),
		logging.Int("recommendations", len(result.Recommendations)),
		logging.Int("queued", queued),
		logging.Int("refreshes", refreshed),
	)
	return summary, nil
}

func (w *Workflow) loadHistory(ctx context.Context, now time.Time) ([]*sheet.Record, []*sheet.Record, error) {
	cutoff := now.Add(-historyWindow)
	metrics, err := w.store.List(ctx, sheet.TabDailyMetrics)
	if err != nil {
		return nil, nil, err
	}
	recentMetrics := filterSince(metrics, cutoff)
	rankings, err := w.store.List(ctx, sheet.TabKeywordRankings)
	if err != nil {
		return nil, nil, err
	}
	return recentMetrics, filterSince(rankings, cutoff), nil
}

func (w *Workflow) analyze(ctx context.Context, metrics, rankings []*sheet.Record) (analysis, error) {
	var history strings.Builder
	for _, row := range metrics {
		fmt.Fprintf(&history, "%s: %d articles, %d keywords ranking, avg position %s, %d leads\n",
			row.Field("date"), row.IntField("articles_published"), row.IntField("keywords_ranking"),
			row.Field("avg_position"), row.IntField("leads_total"))
	}
	var positions strings.Builder
	for _, row := range rankings {
		fmt.Fprintf(&positions, "%s: position %d\n", row.Field("keyword"), row.IntField("position"))
	}

	system := "You are an SEO performance analyst. Respond with JSON only."
	user := fmt.Sprintf(
		"Niche: %s\n\nDaily metrics:\n%s\nKeyword positions:\n%s\n"+
			"Recommend next steps. Return {\"recommendations\": [...], \"keywords\": [new keywords "+
			"worth targeting], \"refresh\": [{\"slug\": ..., \"title\": ..., \"keyword\": ..., "+
			"\"outline\": [...]}] for underperforming articles}.",
		w.cfg.Site.Niche, history.String(), positions.String(),
	)
	payload, err := w.ai.CompleteJSON(ctx, system, user)
	if err != nil {
		return analysis{}, err
	}
	var result analysis
	if err := completion.DecodeJSON(payload, &result); err != nil {
		return analysis{}, err
	}
	if len(result.Recommendations) == 0 {
		return analysis{}, services.Wrap(services.ErrInvalidResponse, component, "analyze", "model returned no recommendations", nil)
	}
	return result, nil
}

func (w *Workflow) queueKeywords(ctx context.Context, keywords []string) (int, error) {
	queued := 0
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		exists, err := w.store.Has(ctx, sheet.TabContentQueue, "keyword", keyword)
		if err != nil {
			return queued, err
		}
		if exists {
			continue
		}
		if _, err := w.store.Append(ctx, sheet.TabContentQueue, map[string]string{
			"keyword": keyword,
			"source":  "optimization",
		}); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

// scheduleRefreshes appends fresh calendar rows for articles worth
// updating. Existing calendar and published rows stay untouched.
func (w *Workflow) scheduleRefreshes(ctx context.Context, refresh []refreshItem) (int, error) {
	scheduled := 0
	for _, item := range refresh {
		if item.Slug == "" || item.Title == "" || len(item.Outline) == 0 {
			continue
		}
		refreshSlug := item.Slug + "-refresh"
		exists, err := w.store.Has(ctx, sheet.TabContentCalendar, "slug", refreshSlug)
		if err != nil {
			return scheduled, err
		}
		if exists {
			continue
		}
		if _, err := w.store.Append(ctx, sheet.TabContentCalendar, map[string]string{
			"keyword":      item.Keyword,
			"title":        item.Title,
			"slug":         refreshSlug,
			"outline":      strings.Join(item.Outline, "\n"),
			"source":       "optimization",
			"refresh_of":   item.Slug,
			"publish_date": w.now().Format(dateLayout),
		}); err != nil {
			return scheduled, err
		}
		scheduled++
	}
	return scheduled, nil
}

func filterSince(records []*sheet.Record, cutoff time.Time) []*sheet.Record {
	kept := make([]*sheet.Record, 0, len(records))
	for _, record := range records {
		if !record.CreatedAt.Before(cutoff) {
			kept = append(kept, record)
		}
	}
	return kept
}
