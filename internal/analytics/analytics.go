// Package analytics implements wf10: once a day the tracked keywords are
// checked for organic positions and a metrics snapshot row is appended.
package analytics

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/services/dataforseo"
	"seoflow/internal/sheet"
	"seoflow/internal/workflow"
)

const (
	component = "analytics"

	dateLayout = "2006-01-02"
)

// Workflow appends KeywordRankings and DailyMetrics rows. Both tabs are
// append-only; history is never rewritten.
type Workflow struct {
	cfg      *config.Config
	store    *sheet.Store
	keywords dataforseo.Service
	logger   *slog.Logger

	now func() time.Time
}

// New constructs the analytics workflow.
func New(cfg *config.Config, store *sheet.Store, keywords dataforseo.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:      cfg,
		store:    store,
		keywords: keywords,
		logger:   logging.NewComponentLogger(logger, component),
		now:      time.Now,
	}
}

func (w *Workflow) ID() string { return "wf10" }

func (w *Workflow) Name() string { return "Analytics" }

// Run takes at most one snapshot per day.
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	start := w.now()
	summary := workflow.Summary{}
	defer func() { summary.Elapsed = time.Since(start) }()

	today := start.Format(dateLayout)
	exists, err := w.store.Has(ctx, sheet.TabDailyMetrics, "date", today)
	if err != nil {
		return summary, err
	}
	if exists {
		summary.AddNote("snapshot for %s already taken", today)
		return summary, nil
	}

	articles, err := w.store.List(ctx, sheet.TabPublishedArticles)
	if err != nil {
		return summary, err
	}
	tracked := trackedKeywords(articles)

	var rankings []dataforseo.Ranking
	if len(tracked) > 0 {
		rankings, err = w.keywords.Rankings(ctx, w.cfg.Site.SiteURL, tracked)
		if err != nil {
			summary.Failed++
			return summary, err
		}
	}
	positionSum := 0
	for _, ranking := range rankings {
		if _, err := w.store.Append(ctx, sheet.TabKeywordRankings, map[string]string{
			"date":     today,
			"keyword":  ranking.Keyword,
			"position": strconv.Itoa(ranking.Position),
			"url":      ranking.URL,
		}); err != nil {
			return summary, err
		}
		positionSum += ranking.Position
		summary.Processed++
	}

	metrics, err := w.collectDailyMetrics(ctx, today, len(articles), len(tracked), rankings, positionSum)
	if err != nil {
		return summary, err
	}
	if _, err := w.store.Append(ctx, sheet.TabDailyMetrics, metrics); err != nil {
		return summary, err
	}
	summary.Processed++
	summary.AddNote("tracked %d keywords, %d ranking", len(tracked), len(rankings))

	w.logger.Info("daily snapshot recorded",
		logging.String("date", today),
		logging.Int("keywords_tracked", len(tracked)),
		logging.Int("rankings", len(rankings)),
	)
	return summary, nil
}

func (w *Workflow) collectDailyMetrics(ctx context.Context, today string, articles, tracked int, rankings []dataforseo.Ranking, positionSum int) (map[string]string, error) {
	leads, err := w.store.List(ctx, sheet.TabMasterLeadList)
	if err != nil {
		return nil, err
	}
	converted := 0
	for _, lead := range leads {
		if lead.Status == sheet.StatusConverted {
			converted++
		}
	}
	emailsSent, err := w.store.List(ctx, sheet.TabEmailPerformance, sheet.StatusSent)
	if err != nil {
		return nil, err
	}

	avgPosition := "0"
	if len(rankings) > 0 {
		avgPosition = strconv.FormatFloat(float64(positionSum)/float64(len(rankings)), 'f', 1, 64)
	}
	return map[string]string{
		"date":               today,
		"articles_published": strconv.Itoa(articles),
		"keywords_tracked":   strconv.Itoa(tracked),
		"keywords_ranking":   strconv.Itoa(len(rankings)),
		"avg_position":       avgPosition,
		"leads_total":        strconv.Itoa(len(leads)),
		"leads_converted":    strconv.Itoa(converted),
		"emails_sent":        strconv.Itoa(len(emailsSent)),
	}, nil
}

func trackedKeywords(articles []*sheet.Record) []string {
	seen := make(map[string]bool, len(articles))
	keywords := make([]string, 0, len(articles))
	for _, article := range articles {
		keyword := article.Field("keyword")
		if keyword == "" || seen[keyword] {
			continue
		}
		seen[keyword] = true
		keywords = append(keywords, keyword)
	}
	return keywords
}
