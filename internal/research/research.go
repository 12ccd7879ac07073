// Package research implements wf01: niche inputs are expanded into scored
// keyword opportunities and the best of them are queued for content planning.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/services"
	"seoflow/internal/services/completion"
	"seoflow/internal/services/dataforseo"
	"seoflow/internal/sheet"
	"seoflow/internal/workflow"
)

const component = "research"

// Workflow expands NicheInputs rows into KeywordResearch, CompetitorGaps,
// and ContentQueue rows.
type Workflow struct {
	cfg      *config.Config
	store    *sheet.Store
	ai       completion.Service
	keywords dataforseo.Service
	logger   *slog.Logger
}

// New constructs the keyword research workflow.
func New(cfg *config.Config, store *sheet.Store, ai completion.Service, keywords dataforseo.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:      cfg,
		store:    store,
		ai:       ai,
		keywords: keywords,
		logger:   logging.NewComponentLogger(logger, component),
	}
}

func (w *Workflow) ID() string { return "wf01" }

func (w *Workflow) Name() string { return "Keyword Research" }

// Run processes every NicheInputs record at "new" and advances the
// survivors to "researched".
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	records, err := w.store.RecordsByStatus(ctx, sheet.TabNicheInputs, sheet.StatusNew, w.cfg.Workflow.RecordLimit)
	if err != nil {
		return workflow.Summary{}, err
	}
	return workflow.RunBatch(ctx, w.logger, w.store, records, w.process)
}

type seedExpansion struct {
	Keywords []string `json:"keywords"`
	Gaps     []struct {
		Topic       string `json:"topic"`
		Competitor  string `json:"competitor"`
		Opportunity string `json:"opportunity"`
	} `json:"gaps"`
}

func (w *Workflow) process(ctx context.Context, record *sheet.Record) error {
	niche := strings.TrimSpace(record.Field("niche"))
	if niche == "" {
		return services.Wrap(services.ErrValidation, component, "process", "niche input row has no niche field", nil)
	}

	expansion, err := w.expandSeeds(ctx, niche, record.Field("notes"))
	if err != nil {
		return err
	}
	if len(expansion.Keywords) == 0 {
		return services.Wrap(services.ErrInvalidResponse, component, "process", "model returned no keyword candidates", nil)
	}

	metrics, err := w.keywords.SearchVolume(ctx, expansion.Keywords)
	if err != nil {
		return err
	}

	viable := make([]dataforseo.KeywordMetrics, 0, len(metrics))
	for _, m := range metrics {
		if m.SearchVolume >= w.cfg.Workflow.MinKeywordVolume {
			viable = append(viable, m)
		}
	}
	sort.Slice(viable, func(i, j int) bool { return viable[i].SearchVolume > viable[j].SearchVolume })

	for _, m := range viable {
		if err := w.recordKeyword(ctx, niche, m); err != nil {
			return err
		}
	}
	for _, gap := range expansion.Gaps {
		if gap.Topic == "" {
			continue
		}
		if _, err := w.store.Append(ctx, sheet.TabCompetitorGaps, map[string]string{
			"niche":       niche,
			"topic":       gap.Topic,
			"competitor":  gap.Competitor,
			"opportunity": gap.Opportunity,
		}); err != nil {
			return err
		}
	}

	queued, err := w.queueTopKeywords(ctx, niche, viable)
	if err != nil {
		return err
	}
	w.logger.Info("niche researched",
		logging.Int64(logging.FieldRecordID, record.ID),
		logging.Int("candidates", len(expansion.Keywords)),
		logging.Int("viable", len(viable)),
		logging.Int("queued", queued),
	)
	return w.store.Advance(ctx, record, sheet.StatusResearched)
}

func (w *Workflow) expandSeeds(ctx context.Context, niche, notes string) (seedExpansion, error) {
	system := "You are an SEO keyword strategist. Respond with JSON only."
	user := fmt.Sprintf(
		"Niche: %s\nSite: %s\nAudience: %s\nNotes: %s\n\n"+
			"Propose up to 20 long-tail keyword candidates this site could rank for, "+
			"plus competitor content gaps. Return {\"keywords\": [...], \"gaps\": "+
			"[{\"topic\": ..., \"competitor\": ..., \"opportunity\": ...}]}.",
		niche, w.cfg.Site.SiteURL, w.cfg.Site.Audience, notes,
	)
	payload, err := w.ai.CompleteJSON(ctx, system, user)
	if err != nil {
		return seedExpansion{}, err
	}
	var expansion seedExpansion
	if err := completion.DecodeJSON(payload, &expansion); err != nil {
		return seedExpansion{}, err
	}
	return expansion, nil
}

func (w *Workflow) recordKeyword(ctx context.Context, niche string, m dataforseo.KeywordMetrics) error {
	exists, err := w.store.Has(ctx, sheet.TabKeywordResearch, "keyword", m.Keyword)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = w.store.Append(ctx, sheet.TabKeywordResearch, map[string]string{
		"niche":       niche,
		"keyword":     m.Keyword,
		"volume":      strconv.Itoa(m.SearchVolume),
		"competition": strconv.FormatFloat(m.Competition, 'f', 2, 64),
		"cpc":         strconv.FormatFloat(m.CPC, 'f', 2, 64),
	})
	return err
}

// queueTopKeywords moves the best opportunities into ContentQueue, skipping
// keywords already queued.
func (w *Workflow) queueTopKeywords(ctx context.Context, niche string, viable []dataforseo.KeywordMetrics) (int, error) {
	queued := 0
	for _, m := range viable {
		if queued >= w.cfg.Workflow.TopKeywordsToQueue {
			break
		}
		exists, err := w.store.Has(ctx, sheet.TabContentQueue, "keyword", m.Keyword)
		if err != nil {
			return queued, err
		}
		if exists {
			continue
		}
		if _, err := w.store.Append(ctx, sheet.TabContentQueue, map[string]string{
			"niche":   niche,
			"keyword": m.Keyword,
			"volume":  strconv.Itoa(m.SearchVolume),
		}); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}
