// Package writing implements wf03: planned calendar entries become drafted
// articles, audited against a twelve-factor SEO rubric with a single
// feedback-seeded rewrite below the threshold.
package writing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/services"
	"seoflow/internal/services/completion"
	"seoflow/internal/sheet"
	"seoflow/internal/textutil"
	"seoflow/internal/workflow"
)

const component = "writing"

// Workflow drafts articles for ContentCalendar rows at "planned" and queues
// them for imaging at "ready".
type Workflow struct {
	cfg    *config.Config
	store  *sheet.Store
	ai     completion.Service
	logger *slog.Logger
}

// New constructs the article writing workflow.
func New(cfg *config.Config, store *sheet.Store, ai completion.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:    cfg,
		store:  store,
		ai:     ai,
		logger: logging.NewComponentLogger(logger, component),
	}
}

func (w *Workflow) ID() string { return "wf03" }

func (w *Workflow) Name() string { return "Blog Writing" }

// Run drafts every ContentCalendar record at "planned" and advances the
// survivors to "written".
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	records, err := w.store.RecordsByStatus(ctx, sheet.TabContentCalendar, sheet.StatusPlanned, w.cfg.Workflow.RecordLimit)
	if err != nil {
		return workflow.Summary{}, err
	}
	return workflow.RunBatch(ctx, w.logger, w.store, records, w.process)
}

type auditResult struct {
	Score    int      `json:"score"`
	Findings []string `json:"findings"`
}

func (w *Workflow) process(ctx context.Context, record *sheet.Record) error {
	keyword := strings.TrimSpace(record.Field("keyword"))
	title := strings.TrimSpace(record.Field("title"))
	outline := record.Field("outline")
	if keyword == "" || title == "" || outline == "" {
		return services.Wrap(services.ErrValidation, component, "process", "calendar row is missing keyword, title, or outline", nil)
	}

	body, err := w.draftArticle(ctx, keyword, title, outline, nil)
	if err != nil {
		return err
	}
	audit, err := w.auditArticle(ctx, keyword, body)
	if err != nil {
		return err
	}

	rewrites := 0
	if audit.Score < w.cfg.Workflow.SEOScoreThreshold && w.cfg.Workflow.MaxRewrites > 0 {
		// One rewrite seeded with the audit findings. The second score is
		// final whatever it is.
		rewritten, err := w.draftArticle(ctx, keyword, title, outline, audit.Findings)
		if err != nil {
			return err
		}
		body = rewritten
		audit, err = w.auditArticle(ctx, keyword, body)
		if err != nil {
			return err
		}
		rewrites = 1
	}

	body, err = w.resolveInternalLinks(ctx, body)
	if err != nil {
		return err
	}

	slug := record.Field("slug")
	if slug == "" {
		slug = textutil.Slugify(title)
	}
	if _, err := w.store.Append(ctx, sheet.TabPublishQueue, map[string]string{
		"keyword":          keyword,
		"title":            title,
		"slug":             slug,
		"body":             body,
		"meta_description": record.Field("meta_description"),
		"seo_score":        strconv.Itoa(audit.Score),
		"calendar_id":      strconv.FormatInt(record.ID, 10),
	}); err != nil {
		return err
	}
	if err := w.store.UpdateFields(ctx, record.ID, map[string]string{
		"seo_score": strconv.Itoa(audit.Score),
		"rewrites":  strconv.Itoa(rewrites),
	}); err != nil {
		return err
	}

	w.logger.Info("article drafted",
		logging.Int64(logging.FieldRecordID, record.ID),
		logging.String("slug", slug),
		logging.Int("seo_score", audit.Score),
		logging.Int("rewrites", rewrites),
	)
	return w.store.Advance(ctx, record, sheet.StatusWritten)
}

func (w *Workflow) draftArticle(ctx context.Context, keyword, title, outline string, feedback []string) (string, error) {
	system := "You are a senior writer for a niche website. Write publication-ready markdown. " +
		"Mark internal links as [internal:keyword] so they can be resolved at publish time."
	user := fmt.Sprintf(
		"Niche: %s\nTitle: %s\nTarget keyword: %s\n\nOutline:\n%s\n\nWrite the full article.",
		w.cfg.Site.Niche, title, keyword, outline,
	)
	if len(feedback) > 0 {
		user += "\n\nA prior draft failed our SEO audit. Address every finding:\n- " + strings.Join(feedback, "\n- ")
	}
	body, err := w.ai.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(body) == "" {
		return "", services.Wrap(services.ErrInvalidResponse, component, "draft", "model returned an empty article body", nil)
	}
	return body, nil
}

// auditArticle scores the draft 0-100 against the twelve-factor rubric
// (keyword placement, density bounds, structure, length).
func (w *Workflow) auditArticle(ctx context.Context, keyword, body string) (auditResult, error) {
	system := "You are an SEO auditor. Score articles 0-100 against twelve factors: keyword in title, " +
		"keyword in first paragraph, keyword density between 0.5% and 2.5%, heading structure, " +
		"subheading keyword variants, intro length, total length over 1200 words, short paragraphs, " +
		"internal link markers present, external reference present, meta-friendly phrasing, and a closing call to action. " +
		"Respond with JSON only: {\"score\": 0-100, \"findings\": [specific deficiencies]}."
	user := fmt.Sprintf("Target keyword: %s\n\nArticle:\n%s", keyword, body)
	payload, err := w.ai.CompleteJSON(ctx, system, user)
	if err != nil {
		return auditResult{}, err
	}
	var audit auditResult
	if err := completion.DecodeJSON(payload, &audit); err != nil {
		return auditResult{}, err
	}
	if audit.Score < 0 || audit.Score > 100 {
		return auditResult{}, services.Wrap(services.ErrInvalidResponse, component, "audit",
			fmt.Sprintf("audit score %d outside 0-100", audit.Score), nil)
	}
	return audit, nil
}

// resolveInternalLinks replaces [internal:keyword] markers with links to
// already-published articles, dropping markers with no match.
func (w *Workflow) resolveInternalLinks(ctx context.Context, body string) (string, error) {
	if !strings.Contains(body, "[internal:") {
		return body, nil
	}
	published, err := w.store.List(ctx, sheet.TabPublishedArticles)
	if err != nil {
		return "", err
	}
	links := make(map[string]string, len(published))
	for _, article := range published {
		if keyword, url := article.Field("keyword"), article.Field("url"); keyword != "" && url != "" {
			links[strings.ToLower(keyword)] = url
		}
	}

	var b strings.Builder
	rest := body
	for {
		start := strings.Index(rest, "[internal:")
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.Index(rest[start:], "]")
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		keyword := strings.TrimSpace(rest[start+len("[internal:") : start+end])
		b.WriteString(rest[:start])
		if url, ok := links[strings.ToLower(keyword)]; ok {
			fmt.Fprintf(&b, "[%s](%s)", keyword, url)
		} else {
			b.WriteString(keyword)
		}
		rest = rest[start+end+1:]
	}
}
