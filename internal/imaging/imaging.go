// Package imaging implements wf04: ready articles get an AI-generated
// featured image and move to the review gate.
package imaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/services"
	"seoflow/internal/services/completion"
	"seoflow/internal/services/imagegen"
	"seoflow/internal/sheet"
	"seoflow/internal/workflow"
)

const component = "imaging"

// Workflow illustrates PublishQueue rows at "ready".
type Workflow struct {
	cfg    *config.Config
	store  *sheet.Store
	ai     completion.Service
	images imagegen.Service
	logger *slog.Logger
}

// New constructs the image generation workflow.
func New(cfg *config.Config, store *sheet.Store, ai completion.Service, images imagegen.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:    cfg,
		store:  store,
		ai:     ai,
		images: images,
		logger: logging.NewComponentLogger(logger, component),
	}
}

func (w *Workflow) ID() string { return "wf04" }

func (w *Workflow) Name() string { return "Image Generation" }

// Run illustrates every PublishQueue record at "ready" and advances the
// survivors to "illustrated", where they wait for manual approval.
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	records, err := w.store.RecordsByStatus(ctx, sheet.TabPublishQueue, sheet.StatusReady, w.cfg.Workflow.RecordLimit)
	if err != nil {
		return workflow.Summary{}, err
	}
	return workflow.RunBatch(ctx, w.logger, w.store, records, w.process)
}

type imageBrief struct {
	ImagePrompt string `json:"image_prompt"`
	AltText     string `json:"alt_text"`
}

func (w *Workflow) process(ctx context.Context, record *sheet.Record) error {
	title := strings.TrimSpace(record.Field("title"))
	if title == "" {
		return services.Wrap(services.ErrValidation, component, "process", "publish queue row has no title", nil)
	}

	brief, err := w.describeImage(ctx, title, record.Field("keyword"))
	if err != nil {
		return err
	}
	if brief.ImagePrompt == "" {
		return services.Wrap(services.ErrInvalidResponse, component, "process", "model returned no image prompt", nil)
	}

	image, err := w.images.Generate(ctx, brief.ImagePrompt)
	if err != nil {
		return err
	}

	if _, err := w.store.Append(ctx, sheet.TabImageLibrary, map[string]string{
		"slug":     record.Field("slug"),
		"title":    title,
		"url":      image.URL,
		"prompt":   brief.ImagePrompt,
		"alt_text": brief.AltText,
	}); err != nil {
		return err
	}
	if err := w.store.UpdateFields(ctx, record.ID, map[string]string{
		"featured_image": image.URL,
		"image_alt":      brief.AltText,
	}); err != nil {
		return err
	}

	w.logger.Info("article illustrated",
		logging.Int64(logging.FieldRecordID, record.ID),
		logging.String("slug", record.Field("slug")),
		logging.String("image_url", image.URL),
	)
	return w.store.Advance(ctx, record, sheet.StatusIllustrated)
}

func (w *Workflow) describeImage(ctx context.Context, title, keyword string) (imageBrief, error) {
	system := "You are an art director for a niche website. Respond with JSON only."
	user := fmt.Sprintf(
		"Article title: %s\nTarget keyword: %s\nNiche: %s\n\n"+
			"Describe one featured image. Return {\"image_prompt\": a detailed generation prompt, "+
			"\"alt_text\": concise accessible alt text}.",
		title, keyword, w.cfg.Site.Niche,
	)
	payload, err := w.ai.CompleteJSON(ctx, system, user)
	if err != nil {
		return imageBrief{}, err
	}
	var brief imageBrief
	if err := completion.DecodeJSON(payload, &brief); err != nil {
		return imageBrief{}, err
	}
	return brief, nil
}
