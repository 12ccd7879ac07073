// Package pipeline wires the eleven workflows to their collaborators. In
// dry-run mode every external capability is replaced with its
// deterministic fake, so the whole pipeline runs without credentials or
// cost.
package pipeline

import (
	"log/slog"

	"seoflow/internal/analytics"
	"seoflow/internal/config"
	"seoflow/internal/email"
	"seoflow/internal/feedback"
	"seoflow/internal/followup"
	"seoflow/internal/imaging"
	"seoflow/internal/leads"
	"seoflow/internal/notify"
	"seoflow/internal/planning"
	"seoflow/internal/publishing"
	"seoflow/internal/research"
	"seoflow/internal/services/completion"
	"seoflow/internal/services/dataforseo"
	"seoflow/internal/services/imagegen"
	"seoflow/internal/services/wordpress"
	"seoflow/internal/sheet"
	"seoflow/internal/social"
	"seoflow/internal/workflow"
	"seoflow/internal/writing"
)

// Capabilities bundles the external services the workflows call.
type Capabilities struct {
	AI       completion.Service
	Keywords dataforseo.Service
	Images   imagegen.Service
	CMS      wordpress.Service
}

// NewCapabilities selects live clients or dry-run fakes from config.
func NewCapabilities(cfg *config.Config) Capabilities {
	if cfg.DryRun {
		return Capabilities{
			AI:       completion.NewFake(),
			Keywords: dataforseo.NewFake(),
			Images:   imagegen.NewFake(),
			CMS:      wordpress.NewFake(),
		}
	}
	return Capabilities{
		AI:       completion.NewClient(cfg.OpenAI),
		Keywords: dataforseo.NewClient(cfg.DataForSEO),
		Images:   imagegen.NewClient(cfg.ImageGen),
		CMS:      wordpress.NewClient(cfg.WordPress),
	}
}

// NewRegistry builds the eleven workflows in pipeline order.
func NewRegistry(cfg *config.Config, store *sheet.Store, caps Capabilities, logger *slog.Logger) *workflow.Registry {
	return workflow.NewRegistry(
		research.New(cfg, store, caps.AI, caps.Keywords, logger),
		planning.New(cfg, store, caps.AI, logger),
		writing.New(cfg, store, caps.AI, logger),
		imaging.New(cfg, store, caps.AI, caps.Images, logger),
		publishing.New(cfg, store, caps.CMS, logger),
		social.New(cfg, store, caps.AI, logger),
		leads.New(cfg, store, caps.AI, logger),
		followup.New(cfg, store, caps.AI, logger),
		email.New(cfg, store, caps.AI, logger),
		analytics.New(cfg, store, caps.Keywords, logger),
		feedback.New(cfg, store, caps.AI, logger),
	)
}

// NewManager assembles the registry and its manager in one step.
func NewManager(cfg *config.Config, store *sheet.Store, logger *slog.Logger, notifier notify.Service) *workflow.Manager {
	registry := NewRegistry(cfg, store, NewCapabilities(cfg), logger)
	return workflow.NewManager(registry, cfg, logger, notifier)
}
