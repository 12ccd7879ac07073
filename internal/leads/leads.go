// Package leads implements wf07: incoming leads are validated, scored, and
// tiered into the master lead list.
package leads

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/services"
	"seoflow/internal/services/completion"
	"seoflow/internal/sheet"
	"seoflow/internal/workflow"
)

const component = "leads"

// Tier thresholds on the 0-100 lead score.
const (
	hotThreshold  = 80
	warmThreshold = 50
	coolThreshold = 20
)

// disposableDomains are throwaway email providers whose leads are rejected
// outright.
var disposableDomains = map[string]bool{
	"mailinator.com":    true,
	"guerrillamail.com": true,
	"10minutemail.com":  true,
	"tempmail.com":      true,
	"throwawaymail.com": true,
	"yopmail.com":       true,
	"sharklasers.com":   true,
}

// Workflow scores IncomingLeads rows at "new" into MasterLeadList entries.
type Workflow struct {
	cfg    *config.Config
	store  *sheet.Store
	ai     completion.Service
	logger *slog.Logger
}

// New constructs the lead scoring workflow.
func New(cfg *config.Config, store *sheet.Store, ai completion.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:    cfg,
		store:  store,
		ai:     ai,
		logger: logging.NewComponentLogger(logger, component),
	}
}

func (w *Workflow) ID() string { return "wf07" }

func (w *Workflow) Name() string { return "Lead Scoring" }

// Run scores every IncomingLeads record at "new" and advances the
// survivors to "scored".
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	records, err := w.store.RecordsByStatus(ctx, sheet.TabIncomingLeads, sheet.StatusNew, w.cfg.Workflow.RecordLimit)
	if err != nil {
		return workflow.Summary{}, err
	}
	return workflow.RunBatch(ctx, w.logger, w.store, records, w.process)
}

type leadScore struct {
	Score int `json:"score"`
}

func (w *Workflow) process(ctx context.Context, record *sheet.Record) error {
	email := strings.ToLower(strings.TrimSpace(record.Field("email")))
	if err := validateEmail(email); err != nil {
		return err
	}

	exists, err := w.store.Has(ctx, sheet.TabMasterLeadList, "email", email)
	if err != nil {
		return err
	}
	if exists {
		// Duplicate submissions advance without a second list entry.
		return w.store.Advance(ctx, record, sheet.StatusScored)
	}

	score, err := w.scoreLead(ctx, email, record)
	if err != nil {
		return err
	}
	tier := tierFor(score)

	lead, err := w.store.Append(ctx, sheet.TabMasterLeadList, map[string]string{
		"email":   email,
		"name":    record.Field("name"),
		"source":  record.Field("source"),
		"message": record.Field("message"),
		"score":   strconv.Itoa(score),
		"tier":    tier,
	})
	if err != nil {
		return err
	}
	// Cool and low leads park at passive; hot and warm stay at new for the
	// follow-up workflow.
	if tier != "hot" && tier != "warm" {
		if err := w.store.Advance(ctx, lead, sheet.StatusPassive); err != nil {
			return err
		}
	}

	w.logger.Info("lead scored",
		logging.Int64(logging.FieldRecordID, record.ID),
		logging.String("tier", tier),
		logging.Int("score", score),
	)
	return w.store.Advance(ctx, record, sheet.StatusScored)
}

func (w *Workflow) scoreLead(ctx context.Context, email string, record *sheet.Record) (int, error) {
	system := "You are a lead qualification analyst. Respond with JSON only."
	user := fmt.Sprintf(
		"Niche: %s\nLead email: %s\nName: %s\nSource: %s\nMessage: %s\n\n"+
			"Score this lead 0-100 on purchase intent and fit. Return {\"score\": 0-100}.",
		w.cfg.Site.Niche, email, record.Field("name"), record.Field("source"), record.Field("message"),
	)
	payload, err := w.ai.CompleteJSON(ctx, system, user)
	if err != nil {
		return 0, err
	}
	var scored leadScore
	if err := completion.DecodeJSON(payload, &scored); err != nil {
		return 0, err
	}
	if scored.Score < 0 || scored.Score > 100 {
		return 0, services.Wrap(services.ErrInvalidResponse, component, "score",
			fmt.Sprintf("lead score %d outside 0-100", scored.Score), nil)
	}
	return scored.Score, nil
}

func validateEmail(email string) error {
	if email == "" {
		return services.Wrap(services.ErrValidation, component, "validate", "lead has no email address", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return services.Wrap(services.ErrValidation, component, "validate", "lead email address is malformed", err)
	}
	at := strings.LastIndex(email, "@")
	if domain := email[at+1:]; disposableDomains[domain] {
		return services.Wrap(services.ErrValidation, component, "validate", "lead email uses a disposable domain", nil)
	}
	return nil
}

func tierFor(score int) string {
	switch {
	case score >= hotThreshold:
		return "hot"
	case score >= warmThreshold:
		return "warm"
	case score >= coolThreshold:
		return "cool"
	default:
		return "low"
	}
}
