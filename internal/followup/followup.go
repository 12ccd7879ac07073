// Package followup implements wf08: active leads get a personalized
// follow-up email drafted and queued, and fresh leads enter nurturing.
package followup

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
	"seoflow/internal/workflow"
)

const component = "followup"

// Workflow drafts FollowUpTracker rows for MasterLeadList leads at "new"
// or "nurturing".
type Workflow struct {
	cfg    *config.Config
	store  *sheet.Store
	ai     completion.Service
	logger *slog.Logger
}

// New constructs the lead follow-up workflow.
func New(cfg *config.Config, store *sheet.Store, ai completion.Service, logger *slog.Logger) *Workflow {
	return &Workflow{
		cfg:    cfg,
		store:  store,
		ai:     ai,
		logger: logging.NewComponentLogger(logger, component),
	}
}

func (w *Workflow) ID() string { return "wf08" }

func (w *Workflow) Name() string { return "Lead Follow-Up" }

// Run drafts one follow-up per active lead. A lead with a follow-up still
// waiting to be sent is left alone, which keeps reruns from stacking
// drafts.
func (w *Workflow) Run(ctx context.Context) (workflow.Summary, error) {
	leads, err := w.store.List(ctx, sheet.TabMasterLeadList, sheet.StatusNew, sheet.StatusNurturing)
	if err != nil {
		return workflow.Summary{}, err
	}
	pendingDrafts, err := w.leadsWithPendingDrafts(ctx)
	if err != nil {
		return workflow.Summary{}, err
	}
	eligible := make([]*sheet.Record, 0, len(leads))
	for _, lead := range leads {
		if !pendingDrafts[lead.ID] {
			eligible = append(eligible, lead)
		}
	}
	return workflow.RunBatch(ctx, w.logger, w.store, eligible, w.process)
}

type followUpDraft struct {
	Subject   string `json:"subject"`
	EmailBody string `json:"email_body"`
}

func (w *Workflow) process(ctx context.Context, lead *sheet.Record) error {
	email := strings.TrimSpace(lead.Field("email"))
	if email == "" {
		return services.Wrap(services.ErrValidation, component, "process", "lead has no email address", nil)
	}

	draft, err := w.draftFollowUp(ctx, lead)
	if err != nil {
		return err
	}
	if draft.Subject == "" || draft.EmailBody == "" {
		return services.Wrap(services.ErrInvalidResponse, component, "process", "model returned an incomplete follow-up draft", nil)
	}

	if _, err := w.store.Append(ctx, sheet.TabFollowUpTracker, map[string]string{
		"lead_id": strconv.FormatInt(lead.ID, 10),
		"email":   email,
		"tier":    lead.Field("tier"),
		"subject": draft.Subject,
		"body":    draft.EmailBody,
	}); err != nil {
		return err
	}

	w.logger.Info("follow-up drafted",
		logging.Int64(logging.FieldRecordID, lead.ID),
		logging.String("tier", lead.Field("tier")),
	)
	if lead.Status == sheet.StatusNew {
		return w.store.Advance(ctx, lead, sheet.StatusNurturing)
	}
	return nil
}

func (w *Workflow) draftFollowUp(ctx context.Context, lead *sheet.Record) (followUpDraft, error) {
	system := "You are a relationship manager for a niche website. Respond with JSON only."
	user := fmt.Sprintf(
		"Niche: %s\nLead name: %s\nLead tier: %s\nOriginal message: %s\n\n"+
			"Draft a short, personal follow-up email. Return {\"subject\": ..., \"email_body\": ...}.",
		w.cfg.Site.Niche, lead.Field("name"), lead.Field("tier"), lead.Field("message"),
	)
	payload, err := w.ai.CompleteJSON(ctx, system, user)
	if err != nil {
		return followUpDraft{}, err
	}
	var draft followUpDraft
	if err := completion.DecodeJSON(payload, &draft); err != nil {
		return followUpDraft{}, err
	}
	return draft, nil
}

func (w *Workflow) leadsWithPendingDrafts(ctx context.Context) (map[int64]bool, error) {
	drafts, err := w.store.List(ctx, sheet.TabFollowUpTracker, sheet.StatusScheduled)
	if err != nil {
		return nil, err
	}
	pending := make(map[int64]bool, len(drafts))
	for _, draft := range drafts {
		id, err := strconv.ParseInt(draft.Field("lead_id"), 10, 64)
		if err != nil {
			continue
		}
		pending[id] = true
	}
	return pending, nil
}
