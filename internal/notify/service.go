package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"seoflow/internal/config"
)

const userAgent = "seoflow/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyRunStarted(ctx context.Context, workflowName string, pending int) error
	NotifyRunCompleted(ctx context.Context, workflowName string, processed, failed, skipped int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service for the configured method. An
// unset or "none" method returns a noop implementation.
func NewService(cfg *config.Config) Service {
	switch cfg.Notifications.Method {
	case "slack":
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		return &slackService{
			webhookURL: cfg.Notifications.SlackWebhookURL,
			client:     &http.Client{Timeout: timeout},
		}
	case "email":
		return &emailService{cfg: cfg.Notifications}
	default:
		return noopService{}
	}
}

type slackService struct {
	webhookURL string
	client     *http.Client
}

func (s *slackService) NotifyRunStarted(ctx context.Context, workflowName string, pending int) error {
	return s.send(ctx, fmt.Sprintf("▶️ %s started: %d records pending", workflowName, pending))
}

func (s *slackService) NotifyRunCompleted(ctx context.Context, workflowName string, processed, failed, skipped int, duration time.Duration) error {
	return s.send(ctx, runSummaryText(workflowName, processed, failed, skipped, duration))
}

func (s *slackService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	return s.send(ctx, errorText(err, contextLabel))
}

func (s *slackService) TestNotification(ctx context.Context) error {
	return s.send(ctx, "seoflow notification test")
}

func (s *slackService) send(ctx context.Context, text string) error {
	if s == nil || s.client == nil {
		return nil
	}
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("slack webhook returned http %d", resp.StatusCode)
	}
	return nil
}

type emailService struct {
	cfg config.Notifications
}

func (s *emailService) NotifyRunStarted(ctx context.Context, workflowName string, pending int) error {
	subject := fmt.Sprintf("seoflow: %s started", workflowName)
	return s.send(ctx, subject, fmt.Sprintf("%s started with %d records pending.", workflowName, pending))
}

func (s *emailService) NotifyRunCompleted(ctx context.Context, workflowName string, processed, failed, skipped int, duration time.Duration) error {
	subject := fmt.Sprintf("seoflow: %s complete", workflowName)
	if failed > 0 {
		subject += " (with errors)"
	}
	return s.send(ctx, subject, runSummaryText(workflowName, processed, failed, skipped, duration))
}

func (s *emailService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	return s.send(ctx, "seoflow: error", errorText(err, contextLabel))
}

func (s *emailService) TestNotification(ctx context.Context) error {
	return s.send(ctx, "seoflow: test", "Notification system test.")
}

func (s *emailService) send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	from := s.cfg.From
	if from == "" {
		from = s.cfg.SMTPUser
	}
	message := strings.Join([]string{
		"From: " + from,
		"To: " + s.cfg.To,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, from, []string{s.cfg.To}, []byte(message)); err != nil {
		return fmt.Errorf("send email notification: %w", err)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, int, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }

func runSummaryText(workflowName string, processed, failed, skipped int, duration time.Duration) string {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	if failed == 0 {
		return fmt.Sprintf("✅ %s complete: %d processed, %d skipped in %s", workflowName, processed, skipped, duration)
	}
	return fmt.Sprintf("⚠️ %s complete: %d processed, %d failed, %d skipped in %s", workflowName, processed, failed, skipped, duration)
}

func errorText(err error, contextLabel string) string {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return builder.String()
}
