// Package notify delivers run summaries and failure alerts.
//
// Delivery is best effort: callers log notification errors and never let
// them fail a workflow run. The configured method selects a Slack incoming
// webhook, SMTP email, or a noop sink.
package notify
