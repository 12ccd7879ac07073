package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Provider credentials are only
// required outside dry-run mode so the pipeline can be exercised without any
// external accounts.
func (c *Config) Validate() error {
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSite() error {
	if c.Site.Niche == "" {
		return errors.New("site.niche must be set")
	}
	return nil
}

func (c *Config) validateProviders() error {
	if c.DryRun {
		return nil
	}
	if c.OpenAI.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/seoflow/config.toml"
		}
		return fmt.Errorf("openai.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'seoflow config init')", defaultPath)
	}
	if c.DataForSEO.Login == "" || c.DataForSEO.Password == "" {
		return errors.New("dataforseo.login and dataforseo.password are required (or set DATAFORSEO_LOGIN / DATAFORSEO_PASSWORD)")
	}
	if c.WordPress.URL != "" {
		if c.WordPress.Username == "" || c.WordPress.AppPassword == "" {
			return errors.New("wordpress.username and wordpress.app_password must be set when wordpress.url is configured")
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.top_keywords_to_queue": c.Workflow.TopKeywordsToQueue,
		"workflow.run_timeout_seconds":   c.Workflow.RunTimeoutSeconds,
		"workflow.record_limit":          c.Workflow.RecordLimit,
		"openai.timeout_seconds":         c.OpenAI.TimeoutSeconds,
		"openai.max_tokens":              c.OpenAI.MaxTokens,
		"notifications.request_timeout":  c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Workflow.MinKeywordVolume < 0 {
		return errors.New("workflow.min_keyword_volume must be >= 0")
	}
	if c.Workflow.SEOScoreThreshold < 0 || c.Workflow.SEOScoreThreshold > 100 {
		return errors.New("workflow.seo_score_threshold must be between 0 and 100")
	}
	if c.Workflow.MaxRewrites < 0 {
		return errors.New("workflow.max_rewrites must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	switch c.Notifications.Method {
	case "none":
		return nil
	case "slack":
		if c.Notifications.SlackWebhookURL == "" {
			return errors.New("notifications.slack_webhook_url must be set when notifications.method is \"slack\" (or set SLACK_WEBHOOK_URL)")
		}
	case "email":
		if strings.TrimSpace(c.Notifications.SMTPHost) == "" {
			return errors.New("notifications.smtp_host must be set when notifications.method is \"email\"")
		}
		if strings.TrimSpace(c.Notifications.To) == "" {
			return errors.New("notifications.to must be set when notifications.method is \"email\"")
		}
	default:
		return fmt.Errorf("notifications.method must be one of none, slack, email (got %q)", c.Notifications.Method)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
