package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSite()
	c.normalizeOpenAI()
	c.normalizeDataForSEO()
	c.normalizeImageGen()
	c.normalizeWordPress()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		c.Paths.APIToken = envValue("SEOFLOW_API_TOKEN")
	}
	return nil
}

func (c *Config) normalizeSite() {
	c.Site.Niche = strings.TrimSpace(c.Site.Niche)
	c.Site.SiteURL = strings.TrimRight(strings.TrimSpace(c.Site.SiteURL), "/")
	c.Site.Audience = strings.TrimSpace(c.Site.Audience)
}

func (c *Config) normalizeOpenAI() {
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = envValue("OPENAI_API_KEY")
	}
	c.OpenAI.BaseURL = strings.TrimSpace(c.OpenAI.BaseURL)
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	c.OpenAI.Model = strings.TrimSpace(c.OpenAI.Model)
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = defaultOpenAIModel
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = defaultOpenAIMaxTokens
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = defaultOpenAITimeoutSeconds
	}
}

func (c *Config) normalizeDataForSEO() {
	c.DataForSEO.Login = strings.TrimSpace(c.DataForSEO.Login)
	if c.DataForSEO.Login == "" {
		c.DataForSEO.Login = envValue("DATAFORSEO_LOGIN")
	}
	c.DataForSEO.Password = strings.TrimSpace(c.DataForSEO.Password)
	if c.DataForSEO.Password == "" {
		c.DataForSEO.Password = envValue("DATAFORSEO_PASSWORD")
	}
	c.DataForSEO.BaseURL = strings.TrimSpace(c.DataForSEO.BaseURL)
	if c.DataForSEO.BaseURL == "" {
		c.DataForSEO.BaseURL = defaultDataForSEOBaseURL
	}
	if c.DataForSEO.LocationCode <= 0 {
		c.DataForSEO.LocationCode = defaultDataForSEOLocation
	}
	c.DataForSEO.LanguageCode = strings.TrimSpace(c.DataForSEO.LanguageCode)
	if c.DataForSEO.LanguageCode == "" {
		c.DataForSEO.LanguageCode = defaultDataForSEOLanguage
	}
}

func (c *Config) normalizeImageGen() {
	c.ImageGen.APIKey = strings.TrimSpace(c.ImageGen.APIKey)
	if c.ImageGen.APIKey == "" {
		// The image provider shares the OpenAI key unless configured apart.
		c.ImageGen.APIKey = c.OpenAI.APIKey
	}
	c.ImageGen.BaseURL = strings.TrimSpace(c.ImageGen.BaseURL)
	if c.ImageGen.BaseURL == "" {
		c.ImageGen.BaseURL = defaultImageGenBaseURL
	}
	c.ImageGen.Model = strings.TrimSpace(c.ImageGen.Model)
	if c.ImageGen.Model == "" {
		c.ImageGen.Model = defaultImageGenModel
	}
	c.ImageGen.Size = strings.TrimSpace(c.ImageGen.Size)
	if c.ImageGen.Size == "" {
		c.ImageGen.Size = defaultImageGenSize
	}
	if c.ImageGen.TimeoutSeconds <= 0 {
		c.ImageGen.TimeoutSeconds = defaultImageTimeout
	}
}

func (c *Config) normalizeWordPress() {
	c.WordPress.URL = strings.TrimRight(strings.TrimSpace(c.WordPress.URL), "/")
	c.WordPress.Username = strings.TrimSpace(c.WordPress.Username)
	c.WordPress.AppPassword = strings.TrimSpace(c.WordPress.AppPassword)
	if c.WordPress.AppPassword == "" {
		c.WordPress.AppPassword = envValue("WORDPRESS_APP_PASSWORD")
	}
	c.WordPress.DefaultStatus = strings.ToLower(strings.TrimSpace(c.WordPress.DefaultStatus))
	if c.WordPress.DefaultStatus == "" {
		c.WordPress.DefaultStatus = defaultWordPressStatus
	}
	if c.WordPress.TimeoutSeconds <= 0 {
		c.WordPress.TimeoutSeconds = defaultWordPressTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.Method = strings.ToLower(strings.TrimSpace(c.Notifications.Method))
	if c.Notifications.Method == "" {
		c.Notifications.Method = "none"
	}
	c.Notifications.SlackWebhookURL = strings.TrimSpace(c.Notifications.SlackWebhookURL)
	if c.Notifications.SlackWebhookURL == "" {
		c.Notifications.SlackWebhookURL = envValue("SLACK_WEBHOOK_URL")
	}
	c.Notifications.SMTPPassword = strings.TrimSpace(c.Notifications.SMTPPassword)
	if c.Notifications.SMTPPassword == "" {
		c.Notifications.SMTPPassword = envValue("SMTP_PASSWORD")
	}
	if c.Notifications.SMTPPort <= 0 {
		c.Notifications.SMTPPort = 587
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultRequestWindow
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetention
	}
}

func envValue(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
