package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Site describes the website the pipeline produces content for.
type Site struct {
	Niche    string `toml:"niche"`
	SiteURL  string `toml:"site_url"`
	Audience string `toml:"audience"`
}

// OpenAI contains connection settings for the chat completion provider.
type OpenAI struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	MaxTokens      int    `toml:"max_tokens"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DataForSEO contains credentials for the keyword research provider.
type DataForSEO struct {
	Login        string `toml:"login"`
	Password     string `toml:"password"`
	BaseURL      string `toml:"base_url"`
	LocationCode int    `toml:"location_code"`
	LanguageCode string `toml:"language_code"`
}

// ImageGen contains settings for the image generation provider.
type ImageGen struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Size           string `toml:"size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// WordPress contains settings for the publishing target.
type WordPress struct {
	URL            string `toml:"url"`
	Username       string `toml:"username"`
	AppPassword    string `toml:"app_password"`
	DefaultStatus  string `toml:"default_status"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains settings for run summaries and failure alerts.
// Method selects the delivery channel: "slack", "email", or "none".
type Notifications struct {
	Method          string `toml:"method"`
	SlackWebhookURL string `toml:"slack_webhook_url"`
	SMTPHost        string `toml:"smtp_host"`
	SMTPPort        int    `toml:"smtp_port"`
	SMTPUser        string `toml:"smtp_user"`
	SMTPPassword    string `toml:"smtp_password"`
	From            string `toml:"from"`
	To              string `toml:"to"`
	RequestTimeout  int    `toml:"request_timeout"`
}

// Workflow contains thresholds and quotas shared across workflow runs.
type Workflow struct {
	MinKeywordVolume   int `toml:"min_keyword_volume"`
	TopKeywordsToQueue int `toml:"top_keywords_to_queue"`
	SEOScoreThreshold  int `toml:"seo_score_threshold"`
	MaxRewrites        int `toml:"max_rewrites"`
	RunTimeoutSeconds  int `toml:"run_timeout_seconds"`
	RecordLimit        int `toml:"record_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for seoflow.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Site: niche and site identity used in prompts
//   - OpenAI: chat completion provider connection
//   - DataForSEO: keyword research provider credentials
//   - ImageGen: image generation provider connection
//   - WordPress: publishing target
//   - Notifications: Slack webhook or SMTP run summaries
//   - Workflow: thresholds, quotas, and per-run limits
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Site          Site          `toml:"site"`
	OpenAI        OpenAI        `toml:"openai"`
	DataForSEO    DataForSEO    `toml:"dataforseo"`
	ImageGen      ImageGen      `toml:"imagegen"`
	WordPress     WordPress     `toml:"wordpress"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	DryRun        bool          `toml:"dry_run"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/seoflow/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. Credentials left blank in the
// file fall back to environment variables; a .env file in the working
// directory is loaded first when present.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/seoflow/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("seoflow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the record store database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "seoflow.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
