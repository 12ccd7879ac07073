package config

const (
	defaultDataDir       = "~/.local/share/seoflow"
	defaultLogDir        = "~/.local/share/seoflow/logs"
	defaultAPIBind       = "127.0.0.1:8093"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogRetention  = 60
	defaultRequestWindow = 10

	defaultOpenAIBaseURL        = "https://api.openai.com/v1"
	defaultOpenAIModel          = "gpt-4o-mini"
	defaultOpenAIMaxTokens      = 4096
	defaultOpenAITimeoutSeconds = 120

	defaultDataForSEOBaseURL  = "https://api.dataforseo.com/v3"
	defaultDataForSEOLocation = 2840
	defaultDataForSEOLanguage = "en"

	defaultImageGenBaseURL = "https://api.openai.com/v1"
	defaultImageGenModel   = "gpt-image-1"
	defaultImageGenSize    = "1024x1024"
	defaultImageTimeout    = 180

	defaultWordPressStatus  = "draft"
	defaultWordPressTimeout = 60

	defaultMinKeywordVolume   = 100
	defaultTopKeywordsToQueue = 10
	defaultSEOScoreThreshold  = 70
	defaultMaxRewrites        = 1
	defaultRunTimeoutSeconds  = 900
	defaultRecordLimit        = 25
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			Model:          defaultOpenAIModel,
			MaxTokens:      defaultOpenAIMaxTokens,
			TimeoutSeconds: defaultOpenAITimeoutSeconds,
		},
		DataForSEO: DataForSEO{
			BaseURL:      defaultDataForSEOBaseURL,
			LocationCode: defaultDataForSEOLocation,
			LanguageCode: defaultDataForSEOLanguage,
		},
		ImageGen: ImageGen{
			BaseURL:        defaultImageGenBaseURL,
			Model:          defaultImageGenModel,
			Size:           defaultImageGenSize,
			TimeoutSeconds: defaultImageTimeout,
		},
		WordPress: WordPress{
			DefaultStatus:  defaultWordPressStatus,
			TimeoutSeconds: defaultWordPressTimeout,
		},
		Notifications: Notifications{
			Method:         "none",
			SMTPPort:       587,
			RequestTimeout: defaultRequestWindow,
		},
		Workflow: Workflow{
			MinKeywordVolume:   defaultMinKeywordVolume,
			TopKeywordsToQueue: defaultTopKeywordsToQueue,
			SEOScoreThreshold:  defaultSEOScoreThreshold,
			MaxRewrites:        defaultMaxRewrites,
			RunTimeoutSeconds:  defaultRunTimeoutSeconds,
			RecordLimit:        defaultRecordLimit,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
