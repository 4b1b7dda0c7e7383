package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"ReviewScout/internal/matching"
)

const (
	configPathEnv        = "REVIEWSCOUT_CONFIG"
	youtubeAPIKeyEnv     = "YOUTUBE_API_KEY"
	instagramTokenEnv    = "INSTAGRAM_ACCESS_TOKEN"
	instagramUserIDEnv   = "INSTAGRAM_USER_ID"
	defaultYouTubeAPI    = "https://www.googleapis.com/youtube/v3"
	defaultInstagramAPI  = "https://graph.facebook.com/v19.0"
	defaultBlogSearchURL = "https://search.naver.com/search.naver?where=blog"
)

// Adapter names understood by the platform registry.
const (
	AdapterYouTube   = "youtube"
	AdapterInstagram = "instagram"
	AdapterBlog      = "blog"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// AI providers.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds every setting of the service.
type Config struct {
	Logging    LoggingConfig       `yaml:"logging"`
	Storage    StorageConfig       `yaml:"storage"`
	Scheduler  SchedulerConfig     `yaml:"scheduler"`
	Collection CollectionConfig    `yaml:"collection"`
	Matching   matching.Thresholds `yaml:"matching"`
	Analysis   AnalysisConfig      `yaml:"analysis"`
	OpenAI     OpenAIConfig        `yaml:"openai"`
	Anthropic  AnthropicConfig     `yaml:"anthropic"`
	Breaker    BreakerConfig       `yaml:"breaker"`
	Telegram   TelegramConfig      `yaml:"telegram"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// StorageConfig picks the repository backend.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	DSN    string `yaml:"dsn" env:"DATABASE_DSN" env-default:""`
	// SnapshotPath is where the memory driver persists its state. Empty disables it.
	SnapshotPath string `yaml:"snapshotPath" env:"SNAPSHOT_PATH" env-default:"reviewscout-state.json"`
	// CatalogPath is a JSON product list. Empty means the products table of the SQL driver.
	CatalogPath string `yaml:"catalogPath" env:"CATALOG_PATH" env-default:""`
}

// SchedulerConfig defines when collection runs on its own.
type SchedulerConfig struct {
	Enabled    bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"false"`
	Interval   time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"6h"`
	RunOnStart bool          `yaml:"runOnStart" env:"SCHEDULER_RUN_ON_START" env-default:"false"`
}

// CollectionConfig bounds the external calls of a collection run.
type CollectionConfig struct {
	MaxQueries      int              `yaml:"maxQueries" env:"COLLECT_MAX_QUERIES" env-default:"5"`
	ResultsPerQuery int              `yaml:"resultsPerQuery" env:"COLLECT_RESULTS_PER_QUERY" env-default:"10"`
	RequestDelay    time.Duration    `yaml:"requestDelay" env:"COLLECT_REQUEST_DELAY" env-default:"1s"`
	CallTimeout     time.Duration    `yaml:"callTimeout" env:"COLLECT_CALL_TIMEOUT" env-default:"15s"`
	Qualifier       string           `yaml:"qualifier" env:"COLLECT_QUALIFIER" env-default:"review"`
	LocalQualifier  string           `yaml:"localQualifier" env:"COLLECT_LOCAL_QUALIFIER" env-default:"후기"`
	Platforms       []PlatformConfig `yaml:"platforms"`
}

// PlatformConfig describes one search adapter.
type PlatformConfig struct {
	Name     string            `yaml:"name"`
	Adapter  string            `yaml:"adapter"`
	Policy   string            `yaml:"policy"`
	Endpoint string            `yaml:"endpoint"`
	APIKey   string            `yaml:"apiKey"`
	Options  map[string]string `yaml:"options"`
}

// AnalysisConfig tunes the resolution chain.
type AnalysisConfig struct {
	Provider         string        `yaml:"provider" env:"ANALYSIS_PROVIDER" env-default:"none"`
	CacheTTL         time.Duration `yaml:"cacheTtl" env:"ANALYSIS_CACHE_TTL" env-default:"6h"`
	AITimeout        time.Duration `yaml:"aiTimeout" env:"ANALYSIS_AI_TIMEOUT" env-default:"30s"`
	FeedbackExamples int           `yaml:"feedbackExamples" env:"ANALYSIS_FEEDBACK_EXAMPLES" env-default:"5"`
	DictionaryPath   string        `yaml:"dictionaryPath" env:"KEYWORD_DICTIONARY" env-default:""`
	// PhraseSeed fixes phrase selection; zero seeds from the clock.
	PhraseSeed int64 `yaml:"phraseSeed" env:"ANALYSIS_PHRASE_SEED" env-default:"0"`
}

type OpenAIConfig struct {
	BaseURL     string  `yaml:"baseUrl" env:"OPENAI_BASE_URL" env-default:""`
	Model       string  `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	APIKey      string  `yaml:"-" env:"OPENAI_API_KEY"`
	MaxTokens   int     `yaml:"maxTokens" env:"OPENAI_MAX_TOKENS" env-default:"800"`
	Temperature float32 `yaml:"temperature" env:"OPENAI_TEMPERATURE" env-default:"0.3"`
}

type AnthropicConfig struct {
	BaseURL   string `yaml:"baseUrl" env:"ANTHROPIC_BASE_URL" env-default:""`
	Model     string `yaml:"model" env:"ANTHROPIC_MODEL" env-default:"claude-3-5-haiku-latest"`
	APIKey    string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	MaxTokens int    `yaml:"maxTokens" env:"ANTHROPIC_MAX_TOKENS" env-default:"800"`
}

// BreakerConfig controls when a failing AI provider is reported unavailable.
type BreakerConfig struct {
	Threshold  int           `yaml:"threshold" env:"BREAKER_THRESHOLD" env-default:"5"`
	ResetAfter time.Duration `yaml:"resetAfter" env:"BREAKER_RESET_AFTER" env-default:"30s"`
}

// TelegramConfig wires the moderation digest channel.
type TelegramConfig struct {
	BotToken string `yaml:"botToken" env:"TELEGRAM_BOT_TOKEN" env-default:""`
	ChatID   string `yaml:"chatId" env:"TELEGRAM_CHAT_ID" env-default:""`
	APIBase  string `yaml:"apiBase" env:"TELEGRAM_API_BASE" env-default:"https://api.telegram.org"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads the YAML file named by REVIEWSCOUT_CONFIG (if any) with
// environment overrides. Unreadable files fall back to env and defaults.
func Load() Config {
	path := os.Getenv(configPathEnv)
	if path != "" {
		cfg, err := LoadFile(path)
		if err == nil {
			return cfg
		}
		slog.Warn("config: falling back to environment and defaults", "path", path, "err", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Warn("config: cannot read environment", "err", err)
	}
	cfg.finish()
	return cfg
}

// LoadFile reads a YAML file with environment overrides.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.finish()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage driver %s requires a dsn", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	switch c.Analysis.Provider {
	case ProviderNone, ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("unknown analysis provider %q", c.Analysis.Provider))
	}
	for _, p := range c.Collection.Platforms {
		switch p.Adapter {
		case AdapterYouTube, AdapterInstagram, AdapterBlog:
		default:
			errs = append(errs, fmt.Errorf("platform %s: unknown adapter %q", p.Name, p.Adapter))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) finish() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Analysis.Provider = strings.ToLower(strings.TrimSpace(c.Analysis.Provider))
	if c.Matching == (matching.Thresholds{}) {
		c.Matching = matching.DefaultThresholds()
	}
	if len(c.Collection.Platforms) == 0 {
		c.Collection.Platforms = DefaultPlatforms()
	}
	c.applyEnvOverrides()
}

// applyEnvOverrides fills platform credentials that only live in the environment.
func (c *Config) applyEnvOverrides() {
	for i := range c.Collection.Platforms {
		p := &c.Collection.Platforms[i]
		p.Adapter = strings.ToLower(strings.TrimSpace(p.Adapter))
		switch p.Adapter {
		case AdapterYouTube:
			if v := os.Getenv(youtubeAPIKeyEnv); v != "" && p.APIKey == "" {
				p.APIKey = v
			}
		case AdapterInstagram:
			if v := os.Getenv(instagramTokenEnv); v != "" && p.APIKey == "" {
				p.APIKey = v
			}
			if v := os.Getenv(instagramUserIDEnv); v != "" {
				if p.Options == nil {
					p.Options = map[string]string{}
				}
				if p.Options["user_id"] == "" {
					p.Options["user_id"] = v
				}
			}
		}
	}
}

// DefaultPlatforms covers the four supported platforms.
func DefaultPlatforms() []PlatformConfig {
	return []PlatformConfig{
		{Name: "VIDEO", Adapter: AdapterYouTube, Policy: "weighted-sum", Endpoint: defaultYouTubeAPI},
		{Name: "SHORT_VIDEO", Adapter: AdapterYouTube, Policy: "weighted-sum", Endpoint: defaultYouTubeAPI,
			Options: map[string]string{"video_duration": "short"}},
		{Name: "PHOTO_POST", Adapter: AdapterInstagram, Policy: "hashtag-overlap", Endpoint: defaultInstagramAPI},
		{Name: "BLOG", Adapter: AdapterBlog, Policy: "hashtag-overlap", Endpoint: defaultBlogSearchURL},
	}
}
