package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultKeywords  = "jobs,interview,AI,Programming,Computer Science,Data,coding"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName     string `mapstructure:"app_name"`
	Env         string `mapstructure:"app_env"`
	LogLevel    string `mapstructure:"log_level"`
	SourcesFile string `mapstructure:"sources_file"`
	SinksFile   string `mapstructure:"sinks_file"`

	// SourceURLsRaw is a comma-separated list of page URLs used when no sources file is set.
	SourceURLsRaw string   `mapstructure:"source_urls"`
	SourceURLs    []string `mapstructure:"-"`

	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestDelayMs        int64         `mapstructure:"request_delay_ms"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	RequestDelay          time.Duration `mapstructure:"-"`
	UserAgent             string        `mapstructure:"user_agent"`

	KeywordsRaw      string   `mapstructure:"keywords"`
	Keywords         []string `mapstructure:"-"`
	DiscussionMarker string   `mapstructure:"discussion_marker"`

	JSONPath           string `mapstructure:"json_path"`
	CSVPath            string `mapstructure:"csv_path"`
	JSONEscapeNonASCII bool   `mapstructure:"json_escape_non_ascii"`
	CSVCRLF            bool   `mapstructure:"csv_crlf"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "thread-digest")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "")
	v.SetDefault("source_urls", "")
	v.SetDefault("sinks_file", "")
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("request_delay_ms", 2000)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("keywords", DefaultKeywords)
	v.SetDefault("discussion_marker", "/comments/")
	v.SetDefault("json_path", "reddit_topics.json")
	v.SetDefault("csv_path", "reddit_topics.csv")
	v.SetDefault("json_escape_non_ascii", true)
	v.SetDefault("csv_crlf", true)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	if cfg.RequestDelayMs < 0 {
		return nil, fmt.Errorf("invalid request_delay_ms (must not be negative)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	cfg.RequestDelay = time.Duration(cfg.RequestDelayMs) * time.Millisecond

	cfg.DiscussionMarker = strings.TrimSpace(cfg.DiscussionMarker)
	if cfg.DiscussionMarker == "" {
		return nil, fmt.Errorf("discussion_marker is required")
	}

	cfg.Keywords = SplitKeywords(cfg.KeywordsRaw)
	if len(cfg.Keywords) == 0 {
		return nil, fmt.Errorf("keywords must list at least one term")
	}

	cfg.SourceURLs = splitList(cfg.SourceURLsRaw)

	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	cfg.JSONPath = strings.TrimSpace(cfg.JSONPath)
	cfg.CSVPath = strings.TrimSpace(cfg.CSVPath)
	if cfg.JSONPath == "" || cfg.CSVPath == "" {
		return nil, fmt.Errorf("json_path and csv_path are required")
	}

	return &cfg, nil
}

// SplitKeywords parses a comma-separated keyword list, dropping blanks.
func SplitKeywords(raw string) []string {
	return splitList(raw)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
