package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Detection actions.
const (
	ActionNone         = "none"
	ActionReport       = "report"
	ActionBanAndRemove = "banandremove"
)

// global configuration structure
type Config struct {
	Platform PlatformConfig `mapstructure:"platform"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Detector DetectorConfig `mapstructure:"detector"`
	Database DatabaseConfig `mapstructure:"database"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// metrics exposition settings; empty listen_addr disables the endpoint
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// platform API configuration
type PlatformConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	UserAgent    string        `mapstructure:"user_agent"`
	Token        string        `mapstructure:"token"`
	Subreddit    string        `mapstructure:"subreddit"`
	SubredditID  string        `mapstructure:"subreddit_id"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// logging configuration
type LoggerConfig struct {
	Directory string            `mapstructure:"directory"`
	Rotation  LogRotationConfig `mapstructure:"rotation"`
	Level     string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// bot detection settings
type DetectorConfig struct {
	Action               string      `mapstructure:"action"`
	BanMessage           string      `mapstructure:"ban_message"`
	MinCommentCount      int         `mapstructure:"min_comment_count"`
	MaxAccountAgeMonths  int         `mapstructure:"max_account_age_months"`
	MaxKarma             int         `mapstructure:"max_karma"`
	MaxCommentLength     int         `mapstructure:"max_comment_length"`
	DiversityRatio       float64     `mapstructure:"diversity_ratio"`
	AutogenUsernamesOnly bool        `mapstructure:"autogen_usernames_only"`
	TextPostCommunity    string      `mapstructure:"text_post_community"`
	Rules                RulesConfig `mapstructure:"rules"`
}

// Per-signal toggles. The two historical rule-set variants (lowercase first
// letter vs. line breaks, single community vs. diversity ratio) are kept as
// independent switches rather than merged.
type RulesConfig struct {
	LowercaseStart  bool `mapstructure:"lowercase_start"`
	LineBreaks      bool `mapstructure:"line_breaks"`
	SingleCommunity bool `mapstructure:"single_community"`
	DiversityRatio  bool `mapstructure:"diversity_ratio"`
}

// moderator notification settings
type NotifierConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  int64  `mapstructure:"chat_id"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	// Unmarshal configuration
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

// Set replaces the global configuration. Used by tests.
func Set(c *Config) {
	cfg = c
}

// Defaults returns a configuration populated with default values only.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		log.Fatalf("unable to decode default config: %v", err)
	}
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("platform.base_url", "https://oauth.reddit.com")
	v.SetDefault("platform.user_agent", "bot-swatter")
	v.SetDefault("platform.poll_interval", 30*time.Second)

	v.SetDefault("redis.url", "redis://localhost:6379/0")

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.enabled", false)

	v.SetDefault("detector.action", ActionReport)
	v.SetDefault("detector.ban_message", "LLM Bot")
	v.SetDefault("detector.min_comment_count", 1)
	v.SetDefault("detector.max_account_age_months", 3)
	v.SetDefault("detector.max_karma", 50)
	v.SetDefault("detector.max_comment_length", 500)
	v.SetDefault("detector.diversity_ratio", 2.0)
	v.SetDefault("detector.autogen_usernames_only", false)
	v.SetDefault("detector.text_post_community", "AskReddit")
	v.SetDefault("detector.rules.lowercase_start", false)
	v.SetDefault("detector.rules.line_breaks", true)
	v.SetDefault("detector.rules.single_community", true)
	v.SetDefault("detector.rules.diversity_ratio", false)

	v.SetDefault("notifier.enabled", false)

	v.SetDefault("metrics.listen_addr", "")
}
