// Package config loads engine configuration from TOML files and
// GRAHAK_* environment variables. Components take plain values; this
// package is a convenience for the composition root, which reads one
// Config and wires thresholds, TTLs and the nickname dictionary path
// explicitly. There is no cached global configuration.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vyapari/grahak/errors"
)

// Config is the engine configuration.
type Config struct {
	Match        MatchConfig        `mapstructure:"match"`
	Rank         RankConfig         `mapstructure:"rank"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Nicknames    NicknameConfig     `mapstructure:"nicknames"`
}

// MatchConfig holds the tiered match engine thresholds.
type MatchConfig struct {
	Threshold           float64 `mapstructure:"threshold"`             // minimum tier score (default: 0.75)
	SamePersonThreshold float64 `mapstructure:"same_person_threshold"` // stricter same-person bar (default: 0.8)
	SimilarThreshold    float64 `mapstructure:"similar_threshold"`     // similar-candidate gathering (default: 0.65)
	DuplicateThreshold  float64 `mapstructure:"duplicate_threshold"`   // create duplicate guard (default: 0.95)
}

// RankConfig holds the composite ranking thresholds.
type RankConfig struct {
	CacheFloor    float64 `mapstructure:"cache_floor"`     // cached candidate hit floor (default: 0.35)
	AutoAccept    float64 `mapstructure:"auto_accept"`     // unique-match acceptance (default: 0.9)
	AutoAcceptGap float64 `mapstructure:"auto_accept_gap"` // required lead over the runner-up (default: 0.05)
}

// ConversationConfig holds conversation memory lifetimes.
type ConversationConfig struct {
	TTLSeconds           int `mapstructure:"ttl_seconds"`            // idle context lifetime (default: 300)
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"` // eviction cadence (default: 300)
}

// TTL returns the idle lifetime as a duration.
func (c ConversationConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// SweepInterval returns the eviction cadence as a duration.
func (c ConversationConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// NicknameConfig points at an optional regional nickname dictionary.
type NicknameConfig struct {
	Path string `mapstructure:"path"` // TOML file merged over the built-in dictionary
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("match.threshold", 0.75)
	v.SetDefault("match.same_person_threshold", 0.8)
	v.SetDefault("match.similar_threshold", 0.65)
	v.SetDefault("match.duplicate_threshold", 0.95)

	v.SetDefault("rank.cache_floor", 0.35)
	v.SetDefault("rank.auto_accept", 0.9)
	v.SetDefault("rank.auto_accept_gap", 0.05)

	v.SetDefault("conversation.ttl_seconds", 300)
	v.SetDefault("conversation.sweep_interval_seconds", 300)

	v.SetDefault("nicknames.path", "")
}

// Load reads grahak.toml from the working directory if present, layered
// under GRAHAK_* environment variables. A missing file is fine; defaults
// apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("grahak")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GRAHAK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}
	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific TOML file.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects thresholds outside [0,1] and non-positive lifetimes.
func (c *Config) Validate() error {
	thresholds := map[string]float64{
		"match.threshold":             c.Match.Threshold,
		"match.same_person_threshold": c.Match.SamePersonThreshold,
		"match.similar_threshold":     c.Match.SimilarThreshold,
		"match.duplicate_threshold":   c.Match.DuplicateThreshold,
		"rank.cache_floor":            c.Rank.CacheFloor,
		"rank.auto_accept":            c.Rank.AutoAccept,
		"rank.auto_accept_gap":        c.Rank.AutoAcceptGap,
	}
	for key, val := range thresholds {
		if val < 0 || val > 1 {
			return errors.Wrapf(errors.ErrInvalidThreshold, "%s = %v", key, val)
		}
	}
	if c.Conversation.TTLSeconds <= 0 {
		return errors.Newf("conversation.ttl_seconds must be positive, got %d", c.Conversation.TTLSeconds)
	}
	if c.Conversation.SweepIntervalSeconds <= 0 {
		return errors.Newf("conversation.sweep_interval_seconds must be positive, got %d", c.Conversation.SweepIntervalSeconds)
	}
	return nil
}
