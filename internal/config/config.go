// Package config loads the CoreConfig values enumerated in the service
// specification (§6.3) from a YAML file, following the nested
// struct-of-structs-with-yaml-tags shape the rest of this codebase's
// teacher lineage uses for configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it can be written as "15s" in YAML.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string ("15s") or a bare number
// of seconds, matching how the rest of the corpus's config files read.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs int
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("decode duration: %w", err)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

// D returns the underlying time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// CoreConfig holds every tunable named in the service specification.
type CoreConfig struct {
	Concurrency struct {
		FeedParallelism    int `yaml:"feed_parallelism"`
		ArticleParallelism int `yaml:"article_parallelism"`
		LLMParallelism     int `yaml:"llm_parallelism"`
	} `yaml:"concurrency"`

	Timeouts struct {
		Fetch           Duration `yaml:"fetch_timeout"`
		Extract         Duration `yaml:"extract_timeout"`
		LLM             Duration `yaml:"llm_timeout"`
		RequestDeadline Duration `yaml:"request_deadline"`
	} `yaml:"timeouts"`

	Limits struct {
		MaxArticlesHard int `yaml:"max_articles_hard"`
		BodySoftCap     int `yaml:"body_soft_cap"`
		BodyHardCap     int `yaml:"body_hard_cap"`
	} `yaml:"limits"`

	Idempotency struct {
		Window   Duration `yaml:"window"`
		Capacity int      `yaml:"capacity"`
	} `yaml:"idempotency"`

	Recommendation struct {
		WindowDays int `yaml:"window_days"`
	} `yaml:"recommendation"`

	LLM struct {
		Model string `yaml:"model"`
	} `yaml:"llm"`
}

// Default returns a CoreConfig with every default named in the
// specification's configuration table.
func Default() *CoreConfig {
	cfg := &CoreConfig{}
	cfg.Concurrency.FeedParallelism = 8
	cfg.Concurrency.ArticleParallelism = 6
	cfg.Concurrency.LLMParallelism = 3
	cfg.Timeouts.Fetch = Duration(15 * time.Second)
	cfg.Timeouts.Extract = Duration(20 * time.Second)
	cfg.Timeouts.LLM = Duration(60 * time.Second)
	cfg.Timeouts.RequestDeadline = Duration(300 * time.Second)
	cfg.Limits.MaxArticlesHard = 50
	cfg.Limits.BodySoftCap = 4000
	cfg.Limits.BodyHardCap = 6000
	cfg.Idempotency.Window = Duration(60 * time.Second)
	cfg.Idempotency.Capacity = 256
	cfg.Recommendation.WindowDays = 30
	cfg.LLM.Model = "gpt-3.5-turbo"
	return cfg
}

// Load reads a YAML config file, applying it on top of Default() so an
// operator only needs to specify the keys they want to override.
func Load(path string) (*CoreConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
