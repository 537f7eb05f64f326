// Package config defines the service configuration and its viper-based
// loader. Every section carries ApplyDefaults and Validate so a zero config
// file still yields a runnable service.
package config

import (
	"fmt"
	"time"

	"github.com/kbukum/podscribe/internal/logger"
	"github.com/kbukum/podscribe/internal/media"
	"github.com/kbukum/podscribe/internal/observability"
	"github.com/kbukum/podscribe/internal/podcast"
	"github.com/kbukum/podscribe/internal/summarize"
	"github.com/kbukum/podscribe/internal/transcriber"
)

// Config is the root service configuration.
type Config struct {
	Base        BaseConfig                 `yaml:"base" mapstructure:"base"`
	Server      ServerConfig               `yaml:"server" mapstructure:"server"`
	Logging     logger.Config              `yaml:"logging" mapstructure:"logging"`
	Storage     StorageConfig              `yaml:"storage" mapstructure:"storage"`
	Download    DownloadConfig             `yaml:"download" mapstructure:"download"`
	Segmenter   SegmenterConfig            `yaml:"segmenter" mapstructure:"segmenter"`
	Transcriber transcriber.WhisperConfig  `yaml:"transcriber" mapstructure:"transcriber"`
	Summarizer  summarize.ChatConfig       `yaml:"summarizer" mapstructure:"summarizer"`
	Jobs        JobsConfig                 `yaml:"jobs" mapstructure:"jobs"`
	Tracing     observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
}

// BaseConfig contains essential fields every service needs.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "podscribe"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	for _, v := range validEnvs {
		if c.Environment == v {
			return nil
		}
	}
	return fmt.Errorf("base.environment must be one of [development, staging, production] (got: %s)", c.Environment)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *ServerConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate checks the configuration for invalid values.
func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must be non-negative (got: %d)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must be non-negative (got: %d)", c.WriteTimeout)
	}
	return nil
}

// StorageConfig locates the flat-file episode store.
type StorageConfig struct {
	BasePath string `yaml:"base_path" mapstructure:"base_path"`
}

// ApplyDefaults applies default values to storage configuration.
func (c *StorageConfig) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/cache"
	}
}

// DownloadConfig bounds episode audio downloads.
type DownloadConfig struct {
	MaxBytes  int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults applies default values to download configuration.
func (c *DownloadConfig) ApplyDefaults() {
	if c.MaxBytes == 0 {
		c.MaxBytes = podcast.DefaultMaxDownloadBytes
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Minute
	}
}

// SegmenterConfig tunes the silence-based audio segmenter.
type SegmenterConfig struct {
	NoiseFloor    string  `yaml:"noise_floor" mapstructure:"noise_floor"`
	MinSilenceLen float64 `yaml:"min_silence_len" mapstructure:"min_silence_len"` // seconds
	MinSegmentLen float64 `yaml:"min_segment_len" mapstructure:"min_segment_len"` // seconds
}

// ApplyDefaults applies default values to segmenter configuration.
func (c *SegmenterConfig) ApplyDefaults() {
	if c.NoiseFloor == "" {
		c.NoiseFloor = media.DefaultNoiseFloor
	}
	if c.MinSilenceLen == 0 {
		c.MinSilenceLen = media.DefaultMinSilenceLen
	}
	if c.MinSegmentLen == 0 {
		c.MinSegmentLen = media.DefaultMinSegmentLen
	}
}

// Validate checks the segmenter configuration.
func (c *SegmenterConfig) Validate() error {
	if c.MinSilenceLen < 0 {
		return fmt.Errorf("segmenter.min_silence_len must be non-negative (got: %f)", c.MinSilenceLen)
	}
	if c.MinSegmentLen < 0 {
		return fmt.Errorf("segmenter.min_segment_len must be non-negative (got: %f)", c.MinSegmentLen)
	}
	return nil
}

// JobsConfig tunes the transcription job orchestration.
type JobsConfig struct {
	// TTL is the age after which an in-progress handle counts as stale.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// Timeout is the hard ceiling on one per-episode job.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Workers bounds per-job transcription parallelism.
	Workers int `yaml:"workers" mapstructure:"workers"`
	// RatePerMinute limits segment transcriptions per minute. 0 disables.
	RatePerMinute int `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// ApplyDefaults applies default values to jobs configuration.
func (c *JobsConfig) ApplyDefaults() {
	if c.TTL == 0 {
		c.TTL = 10 * time.Minute
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Minute
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

// Validate checks the jobs configuration.
func (c *JobsConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("jobs.workers must be non-negative (got: %d)", c.Workers)
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("jobs.rate_per_minute must be non-negative (got: %d)", c.RatePerMinute)
	}
	return nil
}

// ApplyDefaults applies defaults across all sections.
func (c *Config) ApplyDefaults() {
	c.Base.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Download.ApplyDefaults()
	c.Segmenter.ApplyDefaults()
	c.Jobs.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Base.Name
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Base.Environment
	}
}

// Validate validates all sections.
func (c *Config) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Segmenter.Validate(); err != nil {
		return err
	}
	return c.Jobs.Validate()
}
