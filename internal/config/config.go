// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/savetube/savetube/internal/admission"
	enginecfg "github.com/savetube/savetube/internal/engine/ytdlp"
	"github.com/savetube/savetube/internal/policy/ratelimit"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Admission AdmissionConfig `mapstructure:"admission"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Pacing    PacingConfig    `mapstructure:"pacing"`
	Downloads DownloadsConfig `mapstructure:"downloads"`
	CMS       CMSConfig       `mapstructure:"cms"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port               int `mapstructure:"port"`
	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_seconds"`
}

// LoggingConfig toggles zap development features and the on-disk log file.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
}

// AdmissionConfig governs per-identity request throttling.
type AdmissionConfig struct {
	WindowSeconds       int `mapstructure:"window_seconds"`
	WindowCap           int `mapstructure:"window_cap"`
	HourlyWindowSeconds int `mapstructure:"hourly_window_seconds"`
	HourlyCap           int `mapstructure:"hourly_cap"`
	BlockSeconds        int `mapstructure:"block_seconds"`
	BlockClearSize      int `mapstructure:"block_clear_size"`
}

// FetchConfig governs worker pool and queue behavior.
type FetchConfig struct {
	Concurrency        int `mapstructure:"concurrency"`
	QueueDepth         int `mapstructure:"queue_depth"`
	RequestTimeoutSec  int `mapstructure:"request_timeout_seconds"`
	ProbeTimeoutSec    int `mapstructure:"probe_timeout_seconds"`
	ProgressBufferSize int `mapstructure:"progress_buffer_size"`
}

// EngineConfig configures the extraction engine invocations.
type EngineConfig struct {
	Retries          string `mapstructure:"retries"`
	FragmentRetries  string `mapstructure:"fragment_retries"`
	SocketTimeoutSec int    `mapstructure:"socket_timeout_seconds"`
	AutoInstall      bool   `mapstructure:"auto_install"`
}

// PacingConfig throttles outbound engine runs per platform.
type PacingConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// DownloadsConfig sets the artifact directory.
type DownloadsConfig struct {
	Dir string `mapstructure:"dir"`
}

// CMSConfig sets the content document directory.
type CMSConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SAVETUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.file", "app.log")
	v.SetDefault("admission.window_seconds", 60)
	v.SetDefault("admission.window_cap", 10)
	v.SetDefault("admission.hourly_window_seconds", 3600)
	v.SetDefault("admission.hourly_cap", 50)
	v.SetDefault("admission.block_seconds", 300)
	v.SetDefault("admission.block_clear_size", 100)
	v.SetDefault("fetch.concurrency", 4)
	v.SetDefault("fetch.queue_depth", 64)
	v.SetDefault("fetch.request_timeout_seconds", 600)
	v.SetDefault("fetch.probe_timeout_seconds", 120)
	v.SetDefault("fetch.progress_buffer_size", 4096)
	v.SetDefault("engine.retries", "15")
	v.SetDefault("engine.fragment_retries", "15")
	v.SetDefault("engine.socket_timeout_seconds", 30)
	v.SetDefault("engine.auto_install", true)
	v.SetDefault("pacing.rps", 1.0)
	v.SetDefault("pacing.burst", 2)
	v.SetDefault("downloads.dir", "downloads")
	v.SetDefault("cms.dir", "content")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be > 0")
	}
	if c.Fetch.QueueDepth <= 0 {
		return fmt.Errorf("fetch.queue_depth must be > 0")
	}
	if c.Engine.SocketTimeoutSec <= 0 {
		return fmt.Errorf("engine.socket_timeout_seconds must be > 0")
	}
	if c.Admission.WindowCap <= 0 || c.Admission.HourlyCap <= 0 {
		return fmt.Errorf("admission caps must be > 0")
	}
	if c.Admission.WindowSeconds <= 0 || c.Admission.HourlyWindowSeconds <= 0 {
		return fmt.Errorf("admission windows must be > 0")
	}
	if c.Downloads.Dir == "" {
		return fmt.Errorf("downloads.dir must be set")
	}
	if c.Pacing.RPS <= 0 {
		return fmt.Errorf("pacing.rps must be > 0")
	}
	return nil
}

// AdmissionPolicy converts the raw knobs into the admission controller config.
func (c Config) AdmissionPolicy() admission.Config {
	return admission.Config{
		Window:         time.Duration(c.Admission.WindowSeconds) * time.Second,
		WindowCap:      c.Admission.WindowCap,
		HourlyWindow:   time.Duration(c.Admission.HourlyWindowSeconds) * time.Second,
		HourlyCap:      c.Admission.HourlyCap,
		BlockDuration:  time.Duration(c.Admission.BlockSeconds) * time.Second,
		BlockClearSize: c.Admission.BlockClearSize,
	}
}

// EnginePolicy converts the raw knobs into the engine adapter config.
func (c Config) EnginePolicy() enginecfg.Config {
	return enginecfg.Config{
		Retries:         c.Engine.Retries,
		FragmentRetries: c.Engine.FragmentRetries,
		SocketTimeout:   float64(c.Engine.SocketTimeoutSec),
		VersionTimeout:  10 * time.Second,
	}
}

// PacingPolicy converts the raw knobs into the per-platform pacer config.
func (c Config) PacingPolicy() ratelimit.Config {
	return ratelimit.Config{
		DefaultRPS:   c.Pacing.RPS,
		DefaultBurst: c.Pacing.Burst,
	}
}

// RequestTimeout bounds how long a download submitter waits for its worker.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Fetch.RequestTimeoutSec) * time.Second
}

// ProbeTimeout bounds how long a metadata probe waits for its worker.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Fetch.ProbeTimeoutSec) * time.Second
}

// ShutdownTimeout bounds graceful HTTP server shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSec) * time.Second
}
