// Package config loads service configuration from defaults, an
// optional YAML file, CASTFORGE_* environment variables, and runtime
// overrides, in increasing order of precedence.
package config

import (
	"time"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig selects log level and output profile.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"`
}

// FileStorageConfig configures the filesystem backend.
type FileStorageConfig struct {
	BaseDir string `mapstructure:"base_dir"`
	BaseURL string `mapstructure:"base_url"`
}

// S3StorageConfig configures the S3 backend.
type S3StorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

// StorageConfig selects and configures the object-store backend.
type StorageConfig struct {
	Backend string            `mapstructure:"backend"`
	File    FileStorageConfig `mapstructure:"file"`
	S3      S3StorageConfig   `mapstructure:"s3"`
}

// OpenAIConfig holds the OpenAI provider settings.
type OpenAIConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	Model       string `mapstructure:"model"`
	SpeechModel string `mapstructure:"speech_model"`
	Voice       string `mapstructure:"voice"`
}

// GeminiConfig holds the Gemini provider settings.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// ProvidersConfig lists the ordered backend chains. Comma-separated
// names, tried in order until one succeeds.
type ProvidersConfig struct {
	Generators   string       `mapstructure:"generators"`
	Synthesizers string       `mapstructure:"synthesizers"`
	OpenAI       OpenAIConfig `mapstructure:"openai"`
	Gemini       GeminiConfig `mapstructure:"gemini"`
}

// CleanupConfig controls the retention sweep that runs after each job.
type CleanupConfig struct {
	MaxAgeHours                float64 `mapstructure:"max_age_hours"`
	DeleteIncomplete           bool    `mapstructure:"delete_incomplete"`
	IncompleteThresholdMinutes float64 `mapstructure:"incomplete_threshold_minutes"`
}

// JobsConfig controls pipeline behavior.
type JobsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Cleanup      CleanupConfig `mapstructure:"cleanup"`
}

// Config is the root configuration document.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}
