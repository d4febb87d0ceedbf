package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const envPrefix = "CASTFORGE"

var (
	configMu  sync.RWMutex
	appConfig *Config
)

// envBindings maps flat environment variable suffixes to config keys,
// so CASTFORGE_PORT works alongside the nested CASTFORGE_SERVER_PORT
// form viper derives automatically.
var envBindings = map[string]string{
	"server.host":                    "HOST",
	"server.port":                    "PORT",
	"server.read_timeout":            "READ_TIMEOUT",
	"server.write_timeout":           "WRITE_TIMEOUT",
	"server.idle_timeout":            "IDLE_TIMEOUT",
	"server.shutdown_timeout":        "SHUTDOWN_TIMEOUT",
	"logging.level":                  "LOG_LEVEL",
	"logging.profile":                "LOG_PROFILE",
	"storage.backend":                "STORAGE_BACKEND",
	"storage.file.base_dir":          "STORAGE_DIR",
	"storage.s3.bucket":              "S3_BUCKET",
	"storage.s3.region":              "S3_REGION",
	"storage.s3.endpoint":            "S3_ENDPOINT",
	"providers.generators":           "GENERATORS",
	"providers.synthesizers":         "SYNTHESIZERS",
	"providers.openai.api_key":       "OPENAI_API_KEY",
	"providers.gemini.api_key":       "GEMINI_API_KEY",
	"jobs.poll_interval":             "POLL_INTERVAL",
	"jobs.cleanup.max_age_hours":     "CLEANUP_MAX_AGE_HOURS",
	"jobs.cleanup.delete_incomplete": "CLEANUP_DELETE_INCOMPLETE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "STRUCTURED")

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.file.base_dir", "./data/jobs")
	v.SetDefault("storage.file.base_url", "")

	v.SetDefault("providers.generators", "mock")
	v.SetDefault("providers.synthesizers", "mock")

	v.SetDefault("jobs.poll_interval", "1s")
	v.SetDefault("jobs.cleanup.max_age_hours", 24)
	v.SetDefault("jobs.cleanup.delete_incomplete", true)
	v.SetDefault("jobs.cleanup.incomplete_threshold_minutes", 30)
}

// Load builds the configuration and caches it for GetConfig.
// Precedence, highest first: runtime overrides, environment variables,
// config file, defaults.
func Load(_ context.Context, overrides ...map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("castforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !isConfigFileNotFound(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, suffix := range envBindings {
		// Bind both the short form (CASTFORGE_PORT) and the nested form
		// (CASTFORGE_SERVER_PORT); explicit bindings replace the
		// automatic lookup for a key.
		nested := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envPrefix+"_"+suffix, nested); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	// Runtime overrides go through Set so they outrank env vars.
	for _, override := range overrides {
		applyOverrides(v, "", override)
	}

	cfg := &Config{}
	decode := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decode); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	configMu.Lock()
	appConfig = cfg
	configMu.Unlock()
	return cfg, nil
}

func applyOverrides(v *viper.Viper, prefix string, values map[string]any) {
	for key, value := range values {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			applyOverrides(v, full, nested)
			continue
		}
		v.Set(full, value)
	}
}

func isConfigFileNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	if e, ok := err.(viper.ConfigFileNotFoundError); ok {
		*target = e
		return true
	}
	return false
}

// GetConfig returns the last loaded configuration, or nil before Load.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}
