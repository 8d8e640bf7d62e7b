package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all pipeline settings.
const envPrefix = "HCTAP"

// newViper builds a pre-configured Viper instance: YAML file type, HCTAP_
// env prefix, automatic env binding, and a key replacer that maps "." to
// "_" so nested keys like "paths.notes_dir" resolve to
// HCTAP_PATHS_NOTES_DIR.
// settingKeys lists every configuration key.  Env-only keys must be bound
// explicitly or viper's Unmarshal never sees them.
var settingKeys = []string{
	"paths.notes_dir",
	"paths.entities_dir",
	"paths.enriched_dir",
	"paths.gold_path",
	"paths.manifest_path",
	"extraction.run_id",
	"extraction.profile",
	"extraction.limit",
	"extraction.expand_qualifiers",
	"eval.top_notes",
	"metrics.enabled",
	"log.level",
	"log.format",
	"log.output_paths",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range settingKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges any HCTAP_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from HCTAP_* environment variables
// and defaults, with no config file required.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// unmarshalAndFinalize unmarshals viper state into a Config, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
