package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "THERMOCANCEL"

// configKeys lists every settings key so environment-only overrides are
// visible to Unmarshal.  Viper only unmarshals keys it knows about; without
// the explicit bindings a THERMOCANCEL_* variable with no config file entry
// would be silently ignored.
var configKeys = []string{
	"log.level", "log.format", "log.output_paths",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns",
	"database.min_conns", "database.conn_max_lifetime",
	"redis.addr", "redis.password", "redis.db", "redis.dial_timeout",
	"redis.default_ttl", "redis.key_prefix",
	"search.conserve_bonds", "search.conserve_ring_size",
	"search.max_coefficient", "search.max_total_coefficient",
	"search.max_reactions", "search.solver_timeout", "search.output_unit",
}

// newViper builds a pre-configured Viper instance: YAML file type,
// THERMOCANCEL_ env prefix, automatic env binding, and a key replacer that
// maps "." → "_" so nested keys like "database.host" resolve to
// "THERMOCANCEL_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges THERMOCANCEL_* environment
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

// LoadFromEnv builds a Config entirely from THERMOCANCEL_* environment
// variables, with no config file required.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

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
