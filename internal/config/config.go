// Package config defines all configuration structures for ThermoCancel.
// No I/O or parsing logic lives here — only plain data types and validation.
// Loading lives in loader.go, defaults in defaults.go.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// DatabaseConfig holds PostgreSQL connection parameters for the reference
// species library.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds Redis connection parameters for the estimate cache.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// SearchConfig holds the tunables of the error-canceling reaction search.
// MaxCoefficient and MaxTotalCoefficient are empirical bounds, not derived
// constants; raising them trades search time for reaction diversity.
type SearchConfig struct {
	// ConserveBonds enforces bond-type conservation (isodesmic reactions).
	ConserveBonds bool `mapstructure:"conserve_bonds"`

	// ConserveRingSize enforces ring-size conservation.
	ConserveRingSize bool `mapstructure:"conserve_ring_size"`

	// MaxCoefficient bounds the magnitude of each stoichiometric coefficient.
	MaxCoefficient int `mapstructure:"max_coefficient"`

	// MaxTotalCoefficient bounds the sum of absolute coefficients per reaction.
	MaxTotalCoefficient int `mapstructure:"max_total_coefficient"`

	// MaxReactions caps how many independent reactions the search collects.
	MaxReactions int `mapstructure:"max_reactions"`

	// SolverTimeout is the per-subset MILP solve budget.
	SolverTimeout time.Duration `mapstructure:"solver_timeout"`

	// OutputUnit is the unit of the final enthalpy estimate.
	OutputUnit string `mapstructure:"output_unit"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ─────────────────────────────────────────────────────────────────────────────

// Config aggregates every configuration section of the application.
type Config struct {
	Log      logging.LogConfig `mapstructure:"log"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Search   SearchConfig      `mapstructure:"search"`
}

// Validate checks cross-field consistency of the configuration.  It is called
// by the loader after defaults have been applied, so zero values here indicate
// an explicit misconfiguration rather than an unset field.
func (c *Config) Validate() error {
	if c.Search.MaxCoefficient < 1 {
		return fmt.Errorf("search.max_coefficient must be >= 1, got %d", c.Search.MaxCoefficient)
	}
	if c.Search.MaxTotalCoefficient < c.Search.MaxCoefficient {
		return fmt.Errorf("search.max_total_coefficient (%d) must be >= search.max_coefficient (%d)",
			c.Search.MaxTotalCoefficient, c.Search.MaxCoefficient)
	}
	if c.Search.MaxReactions < 1 {
		return fmt.Errorf("search.max_reactions must be >= 1, got %d", c.Search.MaxReactions)
	}
	if c.Search.SolverTimeout <= 0 {
		return fmt.Errorf("search.solver_timeout must be positive, got %s", c.Search.SolverTimeout)
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port out of range: %d", c.Database.Port)
	}
	return nil
}

// DSN renders the PostgreSQL connection string for pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}
