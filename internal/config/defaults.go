package config

import "time"

// ApplyDefaults fills unset fields with the platform defaults.  Explicitly
// configured values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "thermocancel"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "thermocancel"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "thermocancel:"
	}

	applySearchDefaults(&cfg.Search)
}

// applySearchDefaults fills the search section.
func applySearchDefaults(s *SearchConfig) {
	if s.MaxCoefficient == 0 {
		s.MaxCoefficient = 4
	}
	if s.MaxTotalCoefficient == 0 {
		s.MaxTotalCoefficient = 20
	}
	if s.MaxReactions == 0 {
		s.MaxReactions = 20
	}
	if s.SolverTimeout == 0 {
		s.SolverTimeout = time.Second
	}
	if s.OutputUnit == "" {
		s.OutputUnit = "kJ/mol"
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.
// Bond and ring conservation default to on; disabling them loosens the
// search to merely atom-balanced reactions.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Search.ConserveBonds = true
	cfg.Search.ConserveRingSize = true
	ApplyDefaults(cfg)
	return cfg
}

// DefaultSearchConfig returns the search section with all defaults applied
// and both conservation rules enabled.
func DefaultSearchConfig() SearchConfig {
	s := SearchConfig{ConserveBonds: true, ConserveRingSize: true}
	applySearchDefaults(&s)
	return s
}
