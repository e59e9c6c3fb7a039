package config

import "time"

// ResolverConfig contains query settings.
type ResolverConfig struct {
	Server     string `yaml:"server"`      // Resolver address, host or host:port (port defaults to 53)
	Timeout    string `yaml:"timeout"`     // Per-attempt timeout (e.g., "3s")
	Retries    int    `yaml:"retries"`     // Additional attempts after the first times out
	RecordType string `yaml:"record_type"` // Query type mnemonic (e.g., "A", "AAAA")
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string `yaml:"level"`
	Structured       bool   `yaml:"structured"`
	StructuredFormat string `yaml:"structured_format"`
	IncludePID       bool   `yaml:"include_pid"`
}

// ApplicationConfig contains application-level meta configuration.
type ApplicationConfig struct {
	SentryDSN string `yaml:"sentry_dsn"`
}

// Config describes all configuration options.
type Config struct {
	Resolver    ResolverConfig    `yaml:"resolver"`
	Logging     LoggingConfig     `yaml:"logging"`
	Application ApplicationConfig `yaml:"application"`

	// Derived by Validate, not read from the file.
	ParsedTimeout time.Duration `yaml:"-"`
}
