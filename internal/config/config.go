// Package config loads and validates the YAML configuration file.
//
// Every key is optional; Validate fills documented defaults, so a missing
// file yields a usable configuration. An unparseable resolver address is
// the one configuration error that is fatal to a whole run.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jroosing/rigo/internal/dns"
)

// Defaults applied by Validate.
const (
	DefaultServer  = "1.1.1.1"
	DefaultPort    = "53"
	DefaultTimeout = 3 * time.Second
	DefaultRetries = 2
)

// ResolveConfigPath returns the effective config path: the explicit flag
// value if set, otherwise the RIGO_CONFIG environment variable.
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("RIGO_CONFIG")
}

// Load reads and validates the configuration at path. An empty path or a
// missing file yields the defaults; a present-but-broken file is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes the configuration and applies defaults.
func (c *Config) Validate() error {
	// Normalize resolver address
	server, err := NormalizeServer(c.Resolver.Server)
	if err != nil {
		return err
	}
	c.Resolver.Server = server

	// Parse timeout
	if c.Resolver.Timeout == "" {
		c.ParsedTimeout = DefaultTimeout
	} else {
		d, err := time.ParseDuration(c.Resolver.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("config: resolver.timeout must be a positive duration, got %q", c.Resolver.Timeout)
		}
		c.ParsedTimeout = d
	}

	if c.Resolver.Retries < 0 {
		return errors.New("config: resolver.retries must be >= 0")
	}
	if c.Resolver.Retries == 0 {
		c.Resolver.Retries = DefaultRetries
	}

	// Normalize record type
	if c.Resolver.RecordType == "" {
		c.Resolver.RecordType = "A"
	}
	if _, err := dns.ParseRecordType(c.Resolver.RecordType); err != nil {
		return fmt.Errorf("config: resolver.record_type: %w", err)
	}

	// Normalize logging
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	c.Logging.Level = strings.ToUpper(c.Logging.Level)
	if c.Logging.StructuredFormat == "" {
		c.Logging.StructuredFormat = "json"
	}

	return nil
}

// NormalizeServer turns a resolver address into host:port form, appending
// the default DNS port when none is given. An empty address yields the
// default resolver.
func NormalizeServer(server string) (string, error) {
	if server == "" {
		return net.JoinHostPort(DefaultServer, DefaultPort), nil
	}
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		// No port present (or a bare IPv6 literal); retry with :53.
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && strings.Contains(addrErr.Err, "missing port") {
			return net.JoinHostPort(strings.Trim(server, "[]"), DefaultPort), nil
		}
		return "", fmt.Errorf("config: invalid resolver address %q: %w", server, err)
	}
	if host == "" {
		return "", fmt.Errorf("config: invalid resolver address %q: empty host", server)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return "", fmt.Errorf("config: invalid resolver port %q: must be 1..65535", port)
	}
	return net.JoinHostPort(host, port), nil
}
