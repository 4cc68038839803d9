package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/paycalc/internal/rules"
)

// ValidationError describes one invalid config field
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Validate checks every section and returns all problems found
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, ValidationError{"server.addr", c.Server.Addr, "must not be empty"})
	}
	timeouts := []struct {
		field string
		value int
	}{
		{"server.read_timeout_seconds", c.Server.ReadTimeoutSeconds},
		{"server.write_timeout_seconds", c.Server.WriteTimeoutSeconds},
		{"server.request_timeout_seconds", c.Server.RequestTimeoutSeconds},
		{"server.shutdown_timeout_seconds", c.Server.ShutdownTimeoutSeconds},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			errs = append(errs, ValidationError{t.field, t.value, "must be positive"})
		}
	}

	if c.Rules.CacheCapacity < 1 {
		errs = append(errs, ValidationError{"rules.cache_capacity", c.Rules.CacheCapacity, "must be at least 1"})
	}
	if c.Rules.CacheTTL() < time.Minute {
		errs = append(errs, ValidationError{"rules.cache_ttl_minutes", c.Rules.CacheTTLMinutes, "must be at least 1"})
	}
	for _, key := range c.Rules.Preload {
		if _, _, err := rules.ParseKey(key); err != nil {
			errs = append(errs, ValidationError{"rules.preload", key, err.Error()})
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{"logging.level", c.Logging.Level, "must be debug, info, warn or error"})
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{"logging.format", c.Logging.Format, "must be text or json"})
	}

	return errs
}
