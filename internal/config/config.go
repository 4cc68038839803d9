package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rgehrsitz/paycalc/internal/rules"
)

// EnvPrefix namespaces environment overrides, e.g. PAYCALC_SERVER_ADDR
const EnvPrefix = "PAYCALC"

// Config is the process configuration shared by the CLI, server and TUI
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ServerConfig controls the HTTP service
type ServerConfig struct {
	Addr                   string   `mapstructure:"addr"`
	ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds"`
	RequestTimeoutSeconds  int      `mapstructure:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds"`
	CORSAllowedOrigins     []string `mapstructure:"cors_allowed_origins"`
	MetricsEnabled         bool     `mapstructure:"metrics_enabled"`
	AdminEnabled           bool     `mapstructure:"admin_enabled"`
}

// RulesConfig controls where rule packs come from and how long they are cached
type RulesConfig struct {
	// Dir overrides the bundled rule packs when set
	Dir             string   `mapstructure:"dir"`
	CacheCapacity   int      `mapstructure:"cache_capacity"`
	CacheTTLMinutes int      `mapstructure:"cache_ttl_minutes"`
	Preload         []string `mapstructure:"preload"`
}

// LoggingConfig selects the slog handler
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig holds CLI output defaults
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                   ":8080",
			ReadTimeoutSeconds:     10,
			WriteTimeoutSeconds:    10,
			RequestTimeoutSeconds:  5,
			ShutdownTimeoutSeconds: 15,
			CORSAllowedOrigins:     []string{"*"},
			MetricsEnabled:         true,
			AdminEnabled:           true,
		},
		Rules: RulesConfig{
			CacheCapacity:   rules.DefaultCapacity,
			CacheTTLMinutes: int(rules.DefaultTTL / time.Minute),
			Preload:         []string{"US-2025", "UK-2025"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "console",
		},
	}
}

// SetDefaults registers every default with v and enables PAYCALC_* overrides
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.read_timeout_seconds", defaults.Server.ReadTimeoutSeconds)
	v.SetDefault("server.write_timeout_seconds", defaults.Server.WriteTimeoutSeconds)
	v.SetDefault("server.request_timeout_seconds", defaults.Server.RequestTimeoutSeconds)
	v.SetDefault("server.shutdown_timeout_seconds", defaults.Server.ShutdownTimeoutSeconds)
	v.SetDefault("server.cors_allowed_origins", defaults.Server.CORSAllowedOrigins)
	v.SetDefault("server.metrics_enabled", defaults.Server.MetricsEnabled)
	v.SetDefault("server.admin_enabled", defaults.Server.AdminEnabled)

	v.SetDefault("rules.dir", defaults.Rules.Dir)
	v.SetDefault("rules.cache_capacity", defaults.Rules.CacheCapacity)
	v.SetDefault("rules.cache_ttl_minutes", defaults.Rules.CacheTTLMinutes)
	v.SetDefault("rules.preload", defaults.Rules.Preload)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetDefault("output.format", defaults.Output.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile merges a YAML/JSON config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// CacheTTL returns the rule-pack cache TTL
func (c RulesConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// RegistryOptions translates the rules config into rule-pack store options
func (c RulesConfig) RegistryOptions() []rules.Option {
	opts := []rules.Option{
		rules.WithCapacity(c.CacheCapacity),
		rules.WithTTL(c.CacheTTL()),
	}
	if c.Dir != "" {
		opts = append(opts, rules.WithFS(os.DirFS(c.Dir)))
	}
	return opts
}

// NewLogger builds the process logger from the logging config
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
