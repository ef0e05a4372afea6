// Package config loads the bot's settings from YAML and ARTIFACTSBOT_*
// environment variables using Viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides. The key
// simulator.iterations is read from ARTIFACTSBOT_SIMULATOR_ITERATIONS.
const EnvPrefix = "ARTIFACTSBOT"

// DatabaseConfig holds PostgreSQL connection settings for catalog snapshots.
type DatabaseConfig struct {
	// Enabled turns snapshot persistence on. When false the other fields are not validated.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns a postgres:// URL for d with credentials escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     hostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// TelnetConfig holds settings for the chat listener.
type TelnetConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// ReadTimeout disconnects idle sessions. Zero disables it.
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (t TelnetConfig) Addr() string { return hostPort(t.Host, t.Port) }

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is json or console.
	Format string `mapstructure:"format"`
}

// ArtifactsConfig holds settings for the game HTTP API.
type ArtifactsConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// MaxRetries is the number of attempts made for one retryable request.
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// PageSize is the number of records requested per page; the API caps it at 100.
	PageSize            int           `mapstructure:"page_size"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	UpdateCheckInterval time.Duration `mapstructure:"update_check_interval"`
}

// SimulatorConfig holds fight simulation settings.
type SimulatorConfig struct {
	Iterations int `mapstructure:"iterations"`
	// DefaultLevel is used when a request omits the character level.
	DefaultLevel int `mapstructure:"default_level"`
	MinLevel     int `mapstructure:"min_level"`
	MaxLevel     int `mapstructure:"max_level"`
	// Workers bounds the goroutines running iterations. Zero means GOMAXPROCS.
	Workers int `mapstructure:"workers"`
}

// AdminConfig holds settings for the gRPC health endpoint and the operator
// chat commands.
type AdminConfig struct {
	GRPCHost string `mapstructure:"grpc_host"`
	GRPCPort int    `mapstructure:"grpc_port"`

	// ChatCommands enables reload and uptime for every chat session.
	ChatCommands bool `mapstructure:"chat_commands"`
}

func (a AdminConfig) Addr() string { return hostPort(a.GRPCHost, a.GRPCPort) }

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Telnet    TelnetConfig    `mapstructure:"telnet"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

// problems accumulates the violations found in one config section.
type problems struct {
	section string
	errs    []error
}

func (p *problems) require(ok bool, key, format string, args ...any) {
	if !ok {
		p.errs = append(p.errs, fmt.Errorf("%s.%s %s", p.section, key, fmt.Sprintf(format, args...)))
	}
}

func (p *problems) port(key string, v int) {
	p.require(v >= 1 && v <= 65535, key, "must be 1-65535, got %d", v)
}

func (p *problems) oneOf(key, v string, allowed ...string) {
	p.require(slices.Contains(allowed, v), key, "must be one of [%s], got %q", strings.Join(allowed, ", "), v)
}

// Validate checks every section and reports all violations together.
//
// Postcondition: the returned error, if any, wraps one error per violation.
func (c Config) Validate() error {
	sections := []*problems{
		c.Database.validate(),
		c.Telnet.validate(),
		c.Logging.validate(),
		c.Artifacts.validate(),
		c.Simulator.validate(),
		c.Admin.validate(),
	}
	var all []error
	for _, p := range sections {
		all = append(all, p.errs...)
	}
	if len(all) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(all...))
}

func (d DatabaseConfig) validate() *problems {
	p := &problems{section: "database"}
	if !d.Enabled {
		return p
	}
	p.require(d.Host != "", "host", "must not be empty")
	p.port("port", d.Port)
	p.require(d.User != "", "user", "must not be empty")
	p.require(d.Name != "", "name", "must not be empty")
	p.oneOf("sslmode", d.SSLMode, "disable", "require", "verify-ca", "verify-full")
	p.require(d.MaxConns >= 1, "max_conns", "must be >= 1, got %d", d.MaxConns)
	p.require(d.MinConns >= 0 && d.MinConns <= d.MaxConns, "min_conns", "must be within [0, max_conns], got %d", d.MinConns)
	return p
}

func (t TelnetConfig) validate() *problems {
	p := &problems{section: "telnet"}
	p.port("port", t.Port)
	p.require(t.ReadTimeout >= 0, "read_timeout", "must not be negative")
	p.require(t.WriteTimeout >= 0, "write_timeout", "must not be negative")
	return p
}

func (l LoggingConfig) validate() *problems {
	p := &problems{section: "logging"}
	p.oneOf("level", l.Level, "debug", "info", "warn", "error")
	p.oneOf("format", l.Format, "json", "console")
	return p
}

func (a ArtifactsConfig) validate() *problems {
	p := &problems{section: "artifacts"}
	u, err := url.Parse(a.BaseURL)
	p.require(err == nil && u.Scheme != "" && u.Host != "", "base_url", "must be an absolute URL, got %q", a.BaseURL)
	p.require(a.MaxRetries >= 1, "max_retries", "must be >= 1, got %d", a.MaxRetries)
	p.require(a.RetryDelay >= 0, "retry_delay", "must not be negative")
	p.require(a.PageSize >= 1 && a.PageSize <= 100, "page_size", "must be 1-100, got %d", a.PageSize)
	p.require(a.RequestTimeout > 0, "request_timeout", "must be positive")
	p.require(a.UpdateCheckInterval > 0, "update_check_interval", "must be positive")
	return p
}

func (s SimulatorConfig) validate() *problems {
	p := &problems{section: "simulator"}
	p.require(s.Iterations >= 1, "iterations", "must be >= 1, got %d", s.Iterations)
	p.require(s.MinLevel >= 0, "min_level", "must be >= 0, got %d", s.MinLevel)
	p.require(s.MinLevel <= s.MaxLevel, "max_level", "must not be below min_level")
	p.require(s.DefaultLevel >= s.MinLevel && s.DefaultLevel <= s.MaxLevel, "default_level",
		"must be within [%d, %d], got %d", s.MinLevel, s.MaxLevel, s.DefaultLevel)
	p.require(s.Workers >= 0, "workers", "must be >= 0, got %d", s.Workers)
	return p
}

func (a AdminConfig) validate() *problems {
	p := &problems{section: "admin"}
	p.require(a.GRPCHost != "", "grpc_host", "must not be empty")
	p.port("grpc_port", a.GRPCPort)
	return p
}

// defaults holds the value of every key not set by file or environment.
var defaults = map[string]any{
	"database.enabled":           false,
	"database.host":              "localhost",
	"database.port":              5432,
	"database.user":              "artifactsbot",
	"database.password":          "artifactsbot",
	"database.name":              "artifactsbot",
	"database.sslmode":           "disable",
	"database.max_conns":         5,
	"database.min_conns":         1,
	"database.max_conn_lifetime": "1h",

	"telnet.host":          "0.0.0.0",
	"telnet.port":          4000,
	"telnet.read_timeout":  "10m",
	"telnet.write_timeout": "30s",

	"logging.level":  "info",
	"logging.format": "json",

	"artifacts.base_url":              "https://api.artifactsmmo.com",
	"artifacts.max_retries":           5,
	"artifacts.retry_delay":           "5s",
	"artifacts.page_size":             100,
	"artifacts.request_timeout":       "30s",
	"artifacts.update_check_interval": "1m",

	"simulator.iterations":    1000,
	"simulator.default_level": 40,
	"simulator.min_level":     1,
	"simulator.max_level":     40,
	"simulator.workers":       0,

	"admin.grpc_host":     "127.0.0.1",
	"admin.grpc_port":     50051,
	"admin.chat_commands": false,
}

// NewViper returns a Viper instance with defaults and environment overrides
// applied, ready for a config file or explicit Set calls.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the YAML file at path, applies environment overrides, and
// validates the result. An empty path uses defaults and environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper decodes and validates the settings held by v.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
