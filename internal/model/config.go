package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig controls token issuance.
type AuthConfig struct {
	// JWTSecret signs access tokens. When empty the secret is read from
	// (or generated into) the OS keyring if UseKeyring is set.
	JWTSecret  string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	UseKeyring bool          `mapstructure:"use_keyring" yaml:"use_keyring"`
}

// RedisConfig points at the optional read cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// RateLimitConfig throttles requests per client IP.
type RateLimitConfig struct {
	RequestsPerMin int `mapstructure:"requests_per_min" yaml:"requests_per_min"`
	Burst          int `mapstructure:"burst" yaml:"burst"`
}

// ReminderConfig drives the due-time reminder poller.
type ReminderConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	LeadTime time.Duration `mapstructure:"lead_time" yaml:"lead_time"`
}

// LogConfig selects log verbosity and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" yaml:"ratelimit"`
	Reminder  ReminderConfig  `mapstructure:"reminder" yaml:"reminder"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`

	// Timezone is the IANA zone used to decide "today" and "now".
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

// Location resolves Timezone, falling back to the local zone.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todocal/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todocal", "config.yaml")
}

// DefaultDatabasePath returns ~/.local/share/todocal/todocal.db.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "todocal.db"
	}
	return filepath.Join(home, ".local", "share", "todocal", "todocal.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.use_keyring", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("ratelimit.requests_per_min", 600)
	v.SetDefault("ratelimit.burst", 50)
	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.interval", time.Minute)
	v.SetDefault("reminder.lead_time", 15*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("timezone", "Local")
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file yields the defaults. Every key can be overridden by an
// environment variable such as TODOCAL_SERVER_ADDR.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TODOCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("database", cfg.Database)
	v.Set("auth", cfg.Auth)
	v.Set("redis", cfg.Redis)
	v.Set("ratelimit", cfg.RateLimit)
	v.Set("reminder", cfg.Reminder)
	v.Set("log", cfg.Log)
	v.Set("timezone", cfg.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
