// Package config loads application settings from defaults, an optional
// config file, a .env file and the process environment, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Avatar   AvatarConfig   `mapstructure:"avatar"`
	B2       B2Config       `mapstructure:"b2"`
}

type AppConfig struct {
	Env             string        `mapstructure:"env"`       // local / prod
	LogLevel        string        `mapstructure:"log_level"` // debug / info / warn / error
	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type SessionConfig struct {
	CookieName  string        `mapstructure:"cookie_name"`
	Secret      string        `mapstructure:"secret"`
	Secure      bool          `mapstructure:"secure"`
	TTL         time.Duration `mapstructure:"ttl"`
	RememberTTL time.Duration `mapstructure:"remember_ttl"`
}

type AvatarConfig struct {
	Backend        string `mapstructure:"backend"` // disk / b2
	Dir            string `mapstructure:"dir"`
	URLPrefix      string `mapstructure:"url_prefix"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type B2Config struct {
	KeyID   string `mapstructure:"key_id"`
	AppKey  string `mapstructure:"app_key"`
	Bucket  string `mapstructure:"bucket"`
	BaseURL string `mapstructure:"base_url"`
}

var defaults = map[string]any{
	"app.env":                 "local",
	"app.log_level":           "info",
	"app.http_addr":           ":8080",
	"app.shutdown_timeout":    5 * time.Second,
	"database.path":           "data/site.db",
	"session.cookie_name":     "session_id",
	"session.secret":          "dev_secret_change_me",
	"session.secure":          false,
	"session.ttl":             24 * time.Hour,
	"session.remember_ttl":    365 * 24 * time.Hour,
	"avatar.backend":          "disk",
	"avatar.dir":              "data/profile_pics",
	"avatar.url_prefix":       "/static/profile_pics",
	"avatar.max_upload_bytes": int64(4 << 20),
	"b2.key_id":               "",
	"b2.app_key":              "",
	"b2.bucket":               "",
	"b2.base_url":             "",
}

// aliases keeps the short environment names used by deployment scripts.
var aliases = map[string]string{
	"database.path":  "DB_PATH",
	"session.secret": "SESSION_SECRET",
	"b2.key_id":      "B2_KEY_ID",
	"b2.app_key":     "B2_APP_KEY",
	"b2.bucket":      "B2_BUCKET",
	"b2.base_url":    "B2_BASE_URL",
}

// Load reads configuration. path may be empty, in which case CONFIG_FILE
// and then configs/config.yaml are tried; a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range aliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !missing(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if port := os.Getenv("PORT"); port != "" && os.Getenv("APP_HTTP_ADDR") == "" {
		cfg.App.HTTPAddr = ":" + port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func missing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Avatar.Backend {
	case "disk":
	case "b2":
		if c.B2.KeyID == "" || c.B2.AppKey == "" || c.B2.Bucket == "" {
			return errors.New("config: b2 avatar backend needs b2.key_id, b2.app_key and b2.bucket")
		}
	default:
		return fmt.Errorf("config: unknown avatar backend %q", c.Avatar.Backend)
	}
	if c.App.Env == "prod" && c.Session.Secret == defaults["session.secret"] {
		return errors.New("config: session.secret must be set in prod")
	}
	return nil
}
