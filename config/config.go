// Package config resolves the runtime settings of the blog service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvAddr          = "BLOG_ADDR"
	EnvSecretKey     = "BLOG_SECRET_KEY"
	EnvInstancePath  = "BLOG_INSTANCE_PATH"
	EnvDatabase      = "BLOG_DATABASE"
	EnvSecureCookies = "BLOG_SECURE_COOKIES"
	EnvSessionMaxAge = "BLOG_SESSION_MAX_AGE"
	EnvLogLevel      = "BLOG_LOG_LEVEL"
)

// DatabaseFile is the name of the SQLite file inside the instance folder.
const DatabaseFile = "blog.sqlite"

// Config holds runtime settings for the blog service.
//
// Fields:
//   - Addr: bind address of the HTTP server.
//   - SecretKey: signs the session cookie. Override "dev" in production.
//   - InstancePath: per-deployment folder holding the database and .env file.
//   - DatabasePath: SQLite file path.
//   - SecureCookies: marks the session cookie Secure (HTTPS only).
//   - SessionMaxAge: session cookie lifetime; zero keeps it for the browser session.
//   - LogLevel: zap level name.
type Config struct {
	Addr          string
	SecretKey     string
	InstancePath  string
	DatabasePath  string
	SecureCookies bool
	SessionMaxAge time.Duration
	LogLevel      string
}

// Default returns a development configuration rooted at instancePath.
func Default(instancePath string) *Config {
	return &Config{
		Addr:          ":8080",
		SecretKey:     "dev",
		InstancePath:  instancePath,
		DatabasePath:  filepath.Join(instancePath, DatabaseFile),
		SecureCookies: false,
		SessionMaxAge: 0,
		LogLevel:      "info",
	}
}

// Load builds a Config from defaults, the instance folder's .env file (if
// any) and finally the process environment. The instance folder is created
// when missing.
func Load() (*Config, error) {
	instancePath := getEnv(EnvInstancePath, "instance")

	// variables already present in the environment win over the file
	err := godotenv.Load(filepath.Join(instancePath, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read instance config: %w", err)
	}

	cfg := Default(instancePath)
	cfg.Addr = getEnv(EnvAddr, cfg.Addr)
	cfg.SecretKey = getEnv(EnvSecretKey, cfg.SecretKey)
	cfg.DatabasePath = getEnv(EnvDatabase, cfg.DatabasePath)
	cfg.SecureCookies = getEnvBool(EnvSecureCookies, cfg.SecureCookies)
	cfg.SessionMaxAge = getEnvDuration(EnvSessionMaxAge, cfg.SessionMaxAge)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	const instanceDirPerms = 0o700
	if err := os.MkdirAll(cfg.InstancePath, instanceDirPerms); err != nil {
		return nil, fmt.Errorf("failed to create instance folder: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.SecretKey == "":
		return errors.New("secret key must not be empty")
	case c.DatabasePath == "":
		return errors.New("database path must not be empty")
	case c.SessionMaxAge < 0:
		return errors.New("session max age must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
