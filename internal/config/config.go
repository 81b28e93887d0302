package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// HTTP server
	ListenAddr  string        // e.g. ":8080"
	HTTPTimeout time.Duration // per upstream XRPC call

	// CORSAllowedOrigins are browser origins allowed credentialed requests.
	// Any other origin gets a wildcard without credentials.
	CORSAllowedOrigins []string

	// Upstream
	BskyService string // PDS or entryway, e.g. https://bsky.social
	SiteName    string // shown to Lemmy clients

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// Sessions
	MasterKeyHex  string        // hex; empty means a random per-process key
	SessionMaxAge time.Duration // stored blobs untouched this long are pruned

	// Postgres (explicit pieces). Sessions are kept in memory when PGHost is empty.
	PGHost     string // e.g. "localhost" or "postgres" when running in compose
	PGPort     int    // e.g. 5432
	PGUser     string // e.g. "app"
	PGPassword string // e.g. "app"
	PGDatabase string // e.g. "rephoton"
	PGSSLMode  string // e.g. "disable" locally, "require" in cloud
}

// BuildDSN composes a keyword/value DSN compatible with pgxpool.
func (c Config) BuildDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PGHost, c.PGPort, c.PGUser, c.PGPassword, c.PGDatabase, c.PGSSLMode,
	)
}

// UsePostgres reports whether sessions go to PostgreSQL.
func (c Config) UsePostgres() bool { return c.PGHost != "" }

// Load reads .env (when present) into the environment, then builds the
// config from the environment layered over the YAML file named by
// REPHOTON_CONFIG (when set) layered over defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	file := map[string]string{}
	if path := os.Getenv("REPHOTON_CONFIG"); path != "" {
		var err error
		if file, err = readFile(path); err != nil {
			return Config{}, err
		}
	}
	return build(lookup(file)), nil
}

// FromEnv builds the config from the environment and defaults only.
func FromEnv() Config {
	return build(lookup(nil))
}

// readFile parses a flat YAML mapping. Keys match the environment variable
// names, case-insensitively.
func readFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		out[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return out, nil
}

type lookupFunc func(k string) (string, bool)

func lookup(file map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		if v := os.Getenv(k); v != "" {
			return v, true
		}
		v, ok := file[k]
		return v, ok && v != ""
	}
}

func build(get lookupFunc) Config {
	c := Config{}

	c.ListenAddr = getenv(get, "HTTP_LISTEN_ADDR", ":8080")
	c.HTTPTimeout = getenvd(get, "HTTP_TIMEOUT", 10*time.Second)
	c.CORSAllowedOrigins = getenvl(get, "CORS_ALLOWED_ORIGINS")

	c.BskyService = getenv(get, "BSKY_SERVICE", "https://bsky.social")
	c.SiteName = getenv(get, "SITE_NAME", "rephoton")

	c.LogLevel = getenv(get, "LOG_LEVEL", "info")
	c.LogFormat = getenv(get, "LOG_FORMAT", "text")

	c.MasterKeyHex = getenv(get, "MASTER_KEY_HEX", "")
	c.SessionMaxAge = getenvd(get, "SESSION_MAX_AGE", 30*24*time.Hour)

	// Postgres pieces
	c.PGHost = getenv(get, "PG_HOST", "")
	c.PGPort = getenvi(get, "PG_PORT", 5432)
	c.PGUser = getenv(get, "PG_USER", "app")
	c.PGPassword = getenv(get, "PG_PASSWORD", "app")
	c.PGDatabase = getenv(get, "PG_DATABASE", "rephoton")
	c.PGSSLMode = getenv(get, "PG_SSLMODE", "disable")

	return c
}

func getenv(get lookupFunc, k, def string) string {
	if v, ok := get(k); ok {
		return v
	}
	return def
}

func getenvi(get lookupFunc, k string, def int) int {
	if v, ok := get(k); ok {
		var iv int
		_, err := fmt.Sscanf(v, "%d", &iv)
		if err == nil {
			return iv
		}
	}
	return def
}

func getenvd(get lookupFunc, k string, def time.Duration) time.Duration {
	if v, ok := get(k); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getenvl splits a comma-separated value, dropping empty entries.
func getenvl(get lookupFunc, k string) []string {
	v, ok := get(k)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
