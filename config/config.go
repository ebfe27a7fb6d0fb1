/*
Package config loads process configuration.

SOURCES (later wins):
  1. Defaults
  2. .env file in the working directory (optional)
  3. Environment variables
  4. Command-line flags (-port, -db)

STORAGE MODE:
  GITHUB_OWNER, GITHUB_REPO and GITHUB_TOKEN together select remote mode:
  entries are read from and written to a JSON file in that repository and
  the local database keeps a backup copy. If any of the three is missing
  the tracker runs local-only. Missing settings are never an error.

VARIABLES:
  PORT                HTTP port (8080)
  DB_PATH             SQLite path (worklog.db); ":memory:" for a throwaway store
  LOG_LEVEL           logrus level (info)
  TIMEZONE            IANA zone used for "today" (Asia/Seoul)
  RETENTION_SCHEDULE  cron spec for the retention sweep (@daily); "off" disables
  ALLOWED_ORIGINS     comma-separated CORS origins
  GITHUB_OWNER, GITHUB_REPO, GITHUB_TOKEN
  GITHUB_PATH         file path in the repo (data/work-records.json)
  GITHUB_BRANCH       branch (main)
  GITHUB_API_URL      API base (https://api.github.com)
*/
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/warp/worklog/store/github"
)

type Config struct {
	Port              int
	DBPath            string
	LogLevel          string
	Location          *time.Location
	RetentionSchedule string
	AllowedOrigins    []string
	GitHub            github.Config
}

// RemoteEnabled reports whether the remote store is configured.
func (c Config) RemoteEnabled() bool {
	return c.GitHub.Owner != "" && c.GitHub.Repo != "" && c.GitHub.Token != ""
}

// Mode is "remote" or "local".
func (c Config) Mode() string {
	if c.RemoteEnabled() {
		return "remote"
	}
	return "local"
}

// Load reads .env, the environment and then args as flags.
func Load(args []string) (Config, error) {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()
	return FromEnv(os.Getenv, args)
}

// FromEnv builds a Config from a lookup function and flag arguments.
func FromEnv(getenv func(string) string, args []string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	port, err := strconv.Atoi(env("PORT", "8080"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PORT: %w", err)
	}

	loc, err := time.LoadLocation(env("TIMEZONE", "Asia/Seoul"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg := Config{
		Port:              port,
		DBPath:            env("DB_PATH", "worklog.db"),
		LogLevel:          env("LOG_LEVEL", "info"),
		Location:          loc,
		RetentionSchedule: env("RETENTION_SCHEDULE", "@daily"),
		AllowedOrigins:    splitList(env("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		GitHub: github.Config{
			Owner:   env("GITHUB_OWNER", ""),
			Repo:    env("GITHUB_REPO", ""),
			Token:   env("GITHUB_TOKEN", ""),
			Path:    env("GITHUB_PATH", github.DefaultPath),
			Branch:  env("GITHUB_BRANCH", github.DefaultBranch),
			BaseURL: env("GITHUB_API_URL", github.DefaultBaseURL),
		},
	}

	fs := flag.NewFlagSet("worklog", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
