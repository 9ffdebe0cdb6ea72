// Package config holds runtime configuration for a slimbox run. A Config is
// built once in cmd from flags and environment and passed by value into each
// component; nothing reads ambient state after startup.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strconv"
)

// DBConfig identifies the inventory application's Postgres instance. Values
// come from HBX_DB_* environment variables (a .env file is honored).
type DBConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// DSN renders the pgx connection URL.
func (d DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String()
}

// Config holds all runtime settings for one run.
type Config struct {
	// DataRoot is the inventory data directory holding attachment files.
	DataRoot string
	// BackupDir receives a verified copy of every original before mutation.
	// Backups are never deleted by the tool.
	BackupDir string
	// Quality is the WebP encoder quality, 1-100.
	Quality int
	// Workers is the number of concurrent per-file workers.
	Workers int
	// DryRun previews the batch without touching files or the database.
	DryRun bool
	// SkipDatabase converts files without updating attachment metadata.
	SkipDatabase bool
	// LogFile is the run log path; empty selects a timestamped default.
	LogFile string
	// LogToStderr tees the run log to stderr.
	LogToStderr bool

	DB DBConfig
}

// FromEnv builds a Config from environment variables and defaults. Flag
// values are layered on top by the command layer.
func FromEnv() Config {
	return Config{
		DataRoot:  os.Getenv("HBX_DATA_PATH"),
		BackupDir: "./backups",
		Quality:   85,
		Workers:   runtime.NumCPU(),
		DB: DBConfig{
			Host:     getenv("HBX_DB_HOST", "localhost"),
			Port:     getenvInt("HBX_DB_PORT", 5432),
			Name:     getenv("HBX_DB_NAME", "homebox"),
			User:     getenv("HBX_DB_USER", "homebox"),
			Password: os.Getenv("HBX_DB_PASSWORD"),
		},
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.DataRoot == "" {
		return errors.New("data root is required (positional argument or HBX_DATA_PATH)")
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be within [1,100], got %d", c.Quality)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if !c.DryRun && c.BackupDir == "" {
		return errors.New("backup directory is required for a live run")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
