package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	API       APIConfig       `yaml:"api"`
	Database  DatabaseConfig  `yaml:"database"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	WebDir         string   `yaml:"web_dir"` // renderer build output; empty serves the API only
}

// APIConfig points at the remote agent-management API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Rate    float64       `yaml:"rate"` // requests per second, <= 0 disables limiting
	Burst   int           `yaml:"burst"`
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// saved canvases in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// UploadsConfig holds local document storage settings.
type UploadsConfig struct {
	Dir          string `yaml:"dir"`
	PreviewLimit int    `yaml:"preview_limit"` // runes of extracted text kept on the node
}

type DashboardConfig struct {
	Concurrency int `yaml:"concurrency"` // status requests in flight
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
			Rate:    10,
			Burst:   5,
		},
		Uploads: UploadsConfig{
			Dir:          "data/uploads",
			PreviewLimit: 500,
		},
		Dashboard: DashboardConfig{Concurrency: 4},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadDefault reads ".env" and "config.yaml" from the current directory and
// applies environment overrides. Missing files are not an error; anything
// else (permission denied, malformed YAML, a bad override) is returned.
func LoadDefault() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg, err := Load("config.yaml")
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = defaults()
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with AGENTCANVAS_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("AGENTCANVAS_HOST", &c.Server.Host)
	str("AGENTCANVAS_WEB_DIR", &c.Server.WebDir)
	str("AGENTCANVAS_API_URL", &c.API.BaseURL)
	str("AGENTCANVAS_DATABASE_URL", &c.Database.URL)
	str("AGENTCANVAS_UPLOADS_DIR", &c.Uploads.Dir)

	if v, ok := lookup("AGENTCANVAS_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}
	if v, ok := lookup("AGENTCANVAS_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AGENTCANVAS_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("AGENTCANVAS_API_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AGENTCANVAS_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
