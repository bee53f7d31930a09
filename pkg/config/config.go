package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// Config holds the console runtime settings.
type Config struct {
	Addr  string `yaml:"addr"`
	Demo  bool   `yaml:"demo"`
	API   API    `yaml:"api"`
	Auth  Auth   `yaml:"auth"`
	Log   Log    `yaml:"log"`
	UI    UI     `yaml:"ui"`
	Chart Chart  `yaml:"chart"`
	// Widgets replaces the default dashboard layout when non-empty.
	Widgets []console.WidgetInstance `yaml:"widgets"`
}

// API configures the ticketing backend client.
type API struct {
	BaseURL           string        `yaml:"base_url"`
	Token             string        `yaml:"token"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// Auth configures session token verification.
type Auth struct {
	JWTSecret  string `yaml:"jwt_secret"`
	CookieName string `yaml:"cookie_name"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// UI configures rendering.
type UI struct {
	PageSize   int    `yaml:"page_size"`
	CDNBaseURL string `yaml:"cdn_base_url"`
}

// Chart configures chart rendering.
type Chart struct {
	AssetsHost string        `yaml:"assets_host"`
	Theme      string        `yaml:"theme"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	CacheSize  int           `yaml:"cache_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr: ":8080",
		API: API{
			BaseURL: "http://localhost:8081",
			Timeout: 10 * time.Second,
		},
		Auth: Auth{CookieName: console.DefaultSessionCookie},
		Log:  Log{Level: "info", Format: "text"},
		UI:   UI{PageSize: console.DefaultPageSize},
		Chart: Chart{
			CacheTTL:  5 * time.Minute,
			CacheSize: 128,
		},
	}
}

// Load reads the optional YAML file at path, then .env, then environment
// overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Addr = getEnv("CONSOLE_ADDR", c.Addr)
	c.Demo = getBool("CONSOLE_DEMO", c.Demo)
	c.API.BaseURL = getEnv("TICKETING_API_BASE_URL", c.API.BaseURL)
	c.API.Token = getEnv("TICKETING_API_TOKEN", c.API.Token)
	c.API.Timeout = getDuration("CONSOLE_API_TIMEOUT", c.API.Timeout)
	c.API.RequestsPerSecond = getFloat("CONSOLE_API_RPS", c.API.RequestsPerSecond)
	c.Auth.JWTSecret = getEnv("CONSOLE_JWT_SECRET", c.Auth.JWTSecret)
	c.UI.PageSize = getInt("CONSOLE_PAGE_SIZE", c.UI.PageSize)
	c.UI.CDNBaseURL = getEnv("TICKETING_CDN_BASE_URL", c.UI.CDNBaseURL)
	c.Log.Level = getEnv("CONSOLE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("CONSOLE_LOG_FORMAT", c.Log.Format)
	c.Chart.AssetsHost = getEnv("CONSOLE_CHART_ASSETS_HOST", c.Chart.AssetsHost)
	c.Chart.CacheTTL = getDuration("CONSOLE_CHART_CACHE_TTL", c.Chart.CacheTTL)
	c.Chart.CacheSize = getInt("CONSOLE_CHART_CACHE_SIZE", c.Chart.CacheSize)
}

// Validate checks required fields and ranges.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, fmt.Errorf("CONSOLE_ADDR cannot be empty"))
	}
	if !c.Demo {
		if strings.TrimSpace(c.API.BaseURL) == "" {
			errs = append(errs, fmt.Errorf("TICKETING_API_BASE_URL is required"))
		} else if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("TICKETING_API_BASE_URL is invalid: %w", err))
		}
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("CONSOLE_API_TIMEOUT must be positive"))
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("CONSOLE_API_RPS cannot be negative"))
	}
	if c.UI.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("CONSOLE_PAGE_SIZE must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("CONSOLE_LOG_FORMAT must be text or json"))
	}
	ids := map[string]bool{}
	for _, w := range c.Widgets {
		if w.ID == "" || w.DefinitionID == "" {
			errs = append(errs, fmt.Errorf("widgets: id and definition are required"))
			continue
		}
		if ids[w.ID] {
			errs = append(errs, fmt.Errorf("widgets: duplicate id %q", w.ID))
		}
		ids[w.ID] = true
	}
	return errors.Join(errs...)
}

// WidgetLayout returns the configured layout, or nil for the default.
func (c Config) WidgetLayout() []console.WidgetInstance {
	if len(c.Widgets) == 0 {
		return nil
	}
	return append([]console.WidgetInstance(nil), c.Widgets...)
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
