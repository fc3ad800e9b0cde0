package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultPath is the fixed relative location of the settings file, matching
// the tool's documented contract: textcal is run from the directory that
// holds its config.json.
const DefaultPath = "config.json"

const defaultTimeoutSeconds = 30

// OllamaConfig configures the extraction service.
type OllamaConfig struct {
	URL   string `json:"url" validate:"required,url"`
	Model string `json:"model" validate:"required"`

	// Provider selects the transport: "ollama" (native /api/generate) or
	// "openai" (any OpenAI-compatible server). Empty means "ollama".
	Provider string `json:"provider,omitempty" validate:"omitempty,oneof=ollama openai"`
	APIKey   string `json:"api_key,omitempty"`

	// TimeoutSeconds bounds a single extraction request.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" validate:"omitempty,gt=0"`
}

// Timeout returns the extraction request bound as a duration.
func (o OllamaConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// CalDAVConfig configures the calendar service.
type CalDAVConfig struct {
	URL          string `json:"url" validate:"required,url"`
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required"`
	CalendarName string `json:"calendar_name" validate:"required"`
}

// Config is the full settings document. Both sections are required; the
// pipeline refuses to run without them.
type Config struct {
	Ollama OllamaConfig `json:"ollama" validate:"required"`
	CalDAV CalDAVConfig `json:"caldav" validate:"required"`
}

// ConfigurationError is startup-fatal for the line tool and UI-disabling for
// the TUI. Reason names the offending file, section, or field.
type ConfigurationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

var validate = validator.New()

// Load reads and validates the settings document at path. A .env file in the
// working directory is overlaid first so credentials can stay out of
// config.json (TEXTCAL_CALDAV_PASSWORD, TEXTCAL_OPENAI_API_KEY).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigurationError{Path: path, Reason: "file not found", Err: err}
		}
		return nil, &ConfigurationError{Path: path, Reason: "unreadable", Err: err}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "not valid JSON", Err: err}
	}

	if cfg.Ollama == (OllamaConfig{}) {
		return nil, &ConfigurationError{Path: path, Reason: `missing "ollama" section`}
	}
	if cfg.CalDAV == (CalDAVConfig{}) {
		return nil, &ConfigurationError{Path: path, Reason: `missing "caldav" section`}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.check(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TEXTCAL_CALDAV_PASSWORD"); v != "" {
		c.CalDAV.Password = v
	}
	if v := os.Getenv("TEXTCAL_OPENAI_API_KEY"); v != "" {
		c.Ollama.APIKey = v
	}
	if v := os.Getenv("TEXTCAL_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Ollama.TimeoutSeconds = n
		}
	}
}

func (c *Config) normalize() {
	if c.Ollama.Provider == "" {
		c.Ollama.Provider = "ollama"
	}
	if c.Ollama.TimeoutSeconds <= 0 {
		c.Ollama.TimeoutSeconds = defaultTimeoutSeconds
	}
	c.Ollama.URL = strings.TrimRight(c.Ollama.URL, "/")
}

func (c *Config) check(path string) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fieldName(fe))
			}
			return &ConfigurationError{
				Path:   path,
				Reason: "missing or invalid fields: " + strings.Join(fields, ", "),
				Err:    err,
			}
		}
		return &ConfigurationError{Path: path, Reason: "invalid", Err: err}
	}
	return nil
}

// fieldName renders a validator namespace like "Config.CalDAV.Password" as
// the user-facing "caldav.password".
func fieldName(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.StructNamespace(), "Config.")
	return strings.ToLower(strings.ReplaceAll(ns, "CalDAV", "caldav"))
}
