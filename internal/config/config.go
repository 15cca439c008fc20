// Package config loads run settings from a YAML file, a .env file and the environment.
//
// Precedence, lowest first: built-in defaults, config.yaml, environment variables
// (OPENAI_API_KEY, OPENAI_MODEL, TRADESHOW_URL, CHROME_PATH), then command line flags
// applied by the caller. A missing config file or .env file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/tradeshow-events/internal/browser"
	"github.com/pfrederiksen/tradeshow-events/internal/event"
	"github.com/pfrederiksen/tradeshow-events/internal/llm"
	"github.com/pfrederiksen/tradeshow-events/internal/storage"
)

const (
	DefaultURL        = "https://thetradeshowcalendar.com/orbus/index.php?"
	DefaultConfigFile = "config.yaml"
)

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format,omitempty"` // xlsx | csv | json | ics, inferred from path when empty
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"` // rotated with lumberjack
}

// Config holds every setting of a harvest run
type Config struct {
	URL                  string  `yaml:"url"`
	WaitSeconds          float64 `yaml:"wait_seconds"`           // settle time after submit, reload and paging
	ContactDelaySeconds  float64 `yaml:"contact_delay_seconds"`  // pause before each contact page visit
	SelectTimeoutSeconds float64 `yaml:"select_timeout_seconds"` // budget for the month control to appear
	MaxEvents            int     `yaml:"max_events"`
	Headless             bool    `yaml:"headless"`
	ChromePath           string  `yaml:"chrome_path,omitempty"`

	Year           int               `yaml:"year,omitempty"` // 0 means the current year
	SplitYear      bool              `yaml:"split_year"`
	Months         []event.MonthSpec `yaml:"months"`
	SelectedMonths []string          `yaml:"selected_months,omitempty"`

	OpenAI    OpenAIConfig      `yaml:"openai"`
	Selectors browser.Selectors `yaml:"selectors"`
	Output    OutputConfig      `yaml:"output"`
	DataDir   string            `yaml:"data_dir"`
	Log       LogConfig         `yaml:"log"`

	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// Default returns the settings the harvester runs with when nothing is configured
func Default() *Config {
	return &Config{
		URL:                  DefaultURL,
		WaitSeconds:          7,
		ContactDelaySeconds:  2,
		SelectTimeoutSeconds: 30,
		MaxEvents:            600,
		Headless:             true,
		SplitYear:            true,
		Months:               event.DefaultMonths(),
		OpenAI:               OpenAIConfig{Model: llm.DefaultModel},
		Selectors:            browser.DefaultSelectors(),
		Output:               OutputConfig{Path: "events.xlsx"},
		DataDir:              storage.DefaultDataDir,
		Log:                  LogConfig{Level: "info"},
	}
}

// Load reads path (if it exists) over the defaults, then applies the environment.
// envFile is loaded with godotenv first; existing environment variables win.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.Selectors = cfg.Selectors.WithDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("TRADESHOW_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		c.ChromePath = v
	}
	if v := os.Getenv("TRADESHOW_MAX_EVENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxEvents = n
		}
	}
}

// Validate checks the settings a run depends on
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("url is required")
	}
	if c.WaitSeconds < 0 || c.ContactDelaySeconds < 0 || c.SelectTimeoutSeconds < 0 {
		return errors.New("wait, delay and timeout seconds must not be negative")
	}
	if c.MaxEvents < 1 {
		return fmt.Errorf("max_events must be at least 1, got %d", c.MaxEvents)
	}
	if len(c.Months) == 0 {
		return errors.New("no months configured")
	}
	if c.Year != 0 && (c.Year < 1000 || c.Year > 9999) {
		return fmt.Errorf("invalid year %d", c.Year)
	}
	switch strings.ToLower(c.Output.Format) {
	case "", storage.FormatXLSX, storage.FormatCSV, storage.FormatJSON, storage.FormatICS:
	default:
		return fmt.Errorf("unknown output format: %s", c.Output.Format)
	}
	if c.Output.Path == "" {
		return errors.New("output path is required")
	}
	return nil
}

// RunMonths resolves the selected months with their years, in run order
func (c *Config) RunMonths(now time.Time) ([]event.MonthSpec, error) {
	year := c.Year
	if year == 0 {
		year = now.Year()
	}

	selected, err := event.SelectMonths(c.Months, c.SelectedMonths)
	if err != nil {
		return nil, err
	}

	months := event.AssignYears(selected, year, c.SplitYear)
	for _, m := range months {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	return months, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Wait is the settle duration after page changes
func (c *Config) Wait() time.Duration { return seconds(c.WaitSeconds) }

// ContactDelay is the politeness pause before a contact page visit
func (c *Config) ContactDelay() time.Duration { return seconds(c.ContactDelaySeconds) }

// SelectTimeout bounds the wait for the month control
func (c *Config) SelectTimeout() time.Duration { return seconds(c.SelectTimeoutSeconds) }

// Marshal renders the config as YAML, leaving out the API key
func (c *Config) Marshal() ([]byte, error) {
	out := *c
	out.OpenAI.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// WriteFile writes the config as YAML to path, refusing to overwrite unless force is set
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
