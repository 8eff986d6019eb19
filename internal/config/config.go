// Package config handles Daybreak configuration loading.
//
// All settings come from the environment (optionally seeded from a .env
// file), are parsed once into a typed struct at startup, and are validated
// before any component is constructed. A missing required credential is a
// startup failure, never a request-time surprise.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Mode selects how GET / behaves.
type Mode string

const (
	// ModeOnDemand generates a fresh message for every request.
	ModeOnDemand Mode = "ondemand"

	// ModeCached serves the last scheduled generation from the store.
	ModeCached Mode = "cached"
)

// Config holds all Daybreak configuration.
type Config struct {
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	Mode       Mode   `envconfig:"MODE" default:"ondemand"`
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":5054"`

	// Completion service. The default base URL is the GitHub Models
	// OpenAI-compatible endpoint, authenticated with a GitHub token.
	GitHubToken string  `envconfig:"GITHUB_TOKEN" required:"true"`
	LLMBaseURL  string  `envconfig:"LLM_BASE_URL" default:"https://models.inference.ai.azure.com"`
	ModelName   string  `envconfig:"MODEL_NAME" required:"true"`
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.0"`

	// Persona. Either PERSONALITY carries the system instruction verbatim,
	// or PERSONA names an entry in the PERSONAS_FILE YAML map.
	Personality  string `envconfig:"PERSONALITY"`
	Persona      string `envconfig:"PERSONA"`
	PersonasFile string `envconfig:"PERSONAS_FILE"`

	// Home Assistant.
	HAURL         string `envconfig:"HA_URL" required:"true"`
	HAToken       string `envconfig:"HA_TOKEN" required:"true"`
	ClimateEntity string `envconfig:"CLIMATE_ENTITY" default:"climate.main_floor"`
	ZoneEntity    string `envconfig:"ZONE_ENTITY" default:"zone.home"`

	// Outdoor weather. Whichever key is present selects the provider;
	// OpenWeather wins when both are set. Neither disables the source.
	PirateWeatherKey string `envconfig:"PIRATE_WEATHER_API_KEY"`
	OpenWeatherKey   string `envconfig:"OPEN_WEATHER_API_KEY"`

	// Calendar and news feeds. An empty ICAL_URL disables the calendar
	// source entirely (holidays included).
	ICalURL     string `envconfig:"ICAL_URL"`
	NewsFeedURL string `envconfig:"NEWS_FEED_URL" default:"https://www.goodnewsnetwork.org/feed/"`

	// Daily schedule, local time. Only used in cached mode.
	Hour   int `envconfig:"HOUR" default:"7"`
	Minute int `envconfig:"MINUTE" default:"0"`

	// Message store. MESSAGE_DB switches from the flat file to SQLite.
	MessagePath string `envconfig:"MESSAGE_PATH" default:"message.txt"`
	MessageDB   string `envconfig:"MESSAGE_DB"`

	// SourceTimeout bounds each context source fetch so one hung service
	// cannot stall the whole pipeline.
	SourceTimeout time.Duration `envconfig:"SOURCE_TIMEOUT" default:"15s"`

	// Timezone is an IANA name for schedule and calendar math.
	// Empty means the system's local timezone.
	Timezone string `envconfig:"TIMEZONE"`

	// SystemInstruction is the resolved persona text. Populated by Load,
	// not read from the environment directly.
	SystemInstruction string `ignored:"true"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present; real environment
// variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	persona, err := cfg.resolvePersona()
	if err != nil {
		return nil, err
	}
	cfg.SystemInstruction = persona

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeOnDemand, ModeCached:
	default:
		return fmt.Errorf("MODE must be %q or %q, got %q", ModeOnDemand, ModeCached, c.Mode)
	}

	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("HOUR must be 0-23, got %d", c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("MINUTE must be 0-59, got %d", c.Minute)
	}

	if c.SourceTimeout <= 0 {
		return fmt.Errorf("SOURCE_TIMEOUT must be positive, got %s", c.SourceTimeout)
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
		}
	}

	return nil
}

// Location returns the configured timezone, falling back to system local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// resolvePersona returns the system instruction text. PERSONALITY is used
// verbatim when set; otherwise PERSONA selects an entry from the
// PERSONAS_FILE YAML map. Environment references in the personas file
// are expanded before parsing.
func (c *Config) resolvePersona() (string, error) {
	if c.Personality != "" {
		return c.Personality, nil
	}

	if c.Persona == "" || c.PersonasFile == "" {
		return "", fmt.Errorf("either PERSONALITY or both PERSONA and PERSONAS_FILE must be set")
	}

	personas, err := LoadPersonas(c.PersonasFile)
	if err != nil {
		return "", err
	}

	text, ok := personas[c.Persona]
	if !ok {
		return "", fmt.Errorf("persona %q not found in %s", c.Persona, c.PersonasFile)
	}
	return text, nil
}

// LoadPersonas reads a YAML file mapping persona names to system
// instruction text.
func LoadPersonas(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	personas := make(map[string]string)
	if err := yaml.Unmarshal([]byte(expanded), &personas); err != nil {
		return nil, fmt.Errorf("parse personas file: %w", err)
	}

	return personas, nil
}
