package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/mamadbah2/labcalc/internal/service/planner"
	"github.com/mamadbah2/labcalc/internal/units"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Planner PlannerConfig
	Plates  PlatesConfig
	Client  ClientConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// PlannerConfig holds the default pipetting constraints of the serial planner.
// Requests may override them per call.
type PlannerConfig struct {
	OveragePercent   float64
	MinPipetteUL     float64
	MaxPipetteUL     float64
	PreferredFactors []float64
}

// Defaults converts the loaded settings into the planner's configuration.
func (p PlannerConfig) Defaults() planner.Config {
	return planner.Config{
		OveragePercent:   p.OveragePercent,
		MinPipetteUL:     p.MinPipetteUL,
		MaxPipetteUL:     p.MaxPipetteUL,
		PreferredFactors: p.PreferredFactors,
	}
}

// PlatesConfig points at an optional YAML file of extra plate presets.
type PlatesConfig struct {
	PresetsFile string
}

// ClientConfig configures the CLI when it talks to a running server.
type ClientConfig struct {
	ServerURL string
	Timeout   time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getenvWithDefault("LOG_LEVEL", "info")),
		},
		Plates: PlatesConfig{
			PresetsFile: os.Getenv("PLATE_PRESETS_FILE"),
		},
		Client: ClientConfig{
			ServerURL: strings.TrimSuffix(getenvWithDefault("LABCALC_SERVER_URL", "http://localhost:8080"), "/"),
		},
	}

	var err error
	if cfg.Planner.OveragePercent, err = floatEnv("PLANNER_OVERAGE_PERCENT", 0); err != nil {
		return nil, err
	}
	if cfg.Planner.MinPipetteUL, err = floatEnv("PLANNER_MIN_PIPETTE_UL", 2); err != nil {
		return nil, err
	}
	if cfg.Planner.MaxPipetteUL, err = floatEnv("PLANNER_MAX_PIPETTE_UL", 1000); err != nil {
		return nil, err
	}
	if cfg.Planner.PreferredFactors, err = units.ParseList(getenvWithDefault("PLANNER_PREFERRED_FACTORS", "10,5,4,3,2")); err != nil {
		return nil, fmt.Errorf("PLANNER_PREFERRED_FACTORS: %w", err)
	}
	if cfg.Client.Timeout, err = time.ParseDuration(getenvWithDefault("LABCALC_CLIENT_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("LABCALC_CLIENT_TIMEOUT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Log.Level)
	}

	switch {
	case c.Planner.OveragePercent < 0:
		return errors.New("PLANNER_OVERAGE_PERCENT must not be negative")
	case c.Planner.MinPipetteUL <= 0:
		return errors.New("PLANNER_MIN_PIPETTE_UL must be > 0")
	case c.Planner.MaxPipetteUL < c.Planner.MinPipetteUL:
		return errors.New("PLANNER_MAX_PIPETTE_UL must be >= PLANNER_MIN_PIPETTE_UL")
	case len(c.Planner.PreferredFactors) == 0:
		return errors.New("PLANNER_PREFERRED_FACTORS must list at least one factor")
	}
	for _, f := range c.Planner.PreferredFactors {
		if f <= 1 {
			return fmt.Errorf("PLANNER_PREFERRED_FACTORS: factor %g must be > 1", f)
		}
	}

	if c.Client.ServerURL == "" {
		return errors.New("LABCALC_SERVER_URL must not be empty")
	}
	if c.Client.Timeout <= 0 {
		return errors.New("LABCALC_CLIENT_TIMEOUT must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func floatEnv(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
