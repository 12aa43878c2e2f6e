// Package config reads application configuration from environment
// variables (with optional .env file) and named scenario definitions from
// YAML files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"varcast/varmodel"
)

// Config holds application configuration
type Config struct {
	DataPath      string
	StorePath     string
	ScenarioPath  string
	LogLevel      string
	ConsoleLog    bool
	MaxLag        int
	Horizon       int
	Confidence    float64
	// Ordering is the causal ordering for orthogonalized analyses, as a
	// list of variable names; empty means natural order.
	Ordering []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DataPath:     getEnv("VARCAST_DATA_PATH", "./data/economic.csv"),
		StorePath:    getEnv("VARCAST_STORE_PATH", "./data/models.db"),
		ScenarioPath: getEnv("VARCAST_SCENARIO_PATH", "./scenarios.yaml"),
		LogLevel:     getEnv("VARCAST_LOG_LEVEL", "info"),
		ConsoleLog:   getEnvAsBool("VARCAST_LOG_CONSOLE", true),
		MaxLag:       getEnvAsInt("VARCAST_MAX_LAG", varmodel.DefaultMaxLag),
		Horizon:      getEnvAsInt("VARCAST_HORIZON", 12),
		Confidence:   getEnvAsFloat("VARCAST_CONFIDENCE", 0.95),
	}
	if ordering := os.Getenv("VARCAST_ORDERING"); ordering != "" {
		for _, name := range strings.Split(ordering, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Ordering = append(cfg.Ordering, name)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("VARCAST_STORE_PATH is required")
	}
	if c.MaxLag < 1 {
		return fmt.Errorf("VARCAST_MAX_LAG must be positive, got %d", c.MaxLag)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("VARCAST_HORIZON must be positive, got %d", c.Horizon)
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("VARCAST_CONFIDENCE must lie in (0, 1), got %g", c.Confidence)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

type scenarioFile struct {
	Scenarios map[string]scenarioEntry `yaml:"scenarios"`
}

type scenarioEntry struct {
	ApplyAt   int                `yaml:"apply_at"`
	Overrides map[string]float64 `yaml:"overrides"`
}

// LoadScenarios reads named what-if scenarios from a YAML file:
//
//	scenarios:
//	  recession:
//	    apply_at: 0
//	    overrides: {gdp_growth: -1.0}
func LoadScenarios(path string) (map[string]varmodel.Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading scenarios %s: %w", path, err)
	}
	var file scenarioFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("config: parsing scenarios %s: %w", path, err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("config: %s defines no scenarios", path)
	}

	out := make(map[string]varmodel.Scenario, len(file.Scenarios))
	for name, entry := range file.Scenarios {
		if len(entry.Overrides) == 0 {
			return nil, fmt.Errorf("config: scenario %q has no overrides", name)
		}
		if entry.ApplyAt < 0 {
			return nil, fmt.Errorf("config: scenario %q has negative apply_at", name)
		}
		out[name] = varmodel.Scenario{
			Name:      name,
			Overrides: entry.Overrides,
			ApplyAt:   entry.ApplyAt,
		}
	}
	return out, nil
}
