// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataPath     string  // Scenario dataset: a .db/.sqlite file or a directory of CSV tables
	OutputDir    string  // Directory for exported plan/summary CSV files
	LogLevel     string
	Port         int
	DevMode      bool
	Solver       string  // Backend name or "auto"
	AllowSlack   bool    // Keep the model feasible with a penalized shortfall variable
	SlackPenalty float64 // Cost per tonne of unmet target
	DiscountRate float64 // Annual discount rate for the NPV objective
	DefaultRamp  float64 // Ramp share/year used when a technology has no ramp rate
	ResolveCron  string  // Cron spec for periodic re-solves in server mode ("" disables)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataPath := getEnv("MACC_DATA_PATH", "data/scenario.db")
	absDataPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data path: %w", err)
	}

	outputDir := getEnv("MACC_OUTPUT_DIR", "outputs")
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	cfg := &Config{
		DataPath:     absDataPath,
		OutputDir:    absOutputDir,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnvAsInt("MACC_PORT", 8010),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		Solver:       getEnv("MACC_SOLVER", "auto"),
		AllowSlack:   getEnvAsBool("MACC_ALLOW_SLACK", true),
		SlackPenalty: getEnvAsFloat("MACC_SLACK_PENALTY", 1e15),
		DiscountRate: getEnvAsFloat("MACC_DISCOUNT_RATE", 0.0),
		DefaultRamp:  getEnvAsFloat("MACC_DEFAULT_RAMP", 0.2),
		ResolveCron:  getEnv("MACC_RESOLVE_CRON", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.SlackPenalty <= 0 {
		return fmt.Errorf("slack penalty must be positive, got %g", c.SlackPenalty)
	}
	if c.DiscountRate < 0 {
		return fmt.Errorf("discount rate must be non-negative, got %g", c.DiscountRate)
	}
	if c.DefaultRamp < 0 || c.DefaultRamp > 1 {
		return fmt.Errorf("default ramp must be in [0,1], got %g", c.DefaultRamp)
	}
	if s := strings.TrimSpace(c.Solver); s == "" {
		return fmt.Errorf("solver must be a backend name or \"auto\"")
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
