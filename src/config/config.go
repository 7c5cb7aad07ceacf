package config

import (
	"fmt"
	"os"
	"time"

	"sim-trader/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	// Validate Market configuration
	if c.Market.Timezone == "" {
		return fmt.Errorf("market timezone cannot be empty")
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("invalid market timezone '%s': %w", c.Market.Timezone, err)
	}
	if c.Market.TickIntervalSeconds <= 0 {
		return fmt.Errorf("tick interval must be greater than 0")
	}
	open, err := time.Parse("15:04", c.Market.OpenTime)
	if err != nil {
		return fmt.Errorf("invalid market open time '%s': %w", c.Market.OpenTime, err)
	}
	closeT, err := time.Parse("15:04", c.Market.CloseTime)
	if err != nil {
		return fmt.Errorf("invalid market close time '%s': %w", c.Market.CloseTime, err)
	}
	if !open.Before(closeT) {
		return fmt.Errorf("market open time %s must be before close time %s", c.Market.OpenTime, c.Market.CloseTime)
	}
	if c.Market.DefaultStartDate != "" {
		if _, err := time.Parse("2006-01-02", c.Market.DefaultStartDate); err != nil {
			return fmt.Errorf("invalid default start date '%s': %w", c.Market.DefaultStartDate, err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// TickInterval returns the scheduler period as a Duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Market.TickIntervalSeconds * float64(time.Second))
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
