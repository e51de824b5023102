package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	Memory MemoryConfig `yaml:"memory"`
	Policy PolicyConfig `yaml:"policy"`
}

// ServerConfig ops API server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

// LoggerConfig logging configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig file output configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// MemoryConfig memory monitor configuration
type MemoryConfig struct {
	UsageThreshold     float64 `yaml:"usage_threshold"`       // used/total fraction above which pressure is signaled
	MinMemoryFreeBytes int64   `yaml:"min_memory_free_bytes"` // absolute free-memory floor, -1 disables
	RefreshIntervalMS  int64   `yaml:"refresh_interval_ms"`   // tick period, 0 disables automatic ticking
}

// PolicyConfig worker killing policy configuration
type PolicyConfig struct {
	Name          string `yaml:"name"`            // retriable_lifo, group_by_depth
	MaxKillEvents int    `yaml:"max_kill_events"` // kill history ring size
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	GlobalConfig = &cfg
	return nil
}

// Validate rejects configurations the monitor and policies cannot honor.
func (c *Config) Validate() error {
	if c.Memory.UsageThreshold < 0 || c.Memory.UsageThreshold > 1 {
		return fmt.Errorf("memory.usage_threshold must be within [0,1], got %v", c.Memory.UsageThreshold)
	}
	if c.Memory.MinMemoryFreeBytes < -1 {
		return fmt.Errorf("memory.min_memory_free_bytes must be >= 0 or -1 to disable, got %d", c.Memory.MinMemoryFreeBytes)
	}
	if c.Memory.RefreshIntervalMS < 0 {
		return fmt.Errorf("memory.refresh_interval_ms must be >= 0, got %d", c.Memory.RefreshIntervalMS)
	}
	return nil
}
