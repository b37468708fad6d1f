// Package config manages the optional poolsync configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"poolsync/internal/schema"
)

// Config holds defaults applied when the matching flags are not set.
type Config struct {
	// Region is the default AWS region.
	Region string `yaml:"region,omitempty"`

	// Profile is the default AWS credentials profile.
	Profile string `yaml:"profile,omitempty"`

	// CustomAttributeTypes overrides the scalar type of discovered
	// custom attributes ("string" or "number"). The pool schema does
	// not expose this typing itself, so declaring it here is the only
	// way to validate custom values more tightly than string|number.
	CustomAttributeTypes map[string]string `yaml:"custom_attribute_types,omitempty"`
}

// Path returns the config file location under the XDG config dir.
// Falls back to the working directory if no home can be determined.
func Path() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "poolsync", "config.yaml")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "poolsync", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "poolsync", "config.yaml")
}

// Load reads the configuration; a missing file yields the zero config.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for name, typ := range config.CustomAttributeTypes {
		if !schema.IsCustomAttribute(name) {
			return nil, fmt.Errorf("config custom_attribute_types: %q is not a custom attribute", name)
		}
		if typ != "string" && typ != "number" {
			return nil, fmt.Errorf("config custom_attribute_types: %q has unknown type %q", name, typ)
		}
	}
	return config, nil
}

// ApplyAttributeTypes narrows the types of discovered custom
// attributes using the configured overrides. Unknown names in the
// config are ignored: the pool, not the config, decides which custom
// attributes exist.
func (c *Config) ApplyAttributeTypes(custom schema.CustomAttributes) schema.CustomAttributes {
	for name, typ := range c.CustomAttributeTypes {
		if _, ok := custom[name]; !ok {
			continue
		}
		switch typ {
		case "string":
			custom[name] = schema.TypeString
		case "number":
			custom[name] = schema.TypeNumber
		}
	}
	return custom
}
