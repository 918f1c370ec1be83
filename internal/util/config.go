// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package util

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultDataDir is the default data directory for nostrkeep.
const DefaultDataDir = "~/.nostrkeep"

// DefaultIdentityFile is the default identity file name within the data directory.
const DefaultIdentityFile = "identity.key"

// Config holds nostrkeep configuration settings
type Config struct {
	// IdentityFile is the identity file name within the data directory
	IdentityFile string `yaml:"identity_file" description:"Identity file name within the data directory" default:"identity.key"`

	// MaskSecret requires an explicit reveal action before the nsec is shown
	MaskSecret *bool `yaml:"mask_secret" description:"Mask the secret key in displays until explicitly revealed" default:"true"`
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	maskSecret := true
	return Config{
		IdentityFile: DefaultIdentityFile,
		MaskSecret:   &maskSecret,
	}
}

// MaskSecretEnabled reports whether secret key display masking is on.
func (c *Config) MaskSecretEnabled() bool {
	return c.MaskSecret == nil || *c.MaskSecret
}

// GetDataDir returns the data directory for nostrkeep.
// Resolution order: -d flag > NOSTRKEEP_DATA env var > ~/.nostrkeep
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv("NOSTRKEEP_DATA"); envDir != "" {
		return envDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "" // Can't determine default
	}
	return filepath.Join(home, ".nostrkeep")
}

// RequireDataDir resolves the data directory from the flag value,
// NOSTRKEEP_DATA environment variable, or ~/.nostrkeep default.
// Exits if unresolvable.
func RequireDataDir(flagValue string) string {
	dir := GetDataDir(flagValue)
	if dir == "" {
		fmt.Fprintln(os.Stderr, "Error: Could not determine data directory")
		fmt.Fprintln(os.Stderr, "Use -d <path> or set NOSTRKEEP_DATA environment variable")
		os.Exit(1)
	}
	return dir
}

// GetConfigPath returns the path to the config file in the data directory.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// LoadConfig loads configuration from config.yaml in the data directory.
// If dataDir is empty or the file doesn't exist, returns default config.
func LoadConfig(dataDir string) (Config, error) {
	return LoadConfigFromPath(GetConfigPath(dataDir))
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		// Other errors - log but return defaults
		_, _ = fmt.Fprintf(os.Stderr, "Warning: Failed to read config file: %v\n", err)
		return DefaultConfig(), nil
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Fill in defaults for missing values
	if config.IdentityFile == "" {
		config.IdentityFile = DefaultIdentityFile
	}
	if filepath.Base(config.IdentityFile) != config.IdentityFile {
		return Config{}, fmt.Errorf("identity_file must be a bare file name, got %q", config.IdentityFile)
	}

	return config, nil
}
