// Package config loads bloch.yaml, the optional project configuration
// file consulted by cmd/bloch for default shot counts and diagnostic
// rendering preferences. Grounded on the teacher's config-loading
// convention of a small yaml.v3-backed struct with defaulted fields.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the shape of bloch.yaml.
type Config struct {
	// Shots is the default shot count used when a program's main has no
	// @shots(N) annotation. Defaults to 1.
	Shots int `yaml:"shots"`
	// Echo controls whether `echo` statement output is printed during
	// shot execution (disabling it is useful when only the tracked
	// aggregate table is wanted). Defaults to true.
	Echo bool `yaml:"echo"`
	// WarnOnExit prints, after each shot, a warning for every declared
	// qubit or qubit[] left unmeasured. Defaults to false.
	WarnOnExit bool `yaml:"warnOnExit"`
	// Color toggles ANSI-colored diagnostic rendering. When unset in the
	// file, cmd/bloch falls back to an isatty check on stderr.
	Color *bool `yaml:"color"`
}

// Default returns the configuration used when no bloch.yaml is present.
func Default() *Config {
	return &Config{Shots: 1, Echo: true, WarnOnExit: false}
}

// Load reads and parses path, returning Default() unchanged if the file
// does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
