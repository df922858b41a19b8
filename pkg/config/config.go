package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the application
type Config struct {
	Root        string `koanf:"root"`
	Port        int    `koanf:"port"`
	Watch       bool   `koanf:"watch"`
	OpenBrowser bool   `koanf:"open"`
	VerboseCnt  int    `koanf:"verbose"`

	// Scan settings. Empty slices mean the scanner defaults apply.
	Subdirs          []string `koanf:"subdirs"`
	SkipDirectories  []string `koanf:"skip-dirs"`
	SkipFileSuffixes []string `koanf:"skip-suffixes"`

	// Default bounds for path and cycle enumeration.
	MaxPaths  int `koanf:"max-paths"`
	MaxDepth  int `koanf:"max-depth"`
	MaxCycles int `koanf:"max-cycles"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"root":       ".",
		"port":       8080,
		"watch":      false,
		"open":       true,
		"verbose":    0,
		"max-paths":  100,
		"max-depth":  10,
		"max-cycles": 100,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - sting.toml
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider("sting.toml"), toml.Parser())

	// 3. Environment Variables
	// Prefix: STING_ (e.g., STING_PORT=9090)
	if err := k.Load(env.Provider("STING_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "STING_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
