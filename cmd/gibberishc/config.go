package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// ConfigFile is looked for next to the source file being compiled.
const ConfigFile = "gibberish.toml"

// Config is the optional project file. Everything in it has a working
// default, so most programs need no file at all.
type Config struct {
	Build BuildConfig `toml:"build"`
}

type BuildConfig struct {
	// Entry is the function execution starts in. Defaults to main.
	Entry string `toml:"entry"`
	// Output is where build writes the assembly text. Defaults to the
	// source path with a .s extension.
	Output string `toml:"output"`
}

// LoadConfig reads dir/gibberish.toml. A missing file is not an error;
// the zero Config is returned.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}
