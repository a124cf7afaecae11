// Package config loads the project manifest. The manifest is optional;
// every field has a default so bare `roku-svelte compile` works in any
// directory.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFilename is looked up in the working directory when no --config
// flag is given.
const DefaultFilename = "roku-svelte.yaml"

// Config is the project manifest.
type Config struct {
	// Entry is the source file compiled as the Scene root.
	Entry string `yaml:"entry"`
	// OutDir receives the generated channel tree.
	OutDir string `yaml:"outDir"`
	Canvas Canvas `yaml:"canvas"`
}

// Canvas is the design resolution; viewport units and root percentages
// resolve against it.
type Canvas struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Default returns the manifest used when no file is present: FHD canvas,
// output beside the sources.
func Default() Config {
	return Config{
		OutDir: "out",
		Canvas: Canvas{Width: 1920, Height: 1080},
	}
}

// Load reads path and merges it over the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.merge(file)
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if o.Entry != "" {
		c.Entry = o.Entry
	}
	if o.OutDir != "" {
		c.OutDir = o.OutDir
	}
	if o.Canvas.Width > 0 {
		c.Canvas.Width = o.Canvas.Width
	}
	if o.Canvas.Height > 0 {
		c.Canvas.Height = o.Canvas.Height
	}
}
