package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"uiraster/internal/color"
	"uiraster/internal/postprocess"
	"uiraster/internal/raster"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir" toml:"base_dir"`
	SceneDir  string `json:"scene_dir" toml:"scene_dir"`
	AtlasDir  string `json:"atlas_dir" toml:"atlas_dir"`
	OutputDir string `json:"output_dir" toml:"output_dir"`

	// Output settings
	Format      string `json:"format" toml:"format"`
	Supersample int    `json:"supersample" toml:"supersample"`
	Workers     int    `json:"workers" toml:"workers"`

	// Frame settings
	RasterWorkers  int    `json:"raster_workers" toml:"raster_workers"`
	WindingSamples int    `json:"winding_samples" toml:"winding_samples"`
	LinearBlend    bool   `json:"linear_blend" toml:"linear_blend"`
	Clear          string `json:"clear" toml:"clear"`
}

// Load reads a JSON or TOML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return Config{}, fmt.Errorf("config: read %s: unknown extension", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	SceneDir    string
	AtlasDir    string
	OutputDir   string
	Format      string
	Supersample int
	Workers     int
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.SceneDir != "" {
		c.SceneDir = flags.SceneDir
	}
	if flags.AtlasDir != "" {
		c.AtlasDir = flags.AtlasDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.SceneDir = underBase(c.BaseDir, c.SceneDir)
		c.AtlasDir = underBase(c.BaseDir, c.AtlasDir)
		c.OutputDir = underBase(c.BaseDir, c.OutputDir)
	}
	if c.SceneDir == "" {
		c.SceneDir = "."
	}
	if c.AtlasDir == "" {
		c.AtlasDir = c.SceneDir
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.SceneDir, "renders")
	}

	// Defaults for render settings
	if c.Format == "" {
		c.Format = string(postprocess.FormatWebP)
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.RasterWorkers <= 0 {
		c.RasterWorkers = 1
	}
	if c.WindingSamples <= 0 {
		c.WindingSamples = raster.DefaultWindingSamples
	}
}

func underBase(base, p string) string {
	if p == "" {
		return base
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// OutputFormat returns the parsed output format.
func (c Config) OutputFormat() (postprocess.Format, error) {
	return postprocess.ParseFormat(c.Format)
}

// FrameOptions returns the assembler options the config describes.
func (c Config) FrameOptions() (raster.FrameOptions, error) {
	opts := raster.FrameOptions{
		Workers:        c.RasterWorkers,
		WindingSamples: c.WindingSamples,
		LinearBlend:    c.LinearBlend,
	}
	if c.Clear != "" {
		clear, err := color.ParseHex(c.Clear)
		if err != nil {
			return raster.FrameOptions{}, fmt.Errorf("config: clear: %w", err)
		}
		opts.Clear = clear
	}
	return opts, nil
}
