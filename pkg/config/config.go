// Package config loads the shapequery settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazu/shapequery/pkg/logging"
)

// Config holds the tunables shared by the CLI, the script engine and the
// batch helpers.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// EvalTimeout bounds a single script evaluation.
	EvalTimeout time.Duration `yaml:"eval_timeout"`
	// MeshCells is the marching cubes resolution for preview meshes.
	MeshCells int `yaml:"mesh_cells"`
	// RaycastLimit caps the hits returned per ray; 0 returns all.
	RaycastLimit int `yaml:"raycast_limit"`
	// Workers bounds batch parallelism; 0 means unbounded.
	Workers int `yaml:"workers"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:    "info",
		EvalTimeout: 5 * time.Second,
		MeshCells:   64,
	}
}

// Read decodes YAML from r on top of the defaults, so missing keys keep
// their default values.
func Read(r io.Reader) (Config, error) {
	c := Defaults()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads the config file at path. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	c, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate rejects negative limits and unknown log levels.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.EvalTimeout <= 0 {
		errs = append(errs, fmt.Errorf("config: eval_timeout must be positive, got %s", c.EvalTimeout))
	}
	if c.MeshCells < 0 {
		errs = append(errs, fmt.Errorf("config: mesh_cells must not be negative, got %d", c.MeshCells))
	}
	if c.RaycastLimit < 0 {
		errs = append(errs, fmt.Errorf("config: raycast_limit must not be negative, got %d", c.RaycastLimit))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("config: workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}
