package config

import (
	"path/filepath"
	"strings"
)

const defaultOutputFolderName = "organized_folder"

// Overrides carries command-line values layered over the loaded file.
// Empty strings and nil pointers leave the loaded value in place.
type Overrides struct {
	InputDir  string
	OutputDir string
	Mode      string
	LinkMode  string
	LogFile   string
	Silent    *bool
	Workers   int
}

// Apply layers o over the configuration, then normalizes and validates the
// result. When no output directory is set anywhere, it defaults to
// "organized_folder" next to the input directory.
func (c *Config) Apply(o Overrides) error {
	if v := strings.TrimSpace(o.InputDir); v != "" {
		c.Paths.InputDir = v
	}
	if v := strings.TrimSpace(o.OutputDir); v != "" {
		c.Paths.OutputDir = v
	}
	if v := strings.TrimSpace(o.Mode); v != "" {
		c.Organize.Mode = v
	}
	if v := strings.TrimSpace(o.LinkMode); v != "" {
		c.Organize.LinkMode = v
	}
	if v := strings.TrimSpace(o.LogFile); v != "" {
		c.Paths.LogFile = v
	}
	if o.Silent != nil {
		c.Logging.Silent = *o.Silent
	}
	if o.Workers > 0 {
		c.Organize.Workers = o.Workers
	}
	if err := c.normalize(); err != nil {
		return err
	}
	if c.Paths.OutputDir == "" && c.Paths.InputDir != "" {
		c.Paths.OutputDir = DefaultOutputDir(c.Paths.InputDir)
	}
	return c.Validate()
}

// DefaultOutputDir returns the output directory used when none is configured.
func DefaultOutputDir(inputDir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(inputDir)), defaultOutputFolderName)
}
