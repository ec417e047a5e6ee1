package config

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validatePaths()
}

func (c *Config) validatePaths() error {
	if c.Paths.InputDir != "" && c.Paths.OutputDir != "" && c.Paths.InputDir == c.Paths.OutputDir {
		return fmt.Errorf("paths: output_dir must differ from input_dir (%s)", c.Paths.InputDir)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if err := validation.ValidateStruct(&c.LLM,
		validation.Field(&c.LLM.BaseURL, validation.Required, is.URL),
		validation.Field(&c.LLM.TextModel, validation.Required),
		validation.Field(&c.LLM.VisionModel, validation.Required),
		validation.Field(&c.LLM.TimeoutSeconds, validation.Min(1)),
		validation.Field(&c.LLM.MaxAttempts, validation.Min(1), validation.Max(10)),
		validation.Field(&c.LLM.MaxImageWidth, validation.Min(64)),
		validation.Field(&c.LLM.Temperature, validation.Min(0.0), validation.Max(2.0)),
	); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

func (c *Config) validateNaming() error {
	if err := validation.ValidateStruct(&c.Naming,
		validation.Field(&c.Naming.MaxLength, validation.Min(1), validation.Max(255)),
		validation.Field(&c.Naming.MaxWords, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("naming: %w", err)
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if err := validation.ValidateStruct(&c.Organize,
		validation.Field(&c.Organize.Mode, validation.Required, validation.In(ModeContent, ModeDate, ModeType)),
		validation.Field(&c.Organize.LinkMode, validation.Required, validation.In(LinkCopy, LinkHardlink, LinkSymlink, LinkAuto)),
		validation.Field(&c.Organize.Workers, validation.Min(1), validation.Max(64)),
		validation.Field(&c.Organize.TextCharLimit, validation.Min(1)),
		validation.Field(&c.Organize.PDFPageLimit, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("organize: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if err := validation.ValidateStruct(&c.Logging,
		validation.Field(&c.Logging.Format, validation.In("console", "json")),
		validation.Field(&c.Logging.Level, validation.In("debug", "info", "warn", "warning", "error")),
	); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// ValidMode reports whether mode names a known organization mode.
func ValidMode(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeContent, ModeDate, ModeType:
		return true
	}
	return false
}
