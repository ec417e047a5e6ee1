package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	defaultLLMBaseURL        = "http://localhost:11434/v1"
	defaultLLMTextModel      = "llama3.2:3b"
	defaultLLMVisionModel    = "llava:7b"
	defaultLLMTimeoutSeconds = 120
	defaultLLMMaxAttempts    = 5
	defaultLLMMaxImageWidth  = 1024
	defaultNamingMaxLength   = 50
	defaultNamingMaxWords    = 5
	defaultOrganizeMode      = ModeContent
	defaultLinkMode          = LinkAuto
	defaultWorkers           = 1
	defaultTextCharLimit     = 3000
	defaultPDFPageLimit      = 3
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogFileName       = "operation_log.txt"
)

// Organization modes.
const (
	ModeContent = "content"
	ModeDate    = "date"
	ModeType    = "type"
)

// Link modes.
const (
	LinkCopy     = "copy"
	LinkHardlink = "hardlink"
	LinkSymlink  = "symlink"
	LinkAuto     = "auto"
)

func defaultDataDir() string {
	return filepath.Join(xdg.DataHome, "fileorg")
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir(),
			LogFile: defaultLogFileName,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			TextModel:      defaultLLMTextModel,
			VisionModel:    defaultLLMVisionModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			MaxAttempts:    defaultLLMMaxAttempts,
			MaxImageWidth:  defaultLLMMaxImageWidth,
			Temperature:    0.3,
		},
		Naming: Naming{
			MaxLength: defaultNamingMaxLength,
			MaxWords:  defaultNamingMaxWords,
		},
		Organize: Organize{
			Mode:          defaultOrganizeMode,
			LinkMode:      defaultLinkMode,
			Workers:       defaultWorkers,
			TextCharLimit: defaultTextCharLimit,
			PDFPageLimit:  defaultPDFPageLimit,
			Journal:       true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
