// Package config loads, normalizes, and validates fileorg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files from the XDG config directory or a project
// local fileorg.toml, and honours environment fallbacks such as
// FILEORG_LLM_API_KEY and OPENAI_API_KEY. The Config type centralizes every
// knob the CLI needs: where files come from and go to, which model endpoint
// classifies them, and how names are shaped.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical modes, and clear validation errors.
package config
