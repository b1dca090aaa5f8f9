// Package file provides file-backed configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML settings file (~/.docindex/config.toml by default)
//   - PromptStore: YAML prompt templates (prompts.yaml) with embedded defaults
package file
