// Package file loads application configuration and prompt templates
// from the local filesystem.
//
// Configuration is read from a TOML file with environment variable
// overrides; secrets only ever come from the environment. Prompt
// templates live in a user-editable directory with embedded defaults.
package file
