package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrUnknownProvider    = goerr.New("unknown LLM provider")
	ErrUnknownBackend     = goerr.New("unknown store backend")
	ErrMissingCredentials = goerr.New("required credential is missing")
	ErrInvalidLogSetting  = goerr.New("invalid log setting")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	ProviderKey   = "provider"
	BackendKey    = "backend"
)
