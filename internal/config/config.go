package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type ClientConfig interface {
	GetHTTPTimeout() time.Duration
	GetDemoMode() bool
	GetFallbackDelay() time.Duration
	GetSessionPath() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
