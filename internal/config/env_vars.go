package config

import (
	"os"
	"strconv"
	"time"

	"github.com/learnkit/learnkit-go/session"
)

const (
	appNameVar       = "APP_NAME"
	baseURLVar       = "BASE_URL"
	httpTimeoutVar   = "HTTP_TIMEOUT_SECONDS"
	demoModeVar      = "DEMO_MODE"
	fallbackDelayVar = "FALLBACK_DELAY_MS"
	sessionPathVar   = "SESSION_PATH"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ ClientConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "LearnKit")
}

// GetBaseURL returns the base URL for all outbound API calls
// (e.g. "https://api.learnkit.dev")
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(httpTimeoutVar, "30"))
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// GetDemoMode reports whether failed auth and data calls fall back to
// synthetic responses. Defaults to on, matching the product decision that
// the storefront stays browsable with the backend down.
func (EnvVars) GetDemoMode() bool {
	v, err := strconv.ParseBool(GetEnv(demoModeVar, "true"))
	if err != nil {
		return true
	}
	return v
}

func (EnvVars) GetFallbackDelay() time.Duration {
	ms, err := strconv.Atoi(GetEnv(fallbackDelayVar, "300"))
	if err != nil || ms < 0 {
		ms = 300
	}
	return time.Duration(ms) * time.Millisecond
}

func (EnvVars) GetSessionPath() string {
	return GetEnv(sessionPathVar, session.DefaultSessionPath())
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
