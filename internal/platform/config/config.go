package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Runtime captures client runtime configuration.
type Runtime struct {
	APIBaseURL     string
	StateDir       string
	RoutesFile     string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBase      time.Duration
	RefreshLead    time.Duration
}

// Defaults applied when the environment leaves a knob unset.
var (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBase      = 500 * time.Millisecond
	DefaultRefreshLead    = 60 * time.Second
)

// FromEnv builds a Runtime config from environment variables so main stays lean.
func FromEnv() Runtime {
	base := os.Getenv("COCKPIT_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	stateDir := os.Getenv("COCKPIT_STATE_DIR")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		stateDir = filepath.Join(home, ".cockpit")
	}

	timeout := DefaultRequestTimeout
	if s := os.Getenv("COCKPIT_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			timeout = d
		}
	}

	retries := DefaultMaxRetries
	if s := os.Getenv("COCKPIT_MAX_RETRIES"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			retries = n
		}
	}

	return Runtime{
		APIBaseURL:     base,
		StateDir:       stateDir,
		RoutesFile:     os.Getenv("COCKPIT_ROUTES_FILE"),
		RequestTimeout: timeout,
		MaxRetries:     retries,
		RetryBase:      DefaultRetryBase,
		RefreshLead:    DefaultRefreshLead,
	}
}
