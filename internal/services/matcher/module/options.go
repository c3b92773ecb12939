package module

import (
	"time"

	"retention/internal/platform/config"
)

// Options holds configuration settings for the matcher module
type Options struct {
	// Mode selects the matcher implementation: "local" or "remote"
	Mode string

	// URL is required when Mode is "remote"
	URL        string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	mf := cfg.Prefix("CORE_MATCHER_")
	return Options{
		Mode:       mf.MayEnum("MODE", "local", "local", "remote"),
		URL:        mf.MayString("URL", ""),
		Timeout:    mf.MayDuration("TIMEOUT", 15*time.Second),
		MaxRetries: mf.MayInt("MAX_RETRIES", 3),
		RetryBase:  mf.MayDuration("RETRY_BASE", 250*time.Millisecond),
	}
}
