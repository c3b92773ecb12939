package module

import (
	"retention/internal/platform/config"
	"retention/internal/services/replay/domain"
)

// Options holds configuration settings for the replay module
type Options struct {
	// MaxInflight is the default cap on concurrent instance starts
	MaxInflight int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("CORE_REPLAY_")
	return Options{
		MaxInflight: rf.MayInt("MAX_INFLIGHT", domain.DefaultMaxInflight),
	}
}
