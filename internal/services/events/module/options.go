package module

import "retention/internal/platform/config"

// Options holds configuration settings for the events module
type Options struct {
	MaxBatch int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	ef := cfg.Prefix("CORE_EVENTS_")
	return Options{
		MaxBatch: ef.MayInt("MAX_BATCH", 5000),
	}
}
