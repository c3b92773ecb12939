package module

import "retention/internal/platform/config"

// Options holds configuration settings for the orchestrator module
type Options struct {
	Retries int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	ef := cfg.Prefix("CORE_ENGINE_")
	return Options{
		Retries: ef.MayInt("RETRIES", 2),
	}
}
