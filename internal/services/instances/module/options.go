package module

import "retention/internal/platform/config"

// Options holds configuration settings for the instances module
type Options struct {
	// Driver selects the store backend: "postgres" or "memory"
	Driver string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	inf := cfg.Prefix("CORE_INSTANCES_")
	return Options{
		Driver: inf.MayEnum("DRIVER", "postgres", "postgres", "memory"),
	}
}
