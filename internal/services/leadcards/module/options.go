package module

import "retention/internal/platform/config"

// Options holds configuration settings for the leadcards module
type Options struct {
	MaxList int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	lf := cfg.Prefix("CORE_LEADCARDS_")
	return Options{
		MaxList: lf.MayInt("MAX_LIST", 100),
	}
}
