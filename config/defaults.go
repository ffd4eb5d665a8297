package config

import (
	"github.com/spf13/viper"
)

const (
	DefaultOutput        = "."
	DefaultFormatCommand = "dart format"
	DefaultDebounceMS    = 300
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("input", "")
	v.SetDefault("files", []string{})
	v.SetDefault("package_version", "")
	v.SetDefault("continue_on_error", true)

	// Bundling is off unless a command is configured
	v.SetDefault("bundler.command", "")

	v.SetDefault("format.enabled", false)
	v.SetDefault("format.command", DefaultFormatCommand)

	v.SetDefault("resolver.semantic", false)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)

	v.SetDefault("log.json", false)

	v.SetDefault("stamp.enabled", false)
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}
