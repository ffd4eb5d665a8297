// Package config loads sdkgen settings from TOML files, the environment and
// built-in defaults. Command-line flags are applied on top by the CLI.
package config

// Config is the effective sdkgen configuration.
type Config struct {
	// Output is the directory generated bindings are written to
	Output string `mapstructure:"output" toml:"output"`
	// Input is a directory scanned recursively for SDK inputs
	Input string `mapstructure:"input" toml:"input"`
	// Files lists explicit inputs; they take precedence over Input
	Files []string `mapstructure:"files" toml:"files"`
	// PackageVersion overrides the version found in pubspec.yaml
	PackageVersion string `mapstructure:"package_version" toml:"package_version"`
	// ContinueOnError keeps the batch going past failed inputs
	ContinueOnError bool `mapstructure:"continue_on_error" toml:"continue_on_error"`

	Bundler  BundlerConfig  `mapstructure:"bundler" toml:"bundler"`
	Format   FormatConfig   `mapstructure:"format" toml:"format"`
	Resolver ResolverConfig `mapstructure:"resolver" toml:"resolver"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
	Stamp    StampConfig    `mapstructure:"stamp" toml:"stamp"`
}

// BundlerConfig configures the external bundler used for TypeScript sources.
// The command may reference {entry}, {outdir} and {name}.
type BundlerConfig struct {
	Command string `mapstructure:"command" toml:"command"`
}

// FormatConfig controls running a formatter over generated files.
type FormatConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Command string `mapstructure:"command" toml:"command"`
}

// ResolverConfig selects the type resolution strategy.
type ResolverConfig struct {
	// Semantic resolves aliases and interfaces across the whole file
	Semantic bool `mapstructure:"semantic" toml:"semantic"`
}

type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms"`
}

type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// StampConfig adds source provenance lines to generated headers.
type StampConfig struct {
	Enabled bool `mapstructure:"enabled" toml:"enabled"`
}
