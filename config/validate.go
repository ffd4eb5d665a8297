package config

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/sdkgen/errors"
)

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output directory cannot be empty")
	}
	if c.PackageVersion != "" {
		if _, err := semver.NewVersion(c.PackageVersion); err != nil {
			return errors.WithHint(
				errors.Newf("package_version %q is not a semantic version", c.PackageVersion),
				"use a version such as 1.2.3")
		}
	}
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be non-negative, got %d", c.Watch.DebounceMS)
	}
	if c.Format.Enabled && strings.TrimSpace(c.Format.Command) == "" {
		return errors.New("format.command cannot be empty when format.enabled is set")
	}
	return nil
}
