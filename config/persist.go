package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/teranos/sdkgen/errors"
)

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to encode config")
	}
	return buf.Bytes(), nil
}

// Decode parses a TOML config file on top of the defaults.
func Decode(data []byte) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	return cfg, nil
}

// WriteDefault writes a default sdkgen.toml into dir. An existing file is
// only replaced when force is set.
func WriteDefault(dir string, force bool) (string, error) {
	path := filepath.Join(dir, ProjectConfigName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", errors.WithHint(
			errors.Newf("%s already exists", path),
			"use --force to overwrite it")
	}

	data, err := Encode(Default())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}
