package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/teranos/sdkgen/errors"
)

// DefaultVersion is used when no version is configured or discoverable.
const DefaultVersion = "0.0.0"

// pubspec is the part of a Dart pubspec.yaml sdkgen reads.
type pubspec struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ResolveVersion picks the package version embedded in bindings: the
// explicit value, else the version of the nearest pubspec.yaml at or above
// outputDir, else DefaultVersion. The second result names where the
// version came from.
func ResolveVersion(explicit, outputDir string) (string, string, error) {
	if explicit != "" {
		v, err := normalizeVersion(explicit)
		if err != nil {
			return "", "", errors.WithHint(err, "--package-version takes a semantic version such as 1.2.3")
		}
		return v, "flag", nil
	}

	path, spec, err := findPubspec(outputDir)
	if err != nil {
		return "", "", err
	}
	if spec == nil || spec.Version == "" {
		return DefaultVersion, "default", nil
	}
	v, err := normalizeVersion(spec.Version)
	if err != nil {
		return "", "", errors.Wrapf(err, "%s", path)
	}
	return v, path, nil
}

// normalizeVersion validates a semantic version and returns its canonical
// form, keeping prerelease and build metadata.
func normalizeVersion(raw string) (string, error) {
	v, err := semver.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.Wrapf(err, "invalid version %q", raw)
	}
	return v.String(), nil
}

// findPubspec walks up from dir to the filesystem root.
func findPubspec(dir string) (string, *pubspec, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, errors.Wrapf(err, "resolve %s", dir)
	}
	for {
		path := filepath.Join(abs, "pubspec.yaml")
		data, err := os.ReadFile(path)
		if err == nil {
			var spec pubspec
			if err := yaml.Unmarshal(data, &spec); err != nil {
				return "", nil, errors.Wrapf(err, "parse %s", path)
			}
			return path, &spec, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil, nil
		}
		abs = parent
	}
}
