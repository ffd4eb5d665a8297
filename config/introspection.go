package config

import (
	"os"
	"sort"
	"strings"
)

// Source says where a configuration value came from.
type Source string

const (
	SourceDefault     Source = "default"
	SourceSystem      Source = "system"      // /etc/sdkgen/config.toml
	SourceUser        Source = "user"        // ~/.sdkgen/config.toml
	SourceProject     Source = "project"     // sdkgen.toml
	SourceEnvironment Source = "environment" // SDKGEN_* env vars
	SourceFlag        Source = "flag"
)

// SourceInfo tracks where a configuration value originated.
type SourceInfo struct {
	Source Source
	Path   string // file path, env var or flag name
}

// Setting is one effective key with its origin.
type Setting struct {
	Key        string `json:"key"`
	Value      any    `json:"value"`
	Source     Source `json:"source"`
	SourcePath string `json:"source_path,omitempty"`
}

// MarkFlag records that key was set on the command line.
func MarkFlag(key, flag string) {
	mu.Lock()
	defer mu.Unlock()
	Sources[key] = SourceInfo{Source: SourceFlag, Path: "--" + flag}
}

// Settings lists every effective key in sorted order with its source.
func Settings() []Setting {
	v := GetViper()
	mu.Lock()
	defer mu.Unlock()

	keys := v.AllKeys()
	sort.Strings(keys)
	settings := make([]Setting, 0, len(keys))
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := Sources[key]; ok {
			info = si
		}
		if info.Source != SourceFlag {
			envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
			if _, ok := os.LookupEnv(envKey); ok {
				info = SourceInfo{Source: SourceEnvironment, Path: envKey}
			}
		}
		settings = append(settings, Setting{
			Key:        key,
			Value:      v.Get(key),
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return settings
}
