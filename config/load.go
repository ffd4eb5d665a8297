package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teranos/sdkgen/errors"
)

// ProjectConfigName is looked up from the working directory upwards.
const ProjectConfigName = "sdkgen.toml"

// EnvPrefix prefixes environment overrides, e.g. SDKGEN_BUNDLER_COMMAND.
const EnvPrefix = "SDKGEN"

var (
	// SystemConfigPath is the lowest-precedence config file
	SystemConfigPath = "/etc/sdkgen/config.toml"
	// UserConfigDir returns the directory holding the user config file
	UserConfigDir = func() (string, error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".sdkgen"), nil
	}

	mu            sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
	// Sources records which file set each key, filled during loading
	Sources = map[string]SourceInfo{}
)

// Load returns the effective configuration, loading it once per process.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalConfig != nil {
		return globalConfig, nil
	}

	v, err := initViper("")
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	viperInstance = v
	globalConfig = cfg
	return cfg, nil
}

// LoadFromFile loads configuration from an explicit file instead of the
// project lookup. System and user files still apply beneath it.
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "config file %s", path),
			"run 'sdkgen config init' to create one")
	}

	mu.Lock()
	defer mu.Unlock()
	v, err := initViper(path)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	viperInstance = v
	globalConfig = cfg
	return cfg, nil
}

// GetViper returns the viper instance behind the loaded configuration so
// the CLI can bind flags to it.
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	if viperInstance == nil {
		v, err := initViper("")
		if err != nil {
			v = viper.New()
			SetDefaults(v)
		}
		viperInstance = v
	}
	return viperInstance
}

// Reload decodes the current viper state again, picking up bound flags.
func Reload() (*Config, error) {
	v := GetViper()
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	globalConfig = cfg
	mu.Unlock()
	return cfg, nil
}

// Reset clears the cached configuration (used by tests).
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = nil
	viperInstance = nil
	Sources = map[string]SourceInfo{}
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func initViper(explicit string) (*viper.Viper, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	Sources = map[string]SourceInfo{}

	if err := mergeConfigFiles(v, explicit); err != nil {
		return nil, err
	}
	return v, nil
}

// mergeConfigFiles applies config files in precedence order: system, user,
// then project (or the explicit file).
func mergeConfigFiles(v *viper.Viper, explicit string) error {
	type candidate struct {
		path   string
		source Source
	}
	var candidates []candidate

	candidates = append(candidates, candidate{SystemConfigPath, SourceSystem})
	if dir, err := UserConfigDir(); err == nil {
		candidates = append(candidates, candidate{filepath.Join(dir, "config.toml"), SourceUser})
	}
	if explicit != "" {
		candidates = append(candidates, candidate{explicit, SourceProject})
	} else if project := findProjectConfig(); project != "" {
		candidates = append(candidates, candidate{project, SourceProject})
	}

	for _, c := range candidates {
		if _, err := os.Stat(c.path); err != nil {
			continue
		}
		if err := mergeConfigFile(v, c.path, c.source); err != nil {
			return err
		}
	}
	return nil
}

func mergeConfigFile(v *viper.Viper, path string, source Source) error {
	fileViper := viper.New()
	fileViper.SetConfigFile(path)
	fileViper.SetConfigType("toml")
	if err := fileViper.ReadInConfig(); err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "failed to read config file %s", path),
			"check the file is valid TOML")
	}

	// merged into the config layer so environment and flags still win
	if err := v.MergeConfigMap(fileViper.AllSettings()); err != nil {
		return errors.Wrapf(err, "failed to merge config file %s", path)
	}
	for _, key := range fileViper.AllKeys() {
		Sources[key] = SourceInfo{Source: source, Path: path}
	}
	v.SetConfigFile(path)
	return nil
}

// findProjectConfig walks up from the working directory looking for
// sdkgen.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
