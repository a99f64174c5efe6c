package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the tcx configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the tcx configuration directory
const ConfigDirName = ".tcx"

// Config holds all tcx configuration
type Config struct {
	Repo    RepoConfig    `yaml:"repo"`
	Scan    ScanConfig    `yaml:"scan"`
	Preview PreviewConfig `yaml:"preview"`
	Term    TermConfig    `yaml:"term"`
	Output  OutputConfig  `yaml:"output"`
}

// RepoConfig holds configuration for the firmware checkout
type RepoConfig struct {
	URL        string   `yaml:"url"`
	Branch     string   `yaml:"branch"`
	Dir        string   `yaml:"dir"`
	SourceDirs []string `yaml:"source_dirs"`
}

// ScanConfig holds configuration for corpus scanning
type ScanConfig struct {
	Exclude []string `yaml:"exclude"`
}

// PreviewConfig holds configuration for uplink previews
type PreviewConfig struct {
	Prefix  string `yaml:"prefix"`
	MaxArgs int    `yaml:"max_args"`
}

// TermConfig holds configuration for the ground terminal server
type TermConfig struct {
	Listen string `yaml:"listen"`
	// AutoFormatJSON is a pointer so an explicit false in the file
	// survives merging with defaults.
	AutoFormatJSON *bool `yaml:"auto_format_json"`
}

// AutoFormat reports whether received JSON should be pretty-printed.
// Unset means on.
func (t TermConfig) AutoFormat() bool {
	if t.AutoFormatJSON == nil {
		return true
	}
	return *t.AutoFormatJSON
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	DefaultFormat  string `yaml:"default_format"`
	DefaultDensity string `yaml:"default_density"`
	ExportDir      string `yaml:"export_dir"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .tcx/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Merge with defaults
	merged := Merge(loaded, DefaultConfig())

	// Validate the merged config
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .tcx directory by walking up from startDir.
// Returns the path to the .tcx directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .tcx directory if it doesn't exist.
// Returns the path to the .tcx directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if !IsValidFormat(cfg.Output.DefaultFormat) {
		return fmt.Errorf("%w: default_format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.DefaultFormat)
	}

	if !IsValidDensity(cfg.Output.DefaultDensity) {
		return fmt.Errorf("%w: default_density must be one of %v, got %q",
			ErrInvalidConfig, ValidDensities, cfg.Output.DefaultDensity)
	}

	if cfg.Preview.MaxArgs <= 0 {
		return fmt.Errorf("%w: max_args must be positive, got %d",
			ErrInvalidConfig, cfg.Preview.MaxArgs)
	}

	if cfg.Repo.Dir == "" {
		return fmt.Errorf("%w: repo dir must not be empty", ErrInvalidConfig)
	}

	return nil
}

// SaveDefault writes the default configuration to .tcx/config.yaml in workDir.
// Creates the .tcx directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# tcx configuration\n# Telecommand index for the CTS-SAT-1 ground segment.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
