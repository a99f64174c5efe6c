package config

import "github.com/calgarytospace/tcx/internal/firmware"

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Repo: RepoConfig{
			URL:    firmware.DefaultRepoURL,
			Branch: firmware.DefaultBranch,
			Dir:    "CTS-SAT-1-OBC-Firmware",
			SourceDirs: []string{
				"firmware/Core/Src",
				"firmware/Core/Inc",
			},
		},
		Scan: ScanConfig{
			Exclude: []string{
				"Drivers/**",
				"Middlewares/**",
				"build/**",
				"*_test.c",
			},
		},
		Preview: PreviewConfig{
			Prefix:  "CTS1+",
			MaxArgs: 10,
		},
		Term: TermConfig{
			Listen: "127.0.0.1:8765",
		},
		Output: OutputConfig{
			DefaultFormat:  "yaml",
			DefaultDensity: "medium",
			ExportDir:      ".",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Repo = mergeRepoConfig(loaded.Repo, defaults.Repo)
	result.Scan = mergeScanConfig(loaded.Scan, defaults.Scan)
	result.Preview = mergePreviewConfig(loaded.Preview, defaults.Preview)
	result.Term = mergeTermConfig(loaded.Term, defaults.Term)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)

	return result
}

func mergeRepoConfig(loaded, defaults RepoConfig) RepoConfig {
	result := RepoConfig{}

	if loaded.URL != "" {
		result.URL = loaded.URL
	} else {
		result.URL = defaults.URL
	}

	if loaded.Branch != "" {
		result.Branch = loaded.Branch
	} else {
		result.Branch = defaults.Branch
	}

	if loaded.Dir != "" {
		result.Dir = loaded.Dir
	} else {
		result.Dir = defaults.Dir
	}

	if len(loaded.SourceDirs) > 0 {
		result.SourceDirs = loaded.SourceDirs
	} else {
		result.SourceDirs = defaults.SourceDirs
	}

	return result
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := ScanConfig{}

	if len(loaded.Exclude) > 0 {
		result.Exclude = loaded.Exclude
	} else {
		result.Exclude = defaults.Exclude
	}

	return result
}

func mergePreviewConfig(loaded, defaults PreviewConfig) PreviewConfig {
	result := PreviewConfig{}

	if loaded.Prefix != "" {
		result.Prefix = loaded.Prefix
	} else {
		result.Prefix = defaults.Prefix
	}

	if loaded.MaxArgs != 0 {
		result.MaxArgs = loaded.MaxArgs
	} else {
		result.MaxArgs = defaults.MaxArgs
	}

	return result
}

func mergeTermConfig(loaded, defaults TermConfig) TermConfig {
	result := TermConfig{}

	if loaded.Listen != "" {
		result.Listen = loaded.Listen
	} else {
		result.Listen = defaults.Listen
	}

	// The pointer distinguishes an explicit false from unset.
	if loaded.AutoFormatJSON != nil {
		result.AutoFormatJSON = loaded.AutoFormatJSON
	} else {
		result.AutoFormatJSON = defaults.AutoFormatJSON
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.DefaultFormat != "" {
		result.DefaultFormat = loaded.DefaultFormat
	} else {
		result.DefaultFormat = defaults.DefaultFormat
	}

	if loaded.DefaultDensity != "" {
		result.DefaultDensity = loaded.DefaultDensity
	} else {
		result.DefaultDensity = defaults.DefaultDensity
	}

	if loaded.ExportDir != "" {
		result.ExportDir = loaded.ExportDir
	} else {
		result.ExportDir = defaults.ExportDir
	}

	return result
}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"yaml", "json"}

// IsValidFormat checks if the given format value is valid
func IsValidFormat(format string) bool {
	for _, valid := range ValidFormats {
		if format == valid {
			return true
		}
	}
	return false
}

// ValidDensities lists the valid values for output density
var ValidDensities = []string{"sparse", "medium", "dense"}

// IsValidDensity checks if the given density value is valid
func IsValidDensity(density string) bool {
	for _, valid := range ValidDensities {
		if density == valid {
			return true
		}
	}
	return false
}
