package cmd

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/calgarytospace/tcx/internal/config"
	"github.com/calgarytospace/tcx/internal/output"
	"github.com/calgarytospace/tcx/internal/store"
)

// Shared utility functions for command implementations

// parseOutputOptions validates the global --format and --density flags.
func parseOutputOptions() (output.Format, output.Density, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return "", "", fmt.Errorf("invalid format: %w", err)
	}

	density, err := output.ParseDensity(outputDensity)
	if err != nil {
		return "", "", fmt.Errorf("invalid density: %w", err)
	}

	return format, density, nil
}

// openStore locates the .tcx directory upward from the working directory
// and opens the telecommand index. Callers own the returned store.
func openStore() (*store.Store, error) {
	tcxDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("tcx not initialized: run 'tcx init' first")
	}

	storeDB, err := store.Open(tcxDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return storeDB, nil
}

// loadConfig loads project config, falling back to defaults when the
// project has no config file yet. An explicit --config path must load.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	return config.Load(".")
}

// resolveTelecommand resolves a telecommand by name.
//
// Resolution priority:
// 1. Exact name match
// 2. Unique substring match across active records
//
// If multiple records match the substring, it returns an error listing
// the options.
func resolveTelecommand(storeDB *store.Store, name string) (*store.Telecommand, error) {
	row, err := storeDB.GetTelecommand(name)
	if err == nil {
		return row, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query telecommands: %w", err)
	}

	// Fall back to substring search over active records
	matches, err := storeDB.QueryTelecommands(store.TelecommandFilter{
		Name:   name,
		Status: "active",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query telecommands: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("telecommand not found: %q", name)
	case 1:
		return matches[0], nil
	}

	// Ambiguous: list candidates so the caller can narrow the name
	var suggestions []string
	for i, m := range matches {
		if i >= 10 {
			suggestions = append(suggestions, fmt.Sprintf("  ... and %d more", len(matches)-10))
			break
		}
		suggestions = append(suggestions, fmt.Sprintf("  - %s (%d args)", m.Name, m.ArgumentCount))
	}
	return nil, fmt.Errorf("multiple telecommands match %q:\n%s\n\nUse the full telecommand name", name, strings.Join(suggestions, "\n"))
}

// shortenHash truncates a commit hash for display.
func shortenHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
