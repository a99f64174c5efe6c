package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/calgarytospace/tcx/internal/config"
	"github.com/calgarytospace/tcx/internal/store"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .tcx directory, config, and index database",
	Long: `Initialize the .tcx directory in the current directory.

This writes a default config.yaml and creates the versioned telecommand
index database. The config controls which firmware repository to fetch,
which source directories to scan, and how output is formatted.

Examples:
  tcx init          # Initialize in current directory
  tcx init --force  # Reinitialize (overwrites existing config and database)`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if .tcx already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	tcxDir := filepath.Join(cwd, config.ConfigDirName)
	cfgPath := filepath.Join(tcxDir, config.ConfigFileName)

	// Check if config already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, tcxDir)
			fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(cfgPath); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	written, err := config.SaveDefault(cwd)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Open store to create the index database and initialize schema
	storeDB, err := store.Open(tcxDir)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer storeDB.Close()

	relPath, _ := filepath.Rel(cwd, written)
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized tcx at %s\n", relPath)
	fmt.Fprintln(cmd.OutOrStdout(), "Next: run 'tcx fetch' to clone the firmware, then 'tcx scan'")

	return nil
}
