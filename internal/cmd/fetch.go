package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/calgarytospace/tcx/internal/config"
	"github.com/calgarytospace/tcx/internal/firmware"
	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Clone or update the firmware repository",
	Long: `Fetch the CTS-SAT-1 firmware sources that scans read from.

By default this performs a shallow clone of the repository configured in
.tcx/config.yaml into the configured checkout directory. When the checkout
already exists, use --update to fast-forward it to the remote branch head.

Examples:
  tcx fetch            # Clone the firmware repository
  tcx fetch --update   # Pull the latest commits into an existing checkout`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var fetchUpdate bool

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchUpdate, "update", false, "Fast-forward an existing checkout instead of cloning")
}

// resolveRepoDir turns the configured checkout directory into an absolute
// path, anchored at the project root when tcx is initialized.
func resolveRepoDir(cfg *config.Config) string {
	dir := cfg.Repo.Dir
	if filepath.IsAbs(dir) {
		return dir
	}
	if tcxDir, err := config.FindConfigDir("."); err == nil {
		return filepath.Join(filepath.Dir(tcxDir), dir)
	}
	return dir
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dest := resolveRepoDir(cfg)

	if firmware.IsCloned(dest) {
		if !fetchUpdate {
			commit, err := firmware.HeadCommit(dest)
			if err != nil {
				return fmt.Errorf("reading checkout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Already cloned at %s (HEAD %s)\n", dest, shortenHash(commit))
			fmt.Fprintln(cmd.OutOrStdout(), "Use --update to pull the latest commits")
			return nil
		}

		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Updating %s...\n", dest)
		}
		if err := firmware.Update(dest); err != nil {
			return err
		}
		commit, err := firmware.HeadCommit(dest)
		if err != nil {
			return fmt.Errorf("reading checkout: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s to %s\n", dest, shortenHash(commit))
		return nil
	}

	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Cloning %s (branch %s) into %s...\n", cfg.Repo.URL, cfg.Repo.Branch, dest)
	}
	if err := firmware.Clone(cfg.Repo.URL, cfg.Repo.Branch, dest); err != nil {
		if errors.Is(err, firmware.ErrAlreadyCloned) {
			return fmt.Errorf("checkout already exists at %s (use --update)", dest)
		}
		return err
	}

	commit, err := firmware.HeadCommit(dest)
	if err != nil {
		return fmt.Errorf("reading checkout: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cloned %s at %s\n", dest, shortenHash(commit))
	return nil
}
