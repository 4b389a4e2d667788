// Package cli implements the strata command line interface on top of the
// repository package. Commands print results; all repository semantics live
// in internal/repository.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:           "strata",
	Short:         "Strata is a content-addressable version control system",
	Long:          `Strata tracks directory snapshots as content-addressed trees and commits, with branches, tags and pointer-level merges.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "strata: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(destroyCmd)

	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(diffCmd)

	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(mergeCmd)

	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(tagCmd)

	rootCmd.AddCommand(hashObjectCmd)
	rootCmd.AddCommand(configCmd)
}

// openRepo returns a repository handle rooted at the current directory. The
// repository is not required to exist yet; operations guard for that.
func openRepo() (*repository.Repository, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return repository.NewDefault(workDir), nil
}
