package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/colors"
)

var initBranch string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new repository",
	Long:  "Creates the repository metadata directory, the object store, the default branch and HEAD.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		if err := repo.Init(initBranch); err != nil {
			return err
		}
		fmt.Printf("Initialized empty repository in %s\n", repo.RepoPath())
		return nil
	},
}

var destroyForce bool

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete the repository metadata",
	Long:  "Removes the metadata directory with all objects and refs. Working directory files are untouched.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !destroyForce {
			return fmt.Errorf("destroy deletes all history; pass --force to confirm")
		}
		repo, err := openRepo()
		if err != nil {
			return err
		}
		if err := repo.Destroy(); err != nil {
			return err
		}
		fmt.Println(colors.Yellow("Repository destroyed"))
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&initBranch, "branch", "b", "", "name of the default branch")
	destroyCmd.Flags().BoolVarP(&destroyForce, "force", "f", false, "confirm deletion of all repository data")
}
