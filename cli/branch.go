package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/colors"
)

var branchDelete bool

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "List, create or delete branches",
	Long:  "With no arguments lists branches. With a name creates a branch; with -d deletes one.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			if branchDelete {
				return fmt.Errorf("-d requires a branch name")
			}
			branches, err := repo.Branches()
			if err != nil {
				return err
			}
			current, onBranch, err := repo.CurrentBranch()
			if err != nil {
				return err
			}
			for _, name := range branches {
				if onBranch && name == current {
					fmt.Printf("* %s\n", colors.Green(name))
				} else {
					fmt.Printf("  %s\n", name)
				}
			}
			return nil
		}

		name := args[0]
		if branchDelete {
			if err := repo.DeleteBranch(name); err != nil {
				return err
			}
			fmt.Printf("Deleted branch %s\n", name)
			return nil
		}

		if err := repo.AddBranch(name); err != nil {
			return err
		}
		fmt.Printf("Created branch %s\n", name)
		return nil
	},
}

func init() {
	branchCmd.Flags().BoolVarP(&branchDelete, "delete", "d", false, "delete the named branch")
}
