package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/colors"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <target>",
	Short: "Switch the working directory to another commit",
	Long: `Makes the working directory match the target branch, tag or commit hash
and repoints HEAD. Refuses to run if uncommitted changes or colliding
untracked files would be overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		target := args[0]
		if err := repo.Checkout(target); err != nil {
			return err
		}

		if branch, onBranch, err := repo.CurrentBranch(); err == nil && onBranch {
			fmt.Printf("Switched to branch %s\n", colors.Bold(branch))
		} else {
			fmt.Printf("HEAD detached at %s\n", colors.Bold(target))
		}
		return nil
	},
}
