package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/colors"
	"github.com/stratavcs/strata/internal/merge"
)

var mergeAbort bool

var mergeCmd = &cobra.Command{
	Use:   "merge [target]",
	Short: "Merge another commit into the current HEAD",
	Long: `Classifies the merge between HEAD and the target. Fast-forward merges
move the current branch pointer; a three-way merge is recorded as in
progress for content-level resolution. Merges never nest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		if mergeAbort {
			if len(args) != 0 {
				return fmt.Errorf("--abort takes no target")
			}
			if err := repo.AbortMerge(); err != nil {
				return err
			}
			fmt.Println(colors.Yellow("Merge aborted"))
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("merge requires a target branch, tag or hash")
		}

		state, err := repo.Merge(args[0])
		if err != nil {
			return err
		}

		switch state {
		case merge.Disconnected:
			fmt.Println(colors.Yellow("Histories are disconnected; nothing merged"))
		case merge.UpToDate:
			fmt.Println(colors.Green("Already up to date"))
		case merge.FastForward:
			fmt.Println(colors.Green("Fast-forwarded"))
		case merge.ThreeWay:
			fmt.Println(colors.Yellow("Three-way merge required; merge marked in progress"))
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeAbort, "abort", false, "abandon the in-progress merge")
}
