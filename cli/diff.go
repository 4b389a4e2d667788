package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/colors"
)

var diffCmd = &cobra.Command{
	Use:   "diff [source] [source]",
	Short: "Compare two commits or directories",
	Long: `Compares two sources, each a branch, tag, commit hash or directory path.
With one source it compares against HEAD; with none it compares HEAD to the
working directory.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		var source1, source2 string
		switch len(args) {
		case 0:
			source1, source2 = "HEAD", repo.WorkDir()
		case 1:
			source1, source2 = "HEAD", args[0]
		default:
			source1, source2 = args[0], args[1]
		}

		d, err := repo.Diff(source1, source2)
		if err != nil {
			return err
		}
		if d.Empty() {
			fmt.Println(colors.Dim("no differences"))
			return nil
		}

		printChanges(d)
		return nil
	},
}
