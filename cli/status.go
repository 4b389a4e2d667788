package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/colors"
	"github.com/stratavcs/strata/internal/diff"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the working directory status",
	Long:  "Compares the working directory against the current HEAD commit.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		if branch, onBranch, err := repo.CurrentBranch(); err != nil {
			return err
		} else if onBranch {
			fmt.Printf("On branch %s\n", colors.Bold(branch))
		} else {
			head, _, err := repo.HeadCommit()
			if err != nil {
				return err
			}
			fmt.Printf("HEAD detached at %s\n", colors.Bold(head.String()))
		}

		if repo.IsMerging() {
			fmt.Println(colors.Yellow("A merge is in progress (use 'strata merge --abort' to abandon it)"))
		}

		d, err := repo.Diff("HEAD", repo.WorkDir())
		if err != nil {
			return err
		}
		if d.Empty() {
			fmt.Println(colors.Green("Working directory clean"))
			return nil
		}

		fmt.Println("\nChanges since last commit:")
		printChanges(d)
		return nil
	},
}

// printChanges prints one line per leaf change. Interior directory nodes are
// skipped; their changes appear through their children. A moved pair prints
// once, at its old location.
func printChanges(d *diff.Diff) {
	d.Walk(func(idx, depth int) {
		node := d.Node(idx)
		switch node.Variant {
		case diff.Added:
			fmt.Println(colors.ChangeLine("A", d.Path(idx), colors.Added))
		case diff.Removed:
			fmt.Println(colors.ChangeLine("D", d.Path(idx), colors.Removed))
		case diff.Modified:
			if len(node.Children) == 0 {
				fmt.Println(colors.ChangeLine("M", d.Path(idx), colors.Modified))
			}
		case diff.MovedTo:
			line := fmt.Sprintf("%s -> %s", d.Path(idx), d.Path(node.Pair))
			fmt.Println(colors.ChangeLine("R", line, colors.Moved))
		case diff.MovedFrom:
			// Printed with its MovedTo partner.
		}
	})
}
