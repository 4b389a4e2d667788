package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/colors"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log [tip]",
	Short: "Show commit history",
	Long:  "Walks first-parent history from a branch, tag, hash or HEAD (the default).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		tip := ""
		if len(args) == 1 {
			tip = args[0]
		}

		iter, err := repo.Log(tip)
		if err != nil {
			return err
		}

		shown := 0
		for {
			if logLimit > 0 && shown >= logLimit {
				break
			}
			entry, err := iter.Next()
			if err != nil {
				return err
			}
			if entry == nil {
				break
			}

			when := time.Unix(entry.Commit.Timestamp, 0).Format(time.RFC1123)
			fmt.Printf("%s %s\n", colors.Yellow("commit"), colors.Yellow(entry.Hash.String()))
			fmt.Printf("Author: %s\n", entry.Commit.Author)
			fmt.Printf("Date:   %s\n\n", when)
			fmt.Printf("    %s\n\n", entry.Commit.Message)
			shown++
		}

		if shown == 0 {
			fmt.Println(colors.Dim("no commits yet"))
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "max-count", "n", 0, "limit the number of commits shown")
}
