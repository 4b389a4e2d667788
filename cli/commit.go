package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/colors"
	"github.com/stratavcs/strata/internal/config"
)

var (
	commitMessage string
	commitAuthor  string
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record a snapshot of the working directory",
	Long:  "Saves every file and directory as content-addressed objects and records a commit on the current branch.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		author := commitAuthor
		if author == "" {
			cfg, err := config.Load(repo.ConfigPath())
			if err != nil {
				return err
			}
			author = cfg.User.Name
		}
		if author == "" {
			return fmt.Errorf("no author: pass --author or set user.name with 'strata config user.name <name>'")
		}

		hash, err := repo.CommitWorkingDir(author, commitMessage)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", colors.Green("committed"), hash)
		return nil
	},
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message (required)")
	commitCmd.Flags().StringVarP(&commitAuthor, "author", "a", "", "author name, defaults to user.name from config")
	_ = commitCmd.MarkFlagRequired("message")
}
