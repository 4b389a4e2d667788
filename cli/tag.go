package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagDelete bool

var tagCmd = &cobra.Command{
	Use:   "tag [name] [target]",
	Short: "List, create or delete tags",
	Long: `With no arguments lists tags. With a name creates a tag pointing at the
target (HEAD by default); with -d deletes one. Tags are immutable: to
repoint a tag, delete and recreate it.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			if tagDelete {
				return fmt.Errorf("-d requires a tag name")
			}
			tags, err := repo.Tags()
			if err != nil {
				return err
			}
			for _, name := range tags {
				fmt.Println(name)
			}
			return nil
		}

		name := args[0]
		if tagDelete {
			if len(args) != 1 {
				return fmt.Errorf("-d takes only a tag name")
			}
			if err := repo.DeleteTag(name); err != nil {
				return err
			}
			fmt.Printf("Deleted tag %s\n", name)
			return nil
		}

		target := "HEAD"
		if len(args) == 2 {
			target = args[1]
		}
		if err := repo.CreateTag(name, target); err != nil {
			return err
		}
		fmt.Printf("Created tag %s\n", name)
		return nil
	},
}

func init() {
	tagCmd.Flags().BoolVarP(&tagDelete, "delete", "d", false, "delete the named tag")
}
