package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object <file>...",
	Short: "Store files as blobs and print their hashes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		for _, path := range args {
			blob, err := repo.SaveFileContent(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", blob.Hash, path)
		}
		return nil
	},
}
