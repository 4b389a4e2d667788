package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratavcs/strata/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config <key> [value]",
	Short: "Get or set repository configuration",
	Long:  "Reads or writes a configuration key. Supported keys: user.name.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}

		cfg, err := config.Load(repo.ConfigPath())
		if err != nil {
			return err
		}

		key := args[0]
		if key != "user.name" {
			return fmt.Errorf("unknown config key %q", key)
		}

		if len(args) == 1 {
			if cfg.User.Name == "" {
				return fmt.Errorf("%s is not set", key)
			}
			fmt.Println(cfg.User.Name)
			return nil
		}

		cfg.User.Name = args[1]
		return config.Save(repo.ConfigPath(), cfg)
	},
}
