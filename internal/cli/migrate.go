package cli

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the postgres schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver != "postgres" {
			return errors.New("migrate requires the postgres storage driver")
		}

		stores, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer stores.close()

		if err := stores.migrate(); err != nil {
			return err
		}

		log.Println("Migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
