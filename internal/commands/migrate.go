package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasklist/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the schema and seed the default admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		db, err := database.Open(ctx, database.OptionsFromConfig(cfg))
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.SeedDefaultAdmin(ctx, db); err != nil {
			return err
		}
		fmt.Println("Database is up to date")
		return nil
	},
}
