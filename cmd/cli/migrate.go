package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pvlink/pvlink/cmd"
	"github.com/pvlink/pvlink/internal/models"
)

// MigrateCmd creates or updates the database schema.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Run: func(_ *cobra.Command, _ []string) {
		db, closeDB := mustOpenDatabase(mustLoadConfig())
		defer closeDB()

		if err := db.AutoMigrate(&models.User{}, &models.Link{}, &models.LinkCountryClick{}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to migrate database: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
