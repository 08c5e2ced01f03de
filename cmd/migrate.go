package cmd

import (
	"table-reconciler/core/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates the metadata tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the metadata tables",
	Long:  `Connects to the configured metadata database and migrates the connection, project, run and schedule tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadRuntime()
		if err != nil {
			return err
		}
		defer l.Sync()

		db, _, err := openStore(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close(db)

		l.Info("Metadata tables migrated", zap.String("driver", cfg.Database.Driver), zap.String("database", cfg.Database.Name))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
