package command

import (
	"errors"

	"blog-service/database"

	"github.com/spf13/cobra"
)

func initDBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "clear the existing data and create new tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			rt, err := fromContext(cmd.Context())
			if err != nil {
				return err
			}
			dbConn, err := database.Open(cmd.Context(), rt.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer func() {
				if err := dbConn.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			if err := database.Reset(cmd.Context(), dbConn, rt.logger); err != nil {
				return err
			}
			cmd.Println("Initialized the database.")
			return nil
		},
	}
}

func createMigrationCommand() *cobra.Command {
	var name, dir string
	cmd := &cobra.Command{
		Use:   "create-migration",
		Short: "write a new blank SQL migration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return database.CreateMigration(dir, name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "migration name (alphanum+underscore only)")
	cmd.Flags().StringVar(&dir, "dir", "./database/migrations", "target directory for the new .sql file")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
