package main

import (
	"turva/config"
	"turva/internal/entity"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users, sessions and security_logs tables",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	if cfg.App.StoreDriver != config.StoreDriverPostgres {
		return oops.Code("CONFIG_INVALID").Errorf("migrate requires STORE_DRIVER=postgres")
	}

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	cmd.Println("Running migrations...")
	if err := st.db.WithContext(cmd.Context()).AutoMigrate(migrationModels()...); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "auto migrate").Wrap(err)
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

func migrationModels() []any {
	return []any{&entity.User{}, &entity.Session{}, &entity.SecurityLog{}}
}
