// cmd/server/cmd_db.go
package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/repuestos-py/marketplace/internal/config"
	"github.com/repuestos-py/marketplace/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the document store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		return migrate(cmd.Context(), cfg)
	},
}

var (
	seedAdminUID   string
	seedAdminEmail string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default categories and, optionally, an admin user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := database.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close(context.Background())

		created, err := database.SeedCategories(ctx, st)
		if err != nil {
			return err
		}
		fmt.Printf("Created %d categories\n", created)

		if seedAdminUID != "" {
			if err := database.SeedAdmin(ctx, st, seedAdminUID, seedAdminEmail); err != nil {
				return err
			}
			fmt.Printf("User %s is now an administrator\n", seedAdminUID)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminUID, "admin-uid", "", "identity provider uid to promote to admin")
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "", "email stored for the admin user")
}

// migrate runs the schema step of the configured backend. Mongo indexes are
// ensured on connect and the memory store has no schema.
func migrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.DocStore.Driver {
	case "postgres":
		db, err := database.Initialize(cfg.Database)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		defer sqlDB.Close()
		return database.RunMigrations(db)
	case "mongo":
		client, _, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		return client.Disconnect(context.Background())
	default:
		logrus.WithField("doc_store", cfg.DocStore.Driver).Info("Nothing to migrate")
		return nil
	}
}
