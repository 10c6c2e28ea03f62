package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mfukuda/studyset/internal/database"
	"github.com/mfukuda/studyset/schemas"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded schema migrations to the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			entries, err := schemas.Migrations.ReadDir("migrations")
			if err != nil {
				return fmt.Errorf("schemas.Migrations.ReadDir() > %w", err)
			}
			names := make([]string, 0, len(entries))
			for _, entry := range entries {
				names = append(names, entry.Name())
			}
			sort.Strings(names)

			for _, name := range names {
				content, err := schemas.Migrations.ReadFile("migrations/" + name)
				if err != nil {
					return fmt.Errorf("schemas.Migrations.ReadFile(%s) > %w", name, err)
				}
				if _, err := db.ExecContext(ctx, string(content)); err != nil {
					return fmt.Errorf("apply migration %s > %w", name, err)
				}
				fmt.Printf("Applied %s\n", name)
			}
			return nil
		},
	}
}
