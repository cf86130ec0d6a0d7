package main

import (
	"github.com/spf13/cobra"

	"digimarket.backend/internal/infrastructure/migrations"
)

func (f *CommandFactory) NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Apply or inspect the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},

		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.connect(); err != nil {
				return err
			}
			m, err := migrations.NewMigrator(f.sqlDB)
			if err != nil {
				return err
			}

			if args[0] == "version" {
				v, err := m.Version(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("Schema version: %d\n", v)
				return nil
			}

			if err := m.Run(cmd.Context(), args[0]); err != nil {
				cmd.Printf("Migration %s failed: %v\n", args[0], err)
				return err
			}
			cmd.Printf("Migration %s done\n", args[0])
			return nil
		},
	}
}
