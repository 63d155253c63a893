package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"emotional-diary/migrations"
)

func newMigrateCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or drop the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := migrations.Direction(direction)
			if dir != migrations.Up && dir != migrations.Down {
				return fmt.Errorf("--direction must be up or down, got %q", direction)
			}

			a, err := connect(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running %s migration on %s\n", dir, a.db.Driver())

			if err := migrations.Apply(cmd.Context(), a.db, dir); err != nil {
				return err
			}

			fmt.Fprintln(out, "Migration completed successfully")
			return nil
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", "up", "Migration direction: up or down")

	return cmd
}
