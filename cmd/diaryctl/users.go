package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"emotional-diary/internal/services"
)

func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	var input services.RegisterInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := connect(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := services.NewUserService(a.repo, a.logger).Register(cmd.Context(), input)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		},
	}
	createCmd.Flags().StringVarP(&input.Username, "username", "u", "", "Username (required)")
	createCmd.Flags().StringVarP(&input.Email, "email", "e", "", "Email (required)")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("email")
	usersCmd.AddCommand(createCmd)

	return usersCmd
}
