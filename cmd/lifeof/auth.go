package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the admin and keep the token in the OS keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("LIFEOF_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("password required (--password or LIFEOF_PASSWORD)")
			}
			resp, err := newClient().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := saveToken(resp.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s until %s\n",
				okStyle.Render("Logged in"), time.Unix(resp.ExpiresAt, 0).Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
