package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if err := p.fill(&email, "Email: "); err != nil {
				return err
			}
			if err := p.fillSecret(&password, "Password: "); err != nil {
				return err
			}
			cred, err := c.app.Session.Authenticate(cmd.Context(), email, password, remember)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s\n", cred.User.FullName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	cmd.Flags().BoolVarP(&remember, "remember", "r", false, "Stay signed in across terminals")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var fullName, email, password, confirm string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			for _, f := range []struct {
				field  *string
				label  string
				hidden bool
			}{
				{&fullName, "Full name: ", false},
				{&email, "Email: ", false},
				{&password, "Password: ", true},
				{&confirm, "Confirm password: ", true},
			} {
				fill := p.fill
				if f.hidden {
					fill = p.fillSecret
				}
				if err := fill(f.field, f.label); err != nil {
					return err
				}
			}
			cred, err := c.app.Session.Register(cmd.Context(), fullName, email, password, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Welcome, %s\n", cred.User.FullName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fullName, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, ok, err := c.app.Session.RestoreSession(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return errNotSignedIn
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", cred.User.FullName, cred.User.Email)
			if cred.ExpiresAt != nil {
				fmt.Fprintf(out, "Remembered until %s\n", cred.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}
