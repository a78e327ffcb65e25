package main

import (
	"fmt"

	"github.com/jrsteele09/go-order-portal/pages"
	"github.com/spf13/cobra"
)

func loginCmd(a *app) *cobra.Command {
	var email, password, returnURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.displayAppname()
			p, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			page := p.LoginPage(cmd.Context(), returnURL)
			if err := page.Submit(email, password); err != nil {
				return fmt.Errorf("%s: %w", page.ErrorText(), err)
			}
			st := p.Session.State()
			fmt.Printf("Signed in as %s (%s)\n", st.Email(), st.Role())
			fmt.Printf("Now at %s\n", p.Navigator.Current())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&returnURL, "return-url", "", "where to go after signing in")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			p.Session.Logout()
			fmt.Println("Signed out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Validate the stored session with the gateway and show its identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			id, err := p.Whoami(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", id.Email, id.Role)
			return nil
		},
	}
}

func registerCmd(a *app) *cobra.Command {
	var form pages.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user (admins only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.visit(cmd.Context(), "/users")
			if err != nil {
				return err
			}
			if form.ConfirmPassword == "" {
				form.ConfirmPassword = form.Password
			}
			page := p.RegisterPage(cmd.Context())
			u, err := page.Submit(form)
			if err != nil {
				return fmt.Errorf("%s: %w", page.ErrorText(), err)
			}
			fmt.Printf("Registered user %d %s <%s> as %s\n", u.ID, u.FullName(), u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "first name")
	cmd.Flags().StringVar(&form.Surname, "surname", "", "last name")
	cmd.Flags().StringVar(&form.Email, "email", "", "email")
	cmd.Flags().StringVar(&form.Password, "password", "", "password")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "password again (defaults to --password)")
	cmd.Flags().StringVar(&form.BirthDate, "birth-date", "", "birth date, yyyy-mm-dd")
	cmd.Flags().StringVar(&form.Role, "role", "USER", "ADMIN or USER")
	return cmd
}
