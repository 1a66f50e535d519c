package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.auth.Login(cmd.Context(), domain.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", session.User.Name, session.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newRegisterCmd(app *app) *cobra.Command {
	var request domain.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.auth.Register(cmd.Context(), request)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Account created. Signed in as %s <%s>\n", session.User.Name, session.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&request.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&request.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&request.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&request.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&request.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&request.DateOfBirth, "date-of-birth", "", "Date of birth (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("first-name")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.auth.Logout()
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return err
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.auth.Session()
			if !session.IsAuthenticated {
				return domain.ErrNotAuthenticated
			}

			profile, err := app.auth.Profile(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(profile)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", profile.Name, profile.Email)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newPasswordCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password recovery flows",
	}

	cmd.AddCommand(newPasswordRecoverCmd(app), newPasswordResetCmd(app))

	return cmd
}

func newPasswordRecoverCmd(app *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Request a password recovery email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.auth.RecoverPassword(cmd.Context(), email); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Recovery email sent to %s\n", email)
			return err
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newPasswordResetCmd(app *app) *cobra.Command {
	var request domain.ResetPasswordRequest

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the password with a recovery token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.auth.ResetPassword(cmd.Context(), request); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
			return err
		},
	}

	cmd.Flags().StringVar(&request.Token, "token", "", "Recovery token from the email")
	cmd.Flags().StringVar(&request.NewPassword, "new-password", "", "New password")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("new-password")

	return cmd
}
