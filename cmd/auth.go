package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtroode/townforge-client/internal/token"
)

type credentialsFlags struct {
	email    string
	password string
	name     string
}

func newLoginCmd() *cobra.Command {
	f := &credentialsFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a player",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if !a.session.Login(cmd.Context(), f.email, f.password) {
				return failure(a.session.Snapshot().Error)
			}
			printSession(cmd, a)
			return nil
		}),
	}

	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newSignupCmd() *cobra.Command {
	f := &credentialsFlags{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new player account",
		Long: `Register a new player account. The account stays logged out until the
email address is confirmed with the verify command.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if !a.session.Signup(cmd.Context(), f.email, f.password, f.name) {
				return failure(a.session.Snapshot().Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.session.Snapshot().SuccessMessage)
			return nil
		}),
	}

	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password")
	cmd.Flags().StringVar(&f.name, "name", "", "display name (defaults to the email local part)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Confirm an email address and log in",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if !a.session.VerifyEmail(cmd.Context(), args[0]) {
				return failure(a.session.Snapshot().Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.session.Snapshot().SuccessMessage)
			printSession(cmd, a)
			return nil
		}),
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log the player out",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		}),
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored player and admin sessions",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			a.session.RestoreSession(cmd.Context())
			printSession(cmd, a)

			markers, err := a.markers.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if markers.Player.Present() {
				printTokenExpiry(cmd, "player token", markers.Player.Token)
			}
			if markers.Admin.Present() {
				fmt.Fprintln(cmd.OutOrStdout(), "admin: logged in")
				printTokenExpiry(cmd, "admin token", markers.Admin.Token)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "admin: logged out")
			}
			return nil
		}),
	}
}

func printSession(cmd *cobra.Command, a *app) {
	s := a.session.Snapshot()
	if !s.IsAuthenticated {
		fmt.Fprintln(cmd.OutOrStdout(), "player: logged out")
		if s.Error != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "last error:", s.Error)
		}
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "player: logged in as %s <%s> (id %s)\n", s.User.Name, s.User.Email, s.User.ID)
}

// printTokenExpiry shows the expiry of JWT credentials. Opaque tokens are skipped.
func printTokenExpiry(cmd *cobra.Command, label, raw string) {
	claims, err := token.Inspect(raw)
	if err != nil || claims.ExpiresAt == nil {
		return
	}
	exp := claims.ExpiresAt.Time
	state := fmt.Sprintf("expires in %s", time.Until(exp).Round(time.Second))
	if time.Now().After(exp) {
		state = "expired"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", label, state, exp.Format(time.RFC3339))
}
