package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtroode/townforge-client/internal/model"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
	}

	cmd.AddCommand(newAdminLoginCmd())
	cmd.AddCommand(newAdminLogoutCmd())
	cmd.AddCommand(newAdminUsersCmd())
	cmd.AddCommand(newAdminPendingCmd())
	cmd.AddCommand(newAdminTownsCmd())

	return cmd
}

func newAdminLoginCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as administrator",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if !a.admin.Login(cmd.Context(), secret) {
				return failure(a.admin.State().Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "admin: logged in")
			return nil
		}),
	}

	cmd.Flags().StringVar(&secret, "secret", "", "admin secret key")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newAdminLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log the administrator out",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.admin.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "admin: logged out")
			return nil
		}),
	}
}

func newAdminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			users, err := a.admin.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			writeUsers(cmd.OutOrStdout(), users)
			return nil
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			user, err := a.admin.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeUsers(cmd.OutOrStdout(), []model.AdminUser{user})
			return nil
		}),
	})

	update := model.UserUpdate{}
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a user's email or name",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if update.Email == "" && update.Name == "" {
				return fmt.Errorf("nothing to update: set --email or --name")
			}
			if err := a.admin.UpdateUser(cmd.Context(), args[0], update); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s updated\n", args[0])
			return nil
		}),
	}
	updateCmd.Flags().StringVar(&update.Email, "email", "", "new email")
	updateCmd.Flags().StringVar(&update.Name, "name", "", "new display name")
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.admin.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s deleted\n", args[0])
			return nil
		}),
	})

	return cmd
}

func newAdminPendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List registrations waiting for verification",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			pending, err := a.admin.ListPendingUsers(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMAIL\tNAME\tTOKEN\tEXPIRES")
			for _, p := range pending {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Email, p.Name, p.Token, formatTime(p.TokenExpiry))
			}
			return tw.Flush()
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <token>",
		Short: "Drop a pending registration",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.admin.DeletePendingUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pending registration deleted")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resend <email>",
		Short: "Send the verification mail again",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.admin.ResendVerification(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verification mail sent to %s\n", args[0])
			return nil
		}),
	})

	return cmd
}

func newAdminTownsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "towns",
		Short: "List towns",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			towns, err := a.admin.ListTowns(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tX\tY\tDESCRIPTION")
			for _, t := range towns {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", t.ID, t.Name, t.X, t.Y, t.Description)
			}
			return tw.Flush()
		}),
	}

	create := model.Town{}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a town",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.admin.CreateTown(cmd.Context(), create); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "town %s created\n", create.Name)
			return nil
		}),
	}
	townFlags(createCmd, &create)
	_ = createCmd.MarkFlagRequired("name")
	cmd.AddCommand(createCmd)

	update := model.Town{}
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a town",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.admin.UpdateTown(cmd.Context(), args[0], update); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "town %s updated\n", args[0])
			return nil
		}),
	}
	townFlags(updateCmd, &update)
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a town",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.admin.DeleteTown(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "town %s deleted\n", args[0])
			return nil
		}),
	})

	return cmd
}

func townFlags(cmd *cobra.Command, town *model.Town) {
	cmd.Flags().StringVar(&town.Name, "name", "", "town name")
	cmd.Flags().StringVar(&town.Description, "description", "", "town description")
	cmd.Flags().IntVar(&town.X, "x", 0, "map x coordinate")
	cmd.Flags().IntVar(&town.Y, "y", 0, "map y coordinate")
}

func writeUsers(w io.Writer, users []model.AdminUser) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, formatTime(u.CreatedAt))
	}
	_ = tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
