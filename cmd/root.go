package main

import (
	"github.com/spf13/cobra"

	"github.com/dtroode/townforge-client/internal/config"
	"github.com/dtroode/townforge-client/internal/logger"
)

// logLevel overrides LOG_LEVEL when the flag is set.
var logLevel int

// NewRootCmd creates the root command of the townforge client.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "townforge",
		Short: "Townforge game client",
		Long: `Townforge is the command line client of the Townforge game.
It keeps the player and admin sessions, guards navigation and talks to the game server.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().IntVar(&logLevel, "log-level", 0, "slog level (-4 debug, 0 info, 4 warn, 8 error)")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newSignupCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newInventoryCmd())
	cmd.AddCommand(newBaseCmd())
	cmd.AddCommand(newNavigateCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newShellCmd())

	return cmd
}

// withApp wires the client for one command run and closes it afterwards.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}

		log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.Error("Client: failed to close", "error", err.Error())
			}
		}()

		return run(cmd, args, a)
	}
}
