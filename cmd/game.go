package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dtroode/townforge-client/internal/model"
	"github.com/dtroode/townforge-client/internal/navigation"
)

func newInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Show gold, ores and items",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if !a.inventory.Fetch(cmd.Context()) {
				return failure(a.inventory.Snapshot().Error)
			}
			writeInventory(cmd.OutOrStdout(), a.inventory.Snapshot().Inventory)
			return nil
		}),
	}
}

func newBaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "base",
		Short: "Manage the player base",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <town-id>",
		Short: "Establish a base in a town",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if !a.base.Create(cmd.Context(), args[0]) {
				return failure(a.base.Snapshot().Error)
			}
			writeBase(cmd, a.base.Snapshot().Base)
			return nil
		}),
	})

	return cmd
}

func newNavigateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <path>",
		Short: "Check where navigating to a route leads",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			reached, err := a.navigator.Navigate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if requested, _ := navigation.Lookup(args[0]); reached.Path != requested.Path {
				fmt.Fprintf(cmd.OutOrStdout(), "redirected to %s (%s)\n", reached.Path, reached.Name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "at %s (%s)\n", reached.Path, reached.Name)
			return nil
		}),
	}
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Refresh the session and inventory together",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := loadDashboard(cmd.Context(), a); err != nil {
				return err
			}
			printSession(cmd, a)
			writeInventory(cmd.OutOrStdout(), a.inventory.Snapshot().Inventory)
			return nil
		}),
	}
}

// loadDashboard restores the session, then refreshes identity and inventory concurrently.
func loadDashboard(ctx context.Context, a *app) error {
	markers, err := a.markers.Snapshot(ctx)
	if err != nil {
		return err
	}
	if !markers.Player.Present() {
		return fmt.Errorf("not logged in")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.session.RestoreSession(gctx)
		return nil
	})
	g.Go(func() error {
		if !a.inventory.Fetch(gctx) {
			return failure(a.inventory.Snapshot().Error)
		}
		return nil
	})
	return g.Wait()
}

func writeInventory(w io.Writer, inv model.Inventory) {
	fmt.Fprintf(w, "gold: %d\n", inv.Gold)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tID\tNAME\tQUANTITY")
	for _, o := range inv.Ores {
		fmt.Fprintf(tw, "ore\t%s\t%s\t%d\n", o.OreID, o.Name, o.Quantity)
	}
	for _, it := range inv.Items {
		fmt.Fprintf(tw, "item\t%s\t%s\t%d\n", it.ItemID, it.Name, it.Quantity)
	}
	_ = tw.Flush()
}

func writeBase(cmd *cobra.Command, base *model.Base) {
	if base == nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "base %s established in town %s (level %d)\n", base.ID, base.TownID, base.Level)
}
