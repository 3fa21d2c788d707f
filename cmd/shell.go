package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/navigation"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive client session",
		Long: `Start an interactive client session. The shell keeps the current location,
guards every move with the stored session markers and returns to the title
screen when the server rejects the session.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return newShell(a, cmd.OutOrStdout()).run(cmd.Context(), cmd.InOrStdin())
		}),
	}
}

type shell struct {
	app *app
	out io.Writer
}

func newShell(a *app, out io.Writer) *shell {
	return &shell{app: a, out: out}
}

const shellHelp = `commands:
  login <email> <password>           log in
  signup <email> <password> [name]   register an account
  verify <token>                     confirm an email address
  logout                             log out
  status                             show the session
  inventory                          show gold, ores and items
  base <town-id>                     establish a base
  go <path>                          navigate
  where                              show the current location
  admin-login <secret>               log in as administrator
  admin-logout                       log the administrator out
  help                               show this help
  quit                               leave the shell`

func (s *shell) run(ctx context.Context, in io.Reader) error {
	unsubscribe := s.app.client.OnUnauthorized(func(httpclient.UnauthorizedEvent) {
		fmt.Fprintln(s.out, "session expired, back to the title screen")
	})
	defer unsubscribe()

	if s.app.session.RestoreSession(ctx) {
		fmt.Fprintln(s.out, "welcome back,", s.app.session.Snapshot().User.Name)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(s.out, "%s> ", s.app.navigator.Current().Path)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := s.exec(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
	}
}

func (s *shell) exec(ctx context.Context, name string, args []string) error {
	a := s.app

	switch name {
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		if !a.session.Login(ctx, args[0], args[1]) {
			return failure(a.session.Snapshot().Error)
		}
		fmt.Fprintln(s.out, "logged in as", a.session.Snapshot().User.Name)
	case "signup":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: signup <email> <password> [name]")
		}
		name := ""
		if len(args) == 3 {
			name = args[2]
		}
		if !a.session.Signup(ctx, args[0], args[1], name) {
			return failure(a.session.Snapshot().Error)
		}
		fmt.Fprintln(s.out, a.session.Snapshot().SuccessMessage)
	case "verify":
		if len(args) != 1 {
			return fmt.Errorf("usage: verify <token>")
		}
		if !a.session.VerifyEmail(ctx, args[0]) {
			return failure(a.session.Snapshot().Error)
		}
		fmt.Fprintln(s.out, a.session.Snapshot().SuccessMessage)
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		if _, err := a.navigator.Navigate(ctx, "/"); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "logged out")
	case "status":
		st := a.session.Snapshot()
		if !st.IsAuthenticated {
			fmt.Fprintln(s.out, "player: logged out")
			return nil
		}
		fmt.Fprintf(s.out, "player: %s <%s>\n", st.User.Name, st.User.Email)
	case "inventory":
		if !a.inventory.Fetch(ctx) {
			return failure(a.inventory.Snapshot().Error)
		}
		writeInventory(s.out, a.inventory.Snapshot().Inventory)
	case "base":
		if len(args) != 1 {
			return fmt.Errorf("usage: base <town-id>")
		}
		if !a.base.Create(ctx, args[0]) {
			return failure(a.base.Snapshot().Error)
		}
		b := a.base.Snapshot().Base
		fmt.Fprintf(s.out, "base %s established in town %s\n", b.ID, b.TownID)
	case "go":
		if len(args) != 1 {
			return fmt.Errorf("usage: go <path>")
		}
		reached, err := a.navigator.Navigate(ctx, args[0])
		if err != nil {
			return err
		}
		if requested, _ := navigation.Lookup(args[0]); reached.Path != requested.Path {
			fmt.Fprintln(s.out, "redirected to", reached.Path)
		}
	case "where":
		r := a.navigator.Current()
		fmt.Fprintf(s.out, "%s (%s)\n", r.Path, r.Name)
	case "admin-login":
		if len(args) != 1 {
			return fmt.Errorf("usage: admin-login <secret>")
		}
		if !a.admin.Login(ctx, args[0]) {
			return failure(a.admin.State().Error)
		}
		fmt.Fprintln(s.out, "admin: logged in")
	case "admin-logout":
		if err := a.admin.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "admin: logged out")
	default:
		return fmt.Errorf("unknown command %q, try help", name)
	}
	return nil
}
