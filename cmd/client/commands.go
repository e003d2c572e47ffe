package main

import (
	"context"
	"fmt"

	"github.com/ebrahimbeiati/inventory-management/internal/client/api"
	"github.com/ebrahimbeiati/inventory-management/internal/client/auth"
	"github.com/ebrahimbeiati/inventory-management/internal/client/guard"
	"github.com/ebrahimbeiati/inventory-management/internal/client/storage"
	"github.com/ebrahimbeiati/inventory-management/internal/config"
	"github.com/ebrahimbeiati/inventory-management/internal/logging"

	"github.com/spf13/cobra"
)

// コマンドごとに組み立てるクライアント
type app struct {
	auth  *auth.Context
	guard *guard.Guard
	close func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.LoadClient()

	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := storage.Open(ctx, cfg.SessionDB)
	if err != nil {
		return nil, err
	}

	ac := auth.NewContext(api.NewClient(cfg.APIURL), store, logger)
	return &app{
		auth:  ac,
		guard: guard.New(ac),
		close: func() {
			_ = store.Close()
			_ = logger.Sync()
		},
	}, nil
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inventory-client",
		Short:         "Inventory management client session tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
		newVisitCommand(),
	)
	return cmd
}

func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.auth.Login(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("login failed: %s", a.auth.State().Error)
			}

			user := a.auth.State().User
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			a.auth.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Validate the stored session and print the user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			a.auth.Init(cmd.Context())
			user := a.auth.State().User
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s status=%s\n", user.Name, user.Email, user.Role, user.Status)
			return nil
		},
	}
}

func newVisitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "visit <path>",
		Short: "Show what the route guard renders for a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			a.auth.Init(cmd.Context())

			pathname := args[0]
			st := a.auth.State()
			view := a.guard.Page(pathname, guard.Content(pathname))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state: %s\n", guard.Evaluate(st.Loading, st.User, pathname))
			switch view.Kind {
			case guard.ViewContent:
				fmt.Fprintf(out, "render: %s\n", view.Content)
			case guard.ViewRedirect:
				fmt.Fprintf(out, "redirect: %s\n", view.Location)
			case guard.ViewAccessDenied:
				fmt.Fprintf(out, "access denied: %s\n", view.Message)
				for _, l := range view.Links {
					fmt.Fprintf(out, "  %s -> %s\n", l.Label, l.Href)
				}
			default:
				fmt.Fprintln(out, "loading")
			}
			return nil
		},
	}
}
