package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/todump/todump/internal/cli/formatter"
)

func serverAnnotations() map[string]string {
	return map[string]string{annotationServer: "true"}
}

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the todo HTTP API",
		Args:        cobra.NoArgs,
		Annotations: serverAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return errNotConfigured
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")

	return cmd
}

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "migrate",
		Short:       "Create or update the server database schema",
		Args:        cobra.NoArgs,
		Annotations: serverAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Migrate == nil {
				return errNotConfigured
			}
			if err := app.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "user",
		Short:       "Manage server accounts and tokens",
		Annotations: serverAnnotations(),
	}

	cmd.AddCommand(
		newUserAddCmd(app),
		newUserTokenCmd(app),
		newUserRevokeCmd(app),
		newUserListCmd(app),
	)

	return cmd
}

func newUserAddCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Create an account and print its first token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return err
			}
			user, token, err := users.Register(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s %s\n", user.Email, formatter.Dim(formatter.ShortID(user.ID)))
			fmt.Fprintf(cmd.OutOrStdout(), "Token: %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")

	return cmd
}

func newUserTokenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "token EMAIL",
		Short: "Issue a new bearer token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return err
			}
			token, err := users.IssueToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newUserRevokeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke EMAIL",
		Short: "Invalidate every token of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return err
			}
			if err := users.Revoke(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked all tokens for %s\n", args[0])
			return nil
		},
	}
}

func newUserListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return err
			}
			all, err := users.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No users yet. Create one with: todump user add EMAIL"))
				return nil
			}
			rows := make([][]string, 0, len(all))
			for _, u := range all {
				rows = append(rows, []string{formatter.ShortID(u.ID), u.Email, u.Name})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"ID", "EMAIL", "NAME"}, rows))
			return nil
		},
	}
}
