package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/todump/todump/internal/cli/formatter"
	"github.com/todump/todump/internal/domain"
)

func newAddCmd(app *App) *cobra.Command {
	var withAI bool

	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a todo, optionally broken into steps by AI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.tasks()
			if err != nil {
				return err
			}

			stop := func() {}
			if withAI && app.Interactive {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Breaking it down...")
			}
			res, err := tasks.Add(cmd.Context(), strings.Join(args, " "), withAI)
			stop()
			if err != nil {
				return err
			}

			if res.Fallback {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Warn(res.Notice))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAdded(res.Created))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withAI, "ai", false, "Break the todo into steps with AI")

	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos with their steps",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.tasks()
			if err != nil {
				return err
			}
			all, err := tasks.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTodoList(all, time.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw list as JSON")

	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a todo between open and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.tasks()
			if err != nil {
				return err
			}
			target, _, err := resolveTask(cmd.Context(), tasks, args[0])
			if err != nil {
				return err
			}
			updated, err := tasks.Toggle(cmd.Context(), target.ID)
			if err != nil {
				return err
			}

			verb := formatter.StyleYellow.Render("○ Reopened")
			if updated.Completed {
				verb = formatter.StyleGreen.Render("✔ Completed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, updated.Text)
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID TEXT...",
		Short: "Replace a todo's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.tasks()
			if err != nil {
				return err
			}
			target, _, err := resolveTask(cmd.Context(), tasks, args[0])
			if err != nil {
				return err
			}
			updated, err := tasks.Edit(cmd.Context(), target.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", formatter.Dim(formatter.ShortID(updated.ID)), updated.Text)
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a todo and its steps",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.tasks()
			if err != nil {
				return err
			}
			target, all, err := resolveTask(cmd.Context(), tasks, args[0])
			if err != nil {
				return err
			}

			steps := len(domain.Descendants(all, target.ID))
			if steps > 0 && !yes && app.Interactive {
				ok, err := app.confirm(fmt.Sprintf("Delete %q and its %d %s?", target.Text, steps, formatter.Plural(steps, "step", "steps")))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := tasks.Delete(cmd.Context(), target.ID); err != nil {
				return err
			}

			msg := fmt.Sprintf("Removed %s", target.Text)
			if steps > 0 {
				msg += fmt.Sprintf(" and %d %s", steps, formatter.Plural(steps, "step", "steps"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
