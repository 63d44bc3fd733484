package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/todump/todump/internal/config"
	"github.com/todump/todump/internal/service"
)

// annotationServer marks commands that run against the server database
// rather than the configured task store.
const annotationServer = "todump/server"

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Tasks service.TaskService
	Users service.UserService

	// Serve runs the HTTP API until ctx is cancelled.
	Serve func(ctx context.Context) error
	// Migrate applies the database schema.
	Migrate func(ctx context.Context) error

	// Interactive enables spinners and confirmation prompts.
	Interactive bool
	// Confirm asks a yes/no question. Defaults to a huh prompt.
	Confirm func(title string) (bool, error)

	// Setup populates the fields above from parsed flags before a command
	// runs. Tests leave it nil and fill the App directly.
	Setup func(cmd *cobra.Command) error
}

// ServerCommand reports whether cmd operates on the server database.
func ServerCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationServer] == "true" {
			return true
		}
	}
	return false
}

// NewRootCmd creates the top-level "todump" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "todump",
		Short:         "Dump todos fast, let AI break the big ones down",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Setup == nil {
				return nil
			}
			return app.Setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Interactive {
				return runUI(cmd, app)
			}
			return cmd.Help()
		},
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newAddCmd(app),
		newListCmd(app),
		newDoneCmd(app),
		newEditCmd(app),
		newRemoveCmd(app),
		newUICmd(app),
		newServeCmd(app),
		newMigrateCmd(app),
		newUserCmd(app),
	)

	return root
}

var errNotConfigured = errors.New("command is not available in this configuration")

func (a *App) tasks() (service.TaskService, error) {
	if a.Tasks == nil {
		return nil, errNotConfigured
	}
	return a.Tasks, nil
}

func (a *App) users() (service.UserService, error) {
	if a.Users == nil {
		return nil, errNotConfigured
	}
	return a.Users, nil
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	return ok, err
}
