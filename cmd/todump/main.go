package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/todump/todump/internal/cli"
	"github.com/todump/todump/internal/config"
	"github.com/todump/todump/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	app := &cli.App{
		Interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}

	// Wiring waits for flag parsing: the config layers end with the flags of
	// the command actually being run.
	app.Setup = func(cmd *cobra.Command) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		logger := logging.New(os.Stderr, logging.Options{
			Level:     cfg.Log.Level,
			Format:    cfg.Log.Format,
			Timestamp: cli.ServerCommand(cmd),
		})
		if cfg.File != "" {
			logger.Debug("loaded config", "file", cfg.File)
		}

		if cli.ServerCommand(cmd) {
			closeFn, err := wireServer(app, cfg, logger)
			if err != nil {
				return err
			}
			closers = append(closers, closeFn)
			return nil
		}
		return wireClient(app, cfg, logger)
	}

	return cli.NewRootCmd(app).Execute()
}
