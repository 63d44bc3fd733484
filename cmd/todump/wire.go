package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/todump/todump/internal/auth"
	"github.com/todump/todump/internal/breakdown"
	"github.com/todump/todump/internal/cli"
	"github.com/todump/todump/internal/config"
	"github.com/todump/todump/internal/db"
	"github.com/todump/todump/internal/llm"
	"github.com/todump/todump/internal/remote"
	"github.com/todump/todump/internal/repository"
	"github.com/todump/todump/internal/server"
	"github.com/todump/todump/internal/service"
	"github.com/todump/todump/internal/store"
)

// wireClient sets up the task commands for local or remote mode.
func wireClient(app *cli.App, cfg *config.Config, logger *log.Logger) error {
	observer := service.NewLogUseCaseObserver(logger)

	if cfg.Mode == config.ModeRemote {
		client := remote.New(cfg.Remote.URL, cfg.Remote.Token)
		app.Tasks = service.NewTaskService(client, client, logger, observer)
		logger.Debug("using remote store", "url", cfg.Remote.URL)
		return nil
	}

	local := store.NewLocal(store.NewJSONFile(cfg.DataFile))
	app.Tasks = service.NewTaskService(local, newBreaker(cfg, logger), logger, observer)
	logger.Debug("using local store", "file", cfg.DataFile)
	return nil
}

// wireServer opens the database and sets up serve, migrate and user
// commands. The returned function closes the database.
func wireServer(app *cli.App, cfg *config.Config, logger *log.Logger) (func() error, error) {
	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	users := repository.NewSQLUserRepo(database.Conn())
	sessions := repository.NewSQLSessionRepo(database.Conn())
	authn := auth.NewTokenAuthenticator(sessions)
	observer := service.NewLogUseCaseObserver(logger)

	app.Users = service.NewUserService(users, sessions, authn, 0, observer)
	app.Migrate = func(ctx context.Context) error {
		return db.Migrate(ctx, database)
	}
	app.Serve = func(ctx context.Context) error {
		tasks, tx, closeTasks, err := openTaskBackend(ctx, cfg, database, logger)
		if err != nil {
			return err
		}
		defer closeTasks()

		srv := server.New(server.Deps{
			Tasks:   tasks,
			TaskTx:  tx,
			Auth:    authn,
			Breaker: newBreaker(cfg, logger),
			Logger:  logger,
		})
		return srv.Run(ctx, cfg.Server.Addr)
	}

	return database.Close, nil
}

// openTaskBackend picks the graph store when neo4j is configured and the
// SQL database otherwise.
func openTaskBackend(ctx context.Context, cfg *config.Config, database *db.Database, logger *log.Logger) (repository.TaskRepo, repository.TaskTx, func(), error) {
	if cfg.Neo4j.URI == "" {
		repo := repository.NewSQLTaskRepo(database.Conn())
		logger.Info("task store", "backend", string(database.Dialect))
		return repo, repository.NewSQLTaskTx(db.NewUnitOfWork(database)), func() {}, nil
	}

	driver, err := repository.OpenNeo4j(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		return nil, nil, nil, err
	}
	repo := repository.NewNeo4jTaskRepo(driver, cfg.Neo4j.Database)
	logger.Info("task store", "backend", "neo4j", "uri", cfg.Neo4j.URI)
	closeFn := func() {
		if err := driver.Close(context.Background()); err != nil {
			logger.Warn("closing neo4j driver", "err", err)
		}
	}
	return repo, repository.NewNeo4jTaskTx(repo), closeFn, nil
}

// newBreaker builds the breakdown requester. An unusable llm section yields
// a nil Breaker so only AI requests report it.
func newBreaker(cfg *config.Config, logger *log.Logger) breakdown.Breaker {
	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(logger)
	}
	client, err := llm.New(cfg.LLMClientConfig(), observer)
	if err != nil {
		logger.Warn("AI breakdown disabled", "err", err)
		return nil
	}
	return breakdown.NewRequester(client, logger)
}
