package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todump/todump/internal/cli"
	"github.com/todump/todump/internal/config"
	"github.com/todump/todump/internal/logging"
)

func TestWireClient_LocalModePersistsToDataFile(t *testing.T) {
	cfg := config.Default()
	cfg.DataFile = filepath.Join(t.TempDir(), "todos.json")
	cfg.LLM.APIKey = ""

	app := &cli.App{}
	require.NoError(t, wireClient(app, &cfg, logging.Discard()))
	require.NotNil(t, app.Tasks)

	ctx := context.Background()
	res, err := app.Tasks.Add(ctx, "Plan trip", true)
	require.NoError(t, err)
	assert.True(t, res.Fallback, "no api key means breakdown is unavailable")

	data, err := os.ReadFile(cfg.DataFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Plan trip")
}

func TestWireClient_RemoteMode(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeRemote
	cfg.Remote.URL = "http://127.0.0.1:1"

	app := &cli.App{}
	require.NoError(t, wireClient(app, &cfg, logging.Discard()))
	assert.NotNil(t, app.Tasks)
}

func TestWireClient_UnknownProviderOnlyAffectsAIAdd(t *testing.T) {
	cfg := config.Default()
	cfg.DataFile = filepath.Join(t.TempDir(), "todos.json")
	cfg.LLM.Provider = "nope"

	app := &cli.App{}
	require.NoError(t, wireClient(app, &cfg, logging.Discard()))

	ctx := context.Background()
	tasks, err := app.Tasks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	res, err := app.Tasks.Add(ctx, "Plan trip", true)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.NotEmpty(t, res.Notice)
	require.Len(t, res.Created, 1)

	_, err = app.Tasks.Add(ctx, "Buy milk", false)
	require.NoError(t, err)
}

func TestNewBreaker_UnknownProviderIsNil(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "nope"
	assert.Nil(t, newBreaker(&cfg, logging.Discard()))

	cfg = config.Default()
	assert.NotNil(t, newBreaker(&cfg, logging.Discard()))
}

func TestWireServer_UsersAndMigrate(t *testing.T) {
	cfg := config.Default()
	cfg.Database = filepath.Join(t.TempDir(), "todump.db")

	app := &cli.App{}
	closeFn, err := wireServer(app, &cfg, logging.Discard())
	require.NoError(t, err)
	defer closeFn()

	ctx := context.Background()
	require.NoError(t, app.Migrate(ctx))

	user, token, err := app.Users.Register(ctx, "ada@example.com", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)
	assert.NotNil(t, app.Serve)
}
