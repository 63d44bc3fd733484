package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todump/todump/internal/auth"
	"github.com/todump/todump/internal/domain"
	"github.com/todump/todump/internal/repository"
	"github.com/todump/todump/internal/testutil"
)

func newUserService(t *testing.T) (UserService, *auth.TokenAuthenticator) {
	t.Helper()
	database := testutil.NewTestDatabase(t)
	users := repository.NewSQLUserRepo(database.Conn())
	sessions := repository.NewSQLSessionRepo(database.Conn())
	authn := auth.NewTokenAuthenticator(sessions)
	return NewUserService(users, sessions, authn, 0), authn
}

func TestUserService_RegisterIssuesWorkingToken(t *testing.T) {
	svc, authn := newUserService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, " Ada@Example.com ", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
	require.NotEmpty(t, token)

	uid, err := authn.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)
}

func TestUserService_RegisterRejectsBadEmail(t *testing.T) {
	svc, _ := newUserService(t)
	_, _, err := svc.Register(context.Background(), "not-an-email", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "bob@example.com", "")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "BOB@example.com", "")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUserService_IssueTokenAndRevoke(t *testing.T) {
	svc, authn := newUserService(t)
	ctx := context.Background()

	user, first, err := svc.Register(ctx, "cy@example.com", "")
	require.NoError(t, err)

	second, err := svc.IssueToken(ctx, "cy@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	uid, err := authn.Authenticate(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)

	require.NoError(t, svc.Revoke(ctx, "cy@example.com"))
	for _, tok := range []string{first, second} {
		_, err := authn.Authenticate(ctx, tok)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
}

func TestUserService_UnknownEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.IssueToken(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Revoke(ctx, "ghost@example.com"), domain.ErrNotFound)
}

func TestUserService_ExpiringTokens(t *testing.T) {
	database := testutil.NewTestDatabase(t)
	sessions := repository.NewSQLSessionRepo(database.Conn())
	authn := auth.NewTokenAuthenticator(sessions)
	svc := NewUserService(repository.NewSQLUserRepo(database.Conn()), sessions, authn, time.Hour)

	_, token, err := svc.Register(context.Background(), "dee@example.com", "")
	require.NoError(t, err)

	s, err := sessions.GetByTokenHash(context.Background(), auth.HashToken(token))
	require.NoError(t, err)
	require.NotNil(t, s.ExpiresAt)
	assert.WithinDuration(t, s.CreatedAt.Add(time.Hour), *s.ExpiresAt, time.Second)
}

func TestUserService_List(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	for _, e := range []string{"a@example.com", "b@example.com"} {
		_, _, err := svc.Register(ctx, e, "")
		require.NoError(t, err)
	}
	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
