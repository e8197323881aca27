package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/whitelabel/internal/testkit"
	"github.com/smallbiznis/whitelabel/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*testkit.Env, domain.Service) {
	t.Helper()
	env := testkit.New(t)
	return env, New(Params{
		Log:   env.Log,
		GenID: env.Node,
		Clock: env.Clock,
		Repo:  env.Users,
	})
}

func TestRegisterNormalizesEmail(t *testing.T) {
	_, svc := newTestService(t)

	u, err := svc.Register(context.Background(), domain.CreateUserRequest{Email: "  Owner@Acme.Test ", Name: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, "owner@acme.test", u.Email)

	_, err = svc.Register(context.Background(), domain.CreateUserRequest{Email: "OWNER@acme.test", Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	_, svc := newTestService(t)

	_, err := svc.Register(context.Background(), domain.CreateUserRequest{Email: "not-an-email", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(context.Background(), domain.CreateUserRequest{Email: "x@acme.test", Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestAuthenticate(t *testing.T) {
	env, svc := newTestService(t)
	u := env.User(t, "member@acme.test")

	got, err := svc.Authenticate(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Authenticate(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Authenticate(context.Background(), env.Node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestGet(t *testing.T) {
	env, svc := newTestService(t)
	u := env.User(t, "member@acme.test")

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
