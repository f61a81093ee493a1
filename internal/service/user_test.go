package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
)

func newUsers(t *testing.T) *Users {
	t.Helper()
	jwt := &auth.JWTer{Secret: []byte("test"), Issuer: "docuisine", TTL: time.Minute}
	return NewUsers(newTestDB(t), nil, fastHash, jwt)
}

func TestUsers_CreateHashesPassword(t *testing.T) {
	users := newUsers(t)
	u, err := users.CreateUser(context.Background(), NewUser{Username: "alice", Password: "s3cret!"})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "s3cret!", u.Password)
	assert.True(t, strings.HasPrefix(u.Password, "$argon2id$"))
	assert.True(t, users.VerifyPassword(u, "s3cret!"))
	assert.False(t, users.VerifyPassword(u, "S3cret!"))
}

func TestUsers_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	_, err := users.CreateUser(ctx, NewUser{Username: "alice", Password: "a"})
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, NewUser{Username: "alice", Password: "b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUsers_DuplicateEmailOnCreate(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	_, err := users.CreateUser(ctx, NewUser{Username: "alice", Password: "a", Email: ptr("cook@example.com")})
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, NewUser{Username: "bob", Password: "b", Email: ptr("cook@example.com")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "email")
	assert.NotEqual(t, `user "bob" already exists`, err.Error())

	_, err = users.CreateUser(ctx, NewUser{Username: "alice", Password: "c"})
	assert.EqualError(t, err, `user "alice" already exists`)
}

func TestUsers_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	u, err := users.CreateUser(ctx, NewUser{Username: "bob", Password: "old"})
	require.NoError(t, err)

	_, err = users.UpdatePassword(ctx, u.ID, "wrong", "new")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))

	_, err = users.UpdatePassword(ctx, 42, "old", "new")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	updated, err := users.UpdatePassword(ctx, u.ID, "old", "new")
	require.NoError(t, err)
	assert.True(t, users.VerifyPassword(updated, "new"))
	assert.False(t, users.VerifyPassword(updated, "old"))
}

func TestUsers_UpdateEmailDuplicate(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	_, err := users.CreateUser(ctx, NewUser{Username: "a", Password: "p", Email: ptr("shared@example.com")})
	require.NoError(t, err)
	b, err := users.CreateUser(ctx, NewUser{Username: "b", Password: "p"})
	require.NoError(t, err)

	_, err = users.UpdateEmail(ctx, b.ID, "shared@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateEmail))
	assert.True(t, errors.Is(err, domain.ErrConflict))

	got, err := users.UpdateEmail(ctx, b.ID, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", *got.Email)

	found, err := users.GetByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)
}

func TestUsers_Authenticate(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	_, err := users.CreateUser(ctx, NewUser{Username: "carol", Password: "pw"})
	require.NoError(t, err)

	u, err := users.Authenticate(ctx, "carol", "pw")
	require.NoError(t, err)
	tok, err := users.IssueToken(u)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	_, err = users.Authenticate(ctx, "carol", "nope")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))
	_, err = users.Authenticate(ctx, "nobody", "pw")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestUsers_CreateFirstUser(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)

	has, err := users.HasUsers(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	root, err := users.CreateFirstUser(ctx, NewUser{Username: "root", Password: "pw", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, root.Role)

	_, err = users.CreateFirstUser(ctx, NewUser{Username: "second", Password: "pw"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestUsers_SetRole(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	u, err := users.CreateUser(ctx, NewUser{Username: "dan", Password: "pw"})
	require.NoError(t, err)

	got, err := users.SetRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	_, err = users.SetRole(ctx, u.ID, domain.Role("owner"))
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestUsers_DeleteWithoutRecipes(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	u, err := users.CreateUser(ctx, NewUser{Username: "eve", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, u.ID))
	_, err = users.GetByUsername(ctx, "eve")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUsers_Search(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	for _, name := range []string{"alice", "alina", "bob"} {
		_, err := users.CreateUser(ctx, NewUser{Username: name, Password: "pw"})
		require.NoError(t, err)
	}

	got, total, err := users.Search(ctx, "ALI", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, got, 2)

	got, total, err = users.Search(ctx, "", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, got, 2)
}
