package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/carmarket/internal/auth"
	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/datamodels/user"
	"github.com/example/carmarket/internal/repository/mysql"
	"github.com/example/carmarket/internal/testutil"
)

func newUserService(t *testing.T) (*UserService, *config.JWTConfig) {
	jwtCfg := &config.JWTConfig{Secret: "test"}
	client, _ := testutil.NewRedis(t)
	svc := NewUserService(mysql.NewUserRepository(testutil.NewDB(t)), jwtCfg, auth.NewRevocations(client))
	svc.cost = bcrypt.MinCost
	return svc, jwtCfg
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc, jwtCfg := newUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "pw123", "")
	require.NoError(t, err)
	assert.Equal(t, user.RoleBuyer, u.Role)
	assert.NotEqual(t, "pw123", u.Password)

	tok, got, err := svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := auth.ParseToken(jwtCfg, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, user.RoleBuyer, claims.Role)

	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody", "pw123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "a@b.c", "pw", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register(ctx, "bob", "b@b.c", "pw", "admin")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, "bob", "b@b.c", "pw", user.RoleDealer)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "other@b.c", "pw", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_DealerProfile(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	buyer, err := svc.Register(ctx, "buyer", "b@x.io", "pw", user.RoleBuyer)
	require.NoError(t, err)
	dealer, err := svc.Register(ctx, "dealer", "d@x.io", "pw", user.RoleDealer)
	require.NoError(t, err)

	_, err = svc.UpdateDealerProfile(ctx, buyer.ID, "Nope", "1")
	assert.ErrorIs(t, err, ErrForbidden)

	empty, err := svc.DealerProfile(ctx, dealer.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.CompanyName)

	_, err = svc.UpdateDealerProfile(ctx, dealer.ID, " Super Cars ", "+82 10")
	require.NoError(t, err)
	p, err := svc.DealerProfile(ctx, dealer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Super Cars", p.CompanyName)

	_, err = svc.UpdateDealerProfile(ctx, 999, "x", "y")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Logout(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol", "carol@example.com", "pw", "")
	require.NoError(t, err)
	tok, _, err := svc.Login(ctx, "carol", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tok))
	revoked, err := svc.revoked.IsRevoked(ctx, tok)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.NoError(t, svc.Logout(ctx, ""))
	assert.NoError(t, svc.Logout(ctx, "garbage"))
}
