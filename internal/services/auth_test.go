package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/speechpal-backend/internal/repos"
	"github.com/yungbote/speechpal-backend/internal/requestdata"
	"github.com/yungbote/speechpal-backend/internal/types"
)

func newAuthHarness(t *testing.T) AuthService {
	t.Helper()
	gormDB := newTestDB(t)
	log := newTestLogger(t)
	return NewAuthService(
		gormDB,
		log,
		repos.NewUserRepo(gormDB, log),
		repos.NewUserTokenRepo(gormDB, log),
		repos.NewUserProfileRepo(gormDB, log),
		"test-secret",
		time.Hour,
		24*time.Hour,
	)
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc := newAuthHarness(t)

	user := &types.User{
		Email:     "  Parent@Example.COM ",
		FirstName: "Sam",
		Password:  "hunter22",
	}
	accessToken, refreshToken, err := svc.RegisterUser(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	require.Equal(t, "parent@example.com", user.Email)
	require.NotEqual(t, "hunter22", user.Password, "password stored hashed")

	ctx, err := svc.SetContextFromToken(context.Background(), accessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, requestdata.UserID(ctx))

	// Login replaces the prior session token.
	at2, rt2, err := svc.LoginUser(context.Background(), "parent@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, at2)
	require.NotEqual(t, refreshToken, rt2)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthHarness(t)

	_, _, err := svc.RegisterUser(context.Background(), &types.User{Email: "kid@example.com", FirstName: "A", Password: "pw"})
	require.NoError(t, err)
	_, _, err = svc.RegisterUser(context.Background(), &types.User{Email: "kid@example.com", FirstName: "B", Password: "pw"})
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthHarness(t)
	_, _, err := svc.RegisterUser(context.Background(), &types.User{Email: "kid@example.com", FirstName: "A", Password: "pw"})
	require.NoError(t, err)

	_, _, err = svc.LoginUser(context.Background(), "kid@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.LoginUser(context.Background(), "nobody@example.com", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc := newAuthHarness(t)
	_, refreshToken, err := svc.RegisterUser(context.Background(), &types.User{Email: "kid@example.com", FirstName: "A", Password: "pw"})
	require.NoError(t, err)

	at2, rt2, err := svc.RefreshUser(context.Background(), refreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, at2)
	require.NotEqual(t, refreshToken, rt2)

	// The old refresh token is gone after rotation.
	_, _, err = svc.RefreshUser(context.Background(), refreshToken)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	svc := newAuthHarness(t)
	_, err := svc.SetContextFromToken(context.Background(), "not-a-jwt")
	require.Error(t, err)
	_, err = svc.SetContextFromToken(context.Background(), "")
	require.Error(t, err)
}
