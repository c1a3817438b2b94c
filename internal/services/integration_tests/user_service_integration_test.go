package integration_tests

import (
	"context"
	"testing"
	"time"

	"invoicehub/internal/auth"
	"invoicehub/internal/services"
	"invoicehub/internal/storage/postgres"
	"invoicehub/internal/transport/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Integration_RegisterLoginLogout(t *testing.T) {
	pool, rdb := getTestClients(t)
	ctx := context.Background()
	cleanupTables(ctx, t, pool)

	var revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	if rdb != nil {
		revocations = auth.NewRedisRevocationStore(rdb)
	}
	tokens := auth.NewTokenManager("integration-secret", time.Hour, "invoicehub-test")
	svc := services.NewUserService(postgres.NewUserRepo(pool), tokens, revocations)

	user, err := svc.Register(ctx, &dto.RegisterRequest{Email: "Someone@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", user.Email)
	assert.False(t, user.Onboarded())

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "someone@example.com", Password: "password456"})
	assert.ErrorIs(t, err, services.ErrConflict)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "someone@example.com", Password: "password123"})
	require.NoError(t, err)

	onboarded, err := svc.Onboard(ctx, &dto.OnboardRequest{FirstName: "Some", LastName: "One", Address: "Hargeisa", UserId: user.ID})
	require.NoError(t, err)
	assert.True(t, onboarded.Onboarded())

	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, &dto.LogoutRequest{TokenID: claims.TokenID, ExpiresAt: claims.ExpiresAt}))

	revoked, err := revocations.IsRevoked(ctx, claims.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
