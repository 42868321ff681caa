package database

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTokenStore(t *testing.T) (*miniredis.Miniredis, *TokenStore) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewTokenStoreForTesting(client, logger)

	t.Cleanup(func() {
		store.Close()
		mr.Close()
	})

	return mr, store
}

func TestTokenStore_RevokeAndIsRevoked(t *testing.T) {
	_, store := setupTokenStore(t)
	ctx := context.Background()

	jti := uuid.NewString()

	revoked, err := store.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, jti, time.Hour))

	revoked, err = store.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestTokenStore_RevocationExpires(t *testing.T) {
	mr, store := setupTokenStore(t)
	ctx := context.Background()

	jti := uuid.NewString()
	require.NoError(t, store.Revoke(ctx, jti, time.Minute))

	// After the TTL the entry disappears; the token is past its refresh
	// window by then and can never validate again anyway
	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStore_RevokeWithElapsedTTL(t *testing.T) {
	_, store := setupTokenStore(t)
	ctx := context.Background()

	jti := uuid.NewString()

	// Nothing to store for a token already past its window
	require.NoError(t, store.Revoke(ctx, jti, -time.Minute))

	revoked, err := store.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)
}
