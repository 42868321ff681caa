package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iqmalr/test-bursa-efek/internal/config"
)

// TokenStore is a redis-backed revocation list for issued tokens. Logout
// and refresh rotation write the token's jti here with a TTL covering the
// rest of its refresh window; validation rejects any jti still present.
type TokenStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewTokenStore creates a new token store instance
func NewTokenStore(cfg *config.Config, logger *slog.Logger) (*TokenStore, error) {
	logger.Info("🔌 [Redis] Connecting to Redis...",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
		"db", cfg.RedisDatabase,
	)

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDatabase),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [Redis] Redis connection established")

	return &TokenStore{
		client: client,
		logger: logger,
	}, nil
}

// NewTokenStoreForTesting creates a TokenStore with a provided redis.Client (for testing)
func NewTokenStoreForTesting(client *redis.Client, logger *slog.Logger) *TokenStore {
	return &TokenStore{
		client: client,
		logger: logger,
	}
}

// Close closes the Redis connection
func (s *TokenStore) Close() error {
	return s.client.Close()
}

// revokedKey generates the Redis key for a revoked token id
func revokedKey(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

// Revoke marks a token id unusable for ttl. A non-positive ttl means the
// token is already past its refresh window and there is nothing to store.
func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		s.logger.Error("❌ [Redis] Failed to revoke token", "jti", jti, "error", err)
		return err
	}

	s.logger.Debug("🚫 [Redis] Token revoked", "jti", jti, "ttl", ttl)
	return nil
}

// IsRevoked reports whether a token id is on the revocation list
func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := s.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		s.logger.Error("❌ [Redis] Failed to check token revocation", "jti", jti, "error", err)
		return false, err
	}
	return exists > 0, nil
}
