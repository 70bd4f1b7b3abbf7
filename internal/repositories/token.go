package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/audio-vault/internal/logger"
)

// TokenRevocationRepository remembers logged-out token ids in Redis until
// the tokens would have expired anyway.
type TokenRevocationRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewTokenRevocationRepository creates a new repository instance.
func NewTokenRevocationRepository(client *redis.Client) *TokenRevocationRepository {
	return &TokenRevocationRepository{client: client, now: time.Now}
}

func revokedKey(tokenID string) string {
	return "revoked_token:" + tokenID
}

// Revoke marks the token id as revoked until the given expiry. Tokens that
// have already expired are not stored.
func (r *TokenRevocationRepository) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	key := revokedKey(tokenID)
	err := r.client.Set(ctx, key, "1", ttl).Err()

	logger.Log.Infow("revoke token",
		"key", key,
		"ttl", ttl,
		"error", err,
	)

	return err
}

// IsRevoked reports whether the token id was revoked.
func (r *TokenRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	key := revokedKey(tokenID)
	n, err := r.client.Exists(ctx, key).Result()

	logger.Log.Debugw("check token revocation",
		"key", key,
		"result", n,
		"error", err,
	)

	if err != nil {
		return false, err
	}
	return n > 0, nil
}
