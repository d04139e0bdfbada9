package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "vouch/pkg/domain"
)

// ValidityCache caches IsValid answers in Redis with a short TTL so public
// verification traffic does not hammer the ledger. Cache failures are never
// surfaced: a broken cache degrades to querying the inner client directly.
// All other operations pass through unchanged.
type ValidityCache struct {
	Client

	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewValidityCache(inner Client, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *ValidityCache {
	return &ValidityCache{
		Client: inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *ValidityCache) IsValid(ctx context.Context, credentialID id.CredentialID) (bool, error) {
	key := validityKey(credentialID)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case err != redis.Nil:
		c.logger.WarnContext(ctx, "validity cache read failed",
			slog.String("credential_id", string(credentialID)),
			slog.String("error", err.Error()))
	}

	valid, err := c.Client.IsValid(ctx, credentialID)
	if err != nil {
		return false, err
	}

	value := "0"
	if valid {
		value = "1"
	}
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "validity cache write failed",
			slog.String("credential_id", string(credentialID)),
			slog.String("error", err.Error()))
	}
	return valid, nil
}

// Invalidate drops the cached validity for a credential. Called after a
// revocation so verification reflects the new state immediately rather than
// after TTL expiry.
func (c *ValidityCache) Invalidate(ctx context.Context, credentialID id.CredentialID) {
	if err := c.rdb.Del(ctx, validityKey(credentialID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "validity cache invalidation failed",
			slog.String("credential_id", string(credentialID)),
			slog.String("error", err.Error()))
	}
}

func validityKey(credentialID id.CredentialID) string {
	return "vouch:validity:" + string(credentialID)
}
