package dedupe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "seminar:registration:"

// DefaultClaimTTL bounds how long a claim outlives a request that never reached the store.
// The store check still runs after every successful claim, so claims only need to cover
// concurrent submissions.
const DefaultClaimTTL = 10 * time.Minute

// RedisGuard claims lower-cased emails with SET NX so only one concurrent submission per
// email reaches the store. A non-positive TTL uses DefaultClaimTTL.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis client connected", zap.String("addr", addr))
	return rdb, nil
}

func NewRedisGuard(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &RedisGuard{client: client, ttl: ttl, logger: logger}
}

func key(email string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Claim reports true when this call is the first to claim the email.
func (g *RedisGuard) Claim(ctx context.Context, email string) (bool, error) {
	ok, err := g.client.SetNX(ctx, key(email), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim email: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, email string) error {
	if err := g.client.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("release email: %w", err)
	}
	g.logger.Debug("email claim released", zap.String("email", email))
	return nil
}

func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}
