package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dequeueBlockTimeout = time.Second

// RedisTransport stores envelopes in three Redis lists, one per tier, so
// dispatch survives process restarts and can be shared by several workers.
//
// BRPOP checks its keys in argument order, which gives the same high-first
// guarantee as the in-memory transport. The block timeout is kept short so
// context cancellation is observed promptly during shutdown.
type RedisTransport struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

var _ Transport = (*RedisTransport)(nil)

func NewRedisTransport(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisTransport {
	if keyPrefix == "" {
		keyPrefix = "notifyd:queue"
	}
	return &RedisTransport{client: client, keyPrefix: keyPrefix, logger: logger}
}

func (q *RedisTransport) key(tier Tier) string {
	return fmt.Sprintf("%s:%s", q.keyPrefix, tier)
}

func (q *RedisTransport) Enqueue(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := q.client.LPush(ctx, q.key(TierOf(env.Message)), payload).Err(); err != nil {
		return fmt.Errorf("lpush envelope: %w", err)
	}
	return nil
}

func (q *RedisTransport) Dequeue(ctx context.Context) (Envelope, bool) {
	keys := []string{q.key(TierHigh), q.key(TierNormal), q.key(TierLow)}
	for {
		if ctx.Err() != nil {
			return Envelope{}, false
		}
		res, err := q.client.BRPop(ctx, dequeueBlockTimeout, keys...).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return Envelope{}, false
			}
			q.logger.Error("queue dequeue failed", zap.Error(err))
			// Avoid a hot loop when Redis is unreachable.
			select {
			case <-ctx.Done():
				return Envelope{}, false
			case <-time.After(dequeueBlockTimeout):
			}
			continue
		}
		// BRPOP returns [key, value].
		var env Envelope
		if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
			q.logger.Error("dropping undecodable envelope",
				zap.String("key", res[0]),
				zap.Error(err))
			continue
		}
		return env, true
	}
}

func (q *RedisTransport) Depths(ctx context.Context) (high, normal, low int) {
	high = q.depth(ctx, TierHigh)
	normal = q.depth(ctx, TierNormal)
	low = q.depth(ctx, TierLow)
	return high, normal, low
}

func (q *RedisTransport) depth(ctx context.Context, tier Tier) int {
	n, err := q.client.LLen(ctx, q.key(tier)).Result()
	if err != nil {
		q.logger.Warn("queue depth probe failed", zap.String("tier", string(tier)), zap.Error(err))
		return 0
	}
	return int(n)
}
