package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still carries our token, so an
// expired lock re-taken by another submission is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmitGuard is a registration.Guard shared by every instance behind the
// same redis. Locks expire after ttl in case a holder dies mid-submission.
type SubmitGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSubmitGuard(rdb *redis.Client, ttl time.Duration) *SubmitGuard {
	return &SubmitGuard{rdb: rdb, ttl: ttl}
}

func (g *SubmitGuard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := g.rdb.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	return func() {
		// The request context may already be done by now.
		_ = releaseScript.Run(context.Background(), g.rdb, []string{key}, token).Err()
	}, true, nil
}
