package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-live-service/internal/game"
	"trivia-live-service/internal/infra/memory"
)

// Registry is a Redis-aware game.SessionRegistry.
// Notes:
//   - Sessions themselves stay in the embedded in-memory registry so the
//     per-session locking and reverse index keep working unchanged.
//   - Redis marks session liveness (and could be extended to route
//     cross-instance pub/sub for scale-out behind a shared store).
type Registry struct {
	*memory.Registry
	client *redis.Client
	ttl    time.Duration
}

func NewRegistry(client *redis.Client, ttl time.Duration) *Registry {
	return &Registry{
		Registry: memory.NewRegistry(),
		client:   client,
		ttl:      ttl,
	}
}

func (r *Registry) Register(s *game.LiveSession) error {
	if err := r.Registry.Register(s); err != nil {
		return err
	}
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(s.Code()), "1", r.ttl).Err()
	return nil
}

func (r *Registry) Remove(code string) {
	r.Registry.Remove(code)
	_ = r.client.Del(context.Background(), r.key(code)).Err()
}

func (r *Registry) key(code string) string {
	return "game:live:" + code
}
