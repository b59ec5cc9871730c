package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores the token of one device under "<prefix>:<device>:token".
type Redis struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedis returns a Redis storage for device. A zero ttl keeps the token
// until it is cleared.
func NewRedis(client redis.UniversalClient, prefix, device string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    prefix + ":" + device + ":" + Key,
		ttl:    ttl,
	}
}

func (s *Redis) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

func (s *Redis) Save(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return s.client.Set(ctx, s.key, token, s.ttl).Err()
}

func (s *Redis) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
