package mfa

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	challengeKeyPrefix = "mfa:challenge:"
	trustKeyPrefix     = "mfa:trust:"
)

// redisStore implements Store on Redis with native key TTLs.
type redisStore struct {
	rdb *goredis.Client
}

func NewRedisStore(rdb *goredis.Client) Store {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) SaveChallenge(ctx context.Context, ch Challenge, ttl time.Duration) error {
	raw, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, challengeKeyPrefix+ch.ID, raw, ttl).Err()
}

func (s *redisStore) GetChallenge(ctx context.Context, id string) (*Challenge, error) {
	raw, err := s.rdb.Get(ctx, challengeKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	var ch Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *redisStore) DeleteChallenge(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, challengeKeyPrefix+id).Err()
}

func (s *redisStore) TrustDevice(ctx context.Context, userID, deviceID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, trustKeyPrefix+userID+":"+deviceID, "1", ttl).Err()
}

func (s *redisStore) IsTrusted(ctx context.Context, userID, deviceID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, trustKeyPrefix+userID+":"+deviceID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
