package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/TechharaInc/Tanaka/internal/counter/domain"
	redis "github.com/redis/go-redis/v9"
)

type store struct {
	client redis.Cmdable
}

// New returns a Redis-backed counter store. Single commands (ZINCRBY, ZREM,
// HSET, HDEL) give the per-operation atomicity concurrent handlers rely on.
func New(client *redis.Client) domain.Store {
	return &store{client: client}
}

func (s *store) Incr(ctx context.Context, guildID, name string) error {
	if err := validate(guildID, name); err != nil {
		return err
	}
	if err := s.client.ZIncrBy(ctx, domain.RankKey(guildID), 1, name).Err(); err != nil {
		return wrap("incr", err)
	}
	return nil
}

func (s *store) Forget(ctx context.Context, guildID, name string) error {
	if err := validate(guildID, name); err != nil {
		return err
	}
	if err := s.client.ZRem(ctx, domain.RankKey(guildID), name).Err(); err != nil {
		return wrap("forget", err)
	}
	return nil
}

func (s *store) Top(ctx context.Context, guildID string, k int) ([]domain.Score, error) {
	if guildID == "" {
		return nil, fmt.Errorf("%w: %w: empty guild", domain.ErrCounter, domain.ErrInvalidKey)
	}
	if k <= 0 {
		k = domain.DefaultTop
	}

	members, err := s.client.ZRevRangeWithScores(ctx, domain.RankKey(guildID), 0, int64(k-1)).Result()
	if err != nil {
		return nil, wrap("top", err)
	}

	scores := make([]domain.Score, 0, len(members))
	for _, m := range members {
		name, ok := m.Member.(string)
		if !ok {
			name = fmt.Sprint(m.Member)
		}
		scores = append(scores, domain.Score{Name: name, Score: int64(math.Round(m.Score))})
	}
	return scores, nil
}

func (s *store) AliasSet(ctx context.Context, guildID, src, dst string) error {
	if err := validate(guildID, src); err != nil {
		return err
	}
	if dst == "" {
		return fmt.Errorf("%w: %w: empty alias target", domain.ErrCounter, domain.ErrInvalidKey)
	}
	if err := s.client.HSet(ctx, domain.AliasKey(guildID), src, dst).Err(); err != nil {
		return wrap("alias_set", err)
	}
	return nil
}

func (s *store) AliasGet(ctx context.Context, guildID, src string) (string, bool, error) {
	if err := validate(guildID, src); err != nil {
		return "", false, err
	}
	dst, err := s.client.HGet(ctx, domain.AliasKey(guildID), src).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("alias_get", err)
	}
	return dst, true, nil
}

func (s *store) AliasDelete(ctx context.Context, guildID, src string) error {
	if err := validate(guildID, src); err != nil {
		return err
	}
	if err := s.client.HDel(ctx, domain.AliasKey(guildID), src).Err(); err != nil {
		return wrap("alias_delete", err)
	}
	return nil
}

func validate(guildID, name string) error {
	if guildID == "" || name == "" {
		return fmt.Errorf("%w: %w: empty guild or name", domain.ErrCounter, domain.ErrInvalidKey)
	}
	return nil
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrCounter, op, err)
}
