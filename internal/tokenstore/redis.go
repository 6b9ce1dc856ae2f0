package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/psikotes-app/go-client/internal/models"
)

// redisStore — хранилище сессии в Redis. Срок хранения обеспечивается
// TTL ключей, так что просроченные записи исчезают сами.
// Применяется в киоск-развёртываниях, где несколько рабочих мест
// делят одну сессию оператора.
type redisStore struct {
	rdb       *redis.Client
	prefix    string
	retention time.Duration
}

// NewRedis создаёт хранилище из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "psikotes:auth:".
func NewRedis(redisURL, prefix string, retention time.Duration) (Store, error) {
	const op = "tokenstore.redis.NewRedis"

	if prefix == "" {
		prefix = "psikotes:auth:"
	}

	if retention <= 0 {
		retention = DefaultRetention
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &redisStore{rdb: rdb, prefix: prefix, retention: retention}, nil
}

func (s *redisStore) key(name string) string { return s.prefix + name }

func (s *redisStore) read(ctx context.Context, name string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	return raw, nil
}

func (s *redisStore) write(ctx context.Context, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, s.key(name), raw, s.retention).Err()
}

func (s *redisStore) Tokens(ctx context.Context) (*models.TokenPair, error) {
	const op = "tokenstore.redis.Tokens"

	raw, err := s.read(ctx, keyTokens)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if raw == nil {
		return nil, nil
	}

	var tp models.TokenPair
	if err := json.Unmarshal(raw, &tp); err != nil {
		return nil, nil
	}

	return &tp, nil
}

func (s *redisStore) SaveTokens(ctx context.Context, tp *models.TokenPair) error {
	const op = "tokenstore.redis.SaveTokens"

	if err := s.write(ctx, keyTokens, tp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *redisStore) User(ctx context.Context) (*models.User, error) {
	const op = "tokenstore.redis.User"

	raw, err := s.read(ctx, keyUser)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if raw == nil {
		return nil, nil
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, nil
	}

	return &u, nil
}

func (s *redisStore) SaveUser(ctx context.Context, u *models.User) error {
	const op = "tokenstore.redis.SaveUser"

	if err := s.write(ctx, keyUser, u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	const op = "tokenstore.redis.Clear"

	if err := s.rdb.Del(ctx, s.key(keyTokens), s.key(keyUser)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает клиент Redis.
func (s *redisStore) Close() error { return s.rdb.Close() }
