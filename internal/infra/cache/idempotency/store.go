package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idemp:"

var (
	// ErrStore возвращается при ошибке обращения к Redis
	ErrStore = errors.New("idempotency.store: redis error")
)

// Response сохраненный ответ на запрос с ключом идемпотентности
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store хранилище ответов по ключу идемпотентности
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore создает хранилище. При client == nil повторы не распознаются.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Get возвращает сохраненный ответ или nil, если ключ не встречался
func (s *Store) Get(ctx context.Context, key string) (*Response, error) {
	if s == nil || s.client == nil {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get: %v", ErrStore, err)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: Get - decode: %v", ErrStore, err)
	}
	return &resp, nil
}

// Save сохраняет ответ, если по ключу еще ничего не сохранено
func (s *Store) Save(ctx context.Context, key string, resp Response) error {
	if s == nil || s.client == nil {
		return nil
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("%w: Save - encode: %v", ErrStore, err)
	}
	if err := s.client.SetNX(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Save: %v", ErrStore, err)
	}
	return nil
}
