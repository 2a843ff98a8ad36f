package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// Cache кэш рассчитанных слотов.
// Один hash на пару (сотрудник, дата): availability:{staff}:{date}. Поля hash - параметры запроса.
// Инвалидация удаляет весь hash, поэтому любое изменение расписания сотрудника на дату
// сбрасывает все варианты расчета за один DEL.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache создает кэш. При client == nil все операции ничего не делают.
func NewCache(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

type cachedSlot struct {
	Time      string `json:"t"`
	Available bool   `json:"a"`
}

// Key ключ hash для сотрудника и даты
func (c *Cache) Key(staffID int64, date time.Time) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, staffID, date.Format(domain.DateFormat))
}

func field(req domain.SlotRequest) string {
	return fmt.Sprintf("d%d:i%d:t%d", req.DurationMinutes, req.SlotIntervalMinutes, req.TravelBufferMinutes)
}

// Get возвращает слоты из кэша. Второе значение false, если записи нет.
func (c *Cache) Get(ctx context.Context, staffID int64, date time.Time, req domain.SlotRequest) ([]domain.Slot, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}

	raw, err := c.client.HGet(ctx, c.Key(staffID, date), field(req)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: Get: %v", ErrCache, err)
	}

	var cached []cachedSlot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	slots := make([]domain.Slot, 0, len(cached))
	for _, s := range cached {
		slots = append(slots, domain.Slot{Time: types.TimeString(s.Time), Available: s.Available})
	}
	return slots, true, nil
}

// Set сохраняет слоты. TTL ставится только при создании hash,
// новые варианты расчета не продлевают жизнь старых
func (c *Cache) Set(ctx context.Context, staffID int64, date time.Time, req domain.SlotRequest, slots []domain.Slot) error {
	if c == nil || c.client == nil {
		return nil
	}

	cached := make([]cachedSlot, 0, len(slots))
	for _, s := range slots {
		cached = append(cached, cachedSlot{Time: string(s.Time), Available: s.Available})
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("%w: Set - encode: %v", ErrCache, err)
	}

	key := c.Key(staffID, date)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field(req), raw)
	pipe.ExpireNX(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: Set: %v", ErrCache, err)
	}
	return nil
}

// Invalidate удаляет все закэшированные расчеты сотрудника на дату
func (c *Cache) Invalidate(ctx context.Context, staffID int64, date time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, c.Key(staffID, date)).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate: %v", ErrCache, err)
	}
	return nil
}
