package expire_holds

import (
	"context"
	"time"
)

// HoldRepository интерфейс репозитория удержаний
type HoldRepository interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// Metrics счетчик истекших удержаний
type Metrics interface {
	AddHoldsExpired(n int64)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
