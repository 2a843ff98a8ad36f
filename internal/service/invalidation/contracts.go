package invalidation

import (
	"context"
	"time"
)

// Cache хранилище рассчитанных слотов
type Cache interface {
	Invalidate(ctx context.Context, staffID int64, date time.Time) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
