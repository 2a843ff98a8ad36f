package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// StaffRepository интерфейс репозитория сотрудников
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
}

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	// GetConfigWithHierarchy получает конфигурацию с учетом иерархии приоритетов
	GetConfigWithHierarchy(ctx context.Context, providerID int64, locationID, staffID *int64) (*domain.SchedulingConfig, error)
}

// OfferingRepository интерфейс репозитория услуг
type OfferingRepository interface {
	GetByIDs(ctx context.Context, providerID int64, ids []int64) ([]*domain.Offering, error)
}

// ConstraintLoader загружает ограничения доступности сотрудника на дату
type ConstraintLoader interface {
	Load(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityConstraints, error)
}

// SlotCache кэш рассчитанных слотов
type SlotCache interface {
	Get(ctx context.Context, staffID int64, date time.Time, req domain.SlotRequest) ([]domain.Slot, bool, error)
	Set(ctx context.Context, staffID int64, date time.Time, req domain.SlotRequest, slots []domain.Slot) error
}

// Metrics счетчики попаданий в кэш
type Metrics interface {
	IncAvailabilityCache(result string)
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
