package create_hold

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// HoldRepository интерфейс репозитория удержаний
type HoldRepository interface {
	Create(ctx context.Context, hold *domain.BookingHold) error
}

// OfferingRepository интерфейс репозитория услуг
type OfferingRepository interface {
	GetByIDs(ctx context.Context, providerID int64, ids []int64) ([]*domain.Offering, error)
}

// StaffRepository интерфейс репозитория сотрудников
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
}

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, providerID int64, locationID, staffID *int64) (*domain.SchedulingConfig, error)
}

// ConstraintLoader загружает ограничения на локальный день сотрудника
type ConstraintLoader interface {
	LoadAt(ctx context.Context, staffID int64, at time.Time) (*domain.AvailabilityConstraints, error)
}

// Metrics счетчики удержаний
type Metrics interface {
	IncHoldsCreated()
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
