package config

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// ConfigRepository интерфейс репозитория конфигурации расписания
type ConfigRepository interface {
	GetByLevel(ctx context.Context, providerID int64, locationID, staffID *int64) (*domain.SchedulingConfig, error)
	GetConfigWithHierarchy(ctx context.Context, providerID int64, locationID, staffID *int64) (*domain.SchedulingConfig, error)
	GetAllByProvider(ctx context.Context, providerID int64) ([]*domain.SchedulingConfig, error)
	Upsert(ctx context.Context, config *domain.SchedulingConfig) (*domain.SchedulingConfig, error)
}

// StaffRepository интерфейс репозитория сотрудников
type StaffRepository interface {
	GetByUserAndProvider(ctx context.Context, userID, providerID int64) (*domain.Staff, error)
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
