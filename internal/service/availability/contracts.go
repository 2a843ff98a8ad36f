package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// StaffRepository интерфейс репозитория сотрудников
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	// GetOperatingHours возвращает строки часов работы всех уровней иерархии для дня недели
	GetOperatingHours(ctx context.Context, providerID int64, weekday time.Weekday) ([]*domain.OperatingHours, error)
	// GetBlockedTimes возвращает блокировки сотрудника и всего провайдера, пересекающие [from, to)
	GetBlockedTimes(ctx context.Context, providerID, staffID int64, from, to time.Time) ([]*domain.BlockedTime, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetStaffServices возвращает услуги неотмененных бронирований сотрудников, пересекающие [from, to)
	GetStaffServices(ctx context.Context, staffIDs []int64, from, to time.Time) ([]*domain.BookingService, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
