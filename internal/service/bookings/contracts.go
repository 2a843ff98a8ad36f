package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetStaffServices(ctx context.Context, staffIDs []int64, from, to time.Time) ([]*domain.BookingService, error)
	Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason *string, at time.Time) error
	Reschedule(ctx context.Context, booking *domain.Booking, at time.Time) error
}

// StaffRepository интерфейс репозитория сотрудников
type StaffRepository interface {
	GetByUserAndProvider(ctx context.Context, userID, providerID int64) (*domain.Staff, error)
}

// OutboxRepository хранилище исходящих событий
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.Event) error
}

// Invalidator сброс кэша доступности
type Invalidator interface {
	InvalidateBooking(booking *domain.Booking)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
