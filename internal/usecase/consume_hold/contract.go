package consume_hold

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_booking"
)

// HoldRepository интерфейс репозитория удержаний
type HoldRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingHold, error)
	// MarkConsumed атомарно переводит активное непросроченное удержание в consumed.
	// false означает, что удержание уже погашено или истекло.
	MarkConsumed(ctx context.Context, id uuid.UUID, userID, bookingID int64, now time.Time) (bool, error)
}

// BookingCreator создает бронирование внутри текущей транзакции
type BookingCreator interface {
	Execute(ctx context.Context, req *create_booking.Request) (*create_booking.Response, error)
}

// BookingRepository дополнительные данные бронирования
type BookingRepository interface {
	AttachCustomFields(ctx context.Context, bookingID int64, values []domain.CustomFieldValue) error
	AttachFormResponses(ctx context.Context, bookingID int64, responses []domain.FormResponse) error
}

// OfferingRepository интерфейс репозитория услуг
type OfferingRepository interface {
	GetByIDs(ctx context.Context, providerID int64, ids []int64) ([]*domain.Offering, error)
}

// StaffRepository интерфейс репозитория сотрудников
type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
}

// OutboxRepository запись доменных событий
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.Event) error
}

// Invalidator сброс кэша слотов
type Invalidator interface {
	InvalidateBooking(b *domain.Booking)
}

// PaymentGateway выдача ссылки на оплату
type PaymentGateway interface {
	InitializeCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (string, error)
}

// Metrics счетчики погашений
type Metrics interface {
	IncHoldsConsumed()
	IncHoldConsumeRejected(reason string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
