package create_hold

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// ServiceSelection услуга и исполнитель, выбранные клиентом
type ServiceSelection struct {
	OfferingID int64
	StaffID    int64
}

// Request модель запроса на создание удержания
type Request struct {
	ProviderID       int64
	Services         []ServiceSelection // Выполняются подряд в указанном порядке
	SelectedDateTime time.Time
	LocationType     domain.LocationType
	LocationID       *int64
	Address          *domain.Address
	ResourceIDs      []int64
	UserID           *int64  // nil для гостя
	GuestFingerprint *string // Сохраняется только хеш
}

// Settings параметры удержаний из конфигурации
type Settings struct {
	TTL       time.Duration
	TravelFee decimal.Decimal
	Currency  string // валюта по умолчанию, если у услуги она не задана
}

// Response модель ответа с созданным удержанием
type Response struct {
	HoldID    uuid.UUID
	ExpiresAt time.Time
	StartAt   time.Time
	EndAt     time.Time
	Services  []domain.HoldService
	Subtotal  decimal.Decimal
	TravelFee decimal.Decimal
	Currency  string
}
