package consume_hold

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// AddonSelection дополнительная позиция к бронированию
type AddonSelection struct {
	OfferingID int64
	Quantity   int
}

// Request модель запроса на погашение удержания
type Request struct {
	HoldID            uuid.UUID
	UserID            int64
	Fingerprint       *string
	ClientInfo        *domain.ClientInfo
	PaymentMethod     domain.PaymentMethod // по умолчанию pay_at_venue
	Addons            []AddonSelection
	PromotionCode     *string
	Participants      []domain.BookingParticipant
	CustomFieldValues []domain.CustomFieldValue
	FormResponses     []domain.FormResponse
	Notes             *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	BookingID     int64
	BookingNumber string
	Status        domain.BookingStatus
	TotalAmount   decimal.Decimal
	Currency      string
	PaymentURL    *string
}
