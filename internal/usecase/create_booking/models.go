package create_booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модель запроса на создание бронирования из удержания
type Request struct {
	HoldID         uuid.UUID
	ProviderID     int64
	CustomerUserID int64
	LocationID     *int64
	LocationType   domain.LocationType
	Address        *domain.Address
	Timezone       string

	Services     []domain.BookingService // StaffID, время, цена и буферы уже заполнены
	Addons       []domain.BookingAddon
	Participants []domain.BookingParticipant

	TravelFee     decimal.Decimal
	Currency      string
	PaymentMethod domain.PaymentMethod
	PromotionCode *string
	ClientInfo    *domain.ClientInfo
	Notes         *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
}

// StartAt начало первой услуги
func (r *Request) StartAt() time.Time {
	start := r.Services[0].StartAt
	for _, s := range r.Services[1:] {
		if s.StartAt.Before(start) {
			start = s.StartAt
		}
	}
	return start
}

// EndAt окончание последней услуги
func (r *Request) EndAt() time.Time {
	end := r.Services[0].EndAt
	for _, s := range r.Services[1:] {
		if s.EndAt.After(end) {
			end = s.EndAt
		}
	}
	return end
}
