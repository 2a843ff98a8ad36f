package consume_hold

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	consumeHold "github.com/m04kA/SMC-SalonBookingService/internal/usecase/consume_hold"
)

// AddonRequest дополнительная позиция
type AddonRequest struct {
	OfferingID int64 `json:"offeringId"`
	Quantity   int   `json:"quantity"`
}

// ConsumeHoldRequest HTTP request model
type ConsumeHoldRequest struct {
	Fingerprint       *string                     `json:"guestFingerprint,omitempty"`
	ClientInfo        *domain.ClientInfo          `json:"clientInfo,omitempty"`
	PaymentMethod     string                      `json:"paymentMethod,omitempty"`
	Addons            []AddonRequest              `json:"addons,omitempty"`
	PromotionCode     *string                     `json:"promotionCode,omitempty"`
	Participants      []domain.BookingParticipant `json:"participants,omitempty"`
	CustomFieldValues []domain.CustomFieldValue   `json:"customFieldValues,omitempty"`
	FormResponses     []domain.FormResponse       `json:"formResponses,omitempty"`
	Notes             *string                     `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID     int64   `json:"bookingId"`
	BookingNumber string  `json:"bookingNumber"`
	Status        string  `json:"status"`
	TotalAmount   string  `json:"totalAmount"`
	Currency      string  `json:"currency"`
	PaymentURL    *string `json:"paymentUrl,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ConsumeHoldRequest) ToUseCaseRequest(holdID uuid.UUID, userID int64) *consumeHold.Request {
	addons := make([]consumeHold.AddonSelection, 0, len(r.Addons))
	for _, a := range r.Addons {
		addons = append(addons, consumeHold.AddonSelection{OfferingID: a.OfferingID, Quantity: a.Quantity})
	}

	return &consumeHold.Request{
		HoldID:            holdID,
		UserID:            userID,
		Fingerprint:       r.Fingerprint,
		ClientInfo:        r.ClientInfo,
		PaymentMethod:     domain.PaymentMethod(r.PaymentMethod),
		Addons:            addons,
		PromotionCode:     r.PromotionCode,
		Participants:      r.Participants,
		CustomFieldValues: r.CustomFieldValues,
		FormResponses:     r.FormResponses,
		Notes:             r.Notes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *consumeHold.Response) *BookingResponse {
	return &BookingResponse{
		BookingID:     resp.BookingID,
		BookingNumber: resp.BookingNumber,
		Status:        string(resp.Status),
		TotalAmount:   resp.TotalAmount.StringFixed(2),
		Currency:      resp.Currency,
		PaymentURL:    resp.PaymentURL,
	}
}
