package models

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64
	CancellationReason *string
}

// RescheduleBookingRequest запрос на перенос бронирования
type RescheduleBookingRequest struct {
	UserID     int64
	NewStartAt time.Time
}

// Response модели

// BookingServiceResponse услуга в составе бронирования
type BookingServiceResponse struct {
	ID              int64     `json:"id"`
	OfferingID      int64     `json:"offeringId"`
	StaffID         int64     `json:"staffId"`
	StartAt         time.Time `json:"startAt"`
	EndAt           time.Time `json:"endAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Price           string    `json:"price"`
}

// BookingAddonResponse дополнительная позиция
type BookingAddonResponse struct {
	OfferingID int64  `json:"offeringId"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID             int64                       `json:"id"`
	BookingNumber  string                      `json:"bookingNumber"`
	ProviderID     int64                       `json:"providerId"`
	CustomerUserID int64                       `json:"customerUserId"`
	LocationID     *int64                      `json:"locationId,omitempty"`
	LocationType   string                      `json:"locationType"`
	Address        *domain.Address             `json:"address,omitempty"`
	Status         string                      `json:"status"`
	StartAt        time.Time                   `json:"startAt"`
	EndAt          time.Time                   `json:"endAt"`
	Services       []BookingServiceResponse    `json:"services"`
	Addons         []BookingAddonResponse      `json:"addons,omitempty"`
	Participants   []domain.BookingParticipant `json:"participants,omitempty"`

	Subtotal       string `json:"subtotal"`
	TravelFee      string `json:"travelFee"`
	DiscountAmount string `json:"discountAmount"`
	TotalAmount    string `json:"totalAmount"`
	Currency       string `json:"currency"`
	PaymentMethod  string `json:"paymentMethod"`

	PromotionCode *string `json:"promotionCode,omitempty"`
	Notes         *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		BookingNumber:      b.BookingNumber,
		ProviderID:         b.ProviderID,
		CustomerUserID:     b.CustomerUserID,
		LocationID:         b.LocationID,
		LocationType:       string(b.LocationType),
		Address:            b.Address,
		Status:             string(b.Status),
		StartAt:            b.StartAt,
		EndAt:              b.EndAt,
		Services:           make([]BookingServiceResponse, 0, len(b.Services)),
		Participants:       b.Participants,
		Subtotal:           b.Subtotal.StringFixed(2),
		TravelFee:          b.TravelFee.StringFixed(2),
		DiscountAmount:     b.DiscountAmount.StringFixed(2),
		TotalAmount:        b.TotalAmount.StringFixed(2),
		Currency:           b.Currency,
		PaymentMethod:      string(b.PaymentMethod),
		PromotionCode:      b.PromotionCode,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	for _, s := range b.Services {
		resp.Services = append(resp.Services, BookingServiceResponse{
			ID:              s.ID,
			OfferingID:      s.OfferingID,
			StaffID:         s.StaffID,
			StartAt:         s.StartAt,
			EndAt:           s.EndAt,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price.StringFixed(2),
		})
	}
	for _, a := range b.Addons {
		resp.Addons = append(resp.Addons, BookingAddonResponse{
			OfferingID: a.OfferingID,
			Quantity:   a.Quantity,
			Price:      a.Price.StringFixed(2),
		})
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}
