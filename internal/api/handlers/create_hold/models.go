package create_hold

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	createHold "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_hold"
)

var errMissingDateTime = errors.New("selectedDateTime is required")

// ServiceSelectionRequest выбранная услуга и исполнитель
type ServiceSelectionRequest struct {
	OfferingID int64 `json:"offeringId"`
	StaffID    int64 `json:"staffId"`
}

// CreateHoldRequest HTTP request model
type CreateHoldRequest struct {
	ProviderID       int64                     `json:"providerId"`
	Services         []ServiceSelectionRequest `json:"services"`
	SelectedDateTime string                    `json:"selectedDateTime"` // RFC 3339
	LocationType     string                    `json:"locationType"`
	LocationID       *int64                    `json:"locationId,omitempty"`
	Address          *domain.Address           `json:"address,omitempty"`
	ResourceIDs      []int64                   `json:"resourceIds,omitempty"`
	GuestFingerprint *string                   `json:"guestFingerprint,omitempty"`
}

// HoldServiceResponse услуга в составе удержания
type HoldServiceResponse struct {
	OfferingID      int64  `json:"offeringId"`
	StaffID         int64  `json:"staffId"`
	DurationMinutes int    `json:"durationMinutes"`
	Price           string `json:"price"`
	StartAt         string `json:"startAt"`
	EndAt           string `json:"endAt"`
}

// HoldResponse HTTP response model
type HoldResponse struct {
	HoldID    string                `json:"holdId"`
	ExpiresAt string                `json:"expiresAt"`
	StartAt   string                `json:"startAt"`
	EndAt     string                `json:"endAt"`
	Services  []HoldServiceResponse `json:"services"`
	Subtotal  string                `json:"subtotal"`
	TravelFee string                `json:"travelFee"`
	Currency  string                `json:"currency"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateHoldRequest) ToUseCaseRequest(userID *int64) (*createHold.Request, error) {
	if r.SelectedDateTime == "" {
		return nil, errMissingDateTime
	}
	selected, err := time.Parse(time.RFC3339, r.SelectedDateTime)
	if err != nil {
		return nil, err
	}

	services := make([]createHold.ServiceSelection, 0, len(r.Services))
	for _, s := range r.Services {
		services = append(services, createHold.ServiceSelection{OfferingID: s.OfferingID, StaffID: s.StaffID})
	}

	locationType := domain.LocationType(r.LocationType)
	if locationType == "" {
		locationType = domain.LocationAtSalon
	}

	return &createHold.Request{
		ProviderID:       r.ProviderID,
		Services:         services,
		SelectedDateTime: selected,
		LocationType:     locationType,
		LocationID:       r.LocationID,
		Address:          r.Address,
		ResourceIDs:      r.ResourceIDs,
		UserID:           userID,
		GuestFingerprint: r.GuestFingerprint,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createHold.Response) *HoldResponse {
	services := make([]HoldServiceResponse, 0, len(resp.Services))
	for _, s := range resp.Services {
		services = append(services, HoldServiceResponse{
			OfferingID:      s.OfferingID,
			StaffID:         s.StaffID,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price.StringFixed(2),
			StartAt:         s.ScheduledStartAt.Format(time.RFC3339),
			EndAt:           s.ScheduledEndAt.Format(time.RFC3339),
		})
	}
	return &HoldResponse{
		HoldID:    resp.HoldID.String(),
		ExpiresAt: resp.ExpiresAt.Format(time.RFC3339),
		StartAt:   resp.StartAt.Format(time.RFC3339),
		EndAt:     resp.EndAt.Format(time.RFC3339),
		Services:  services,
		Subtotal:  resp.Subtotal.StringFixed(2),
		TravelFee: resp.TravelFee.StringFixed(2),
		Currency:  resp.Currency,
	}
}
