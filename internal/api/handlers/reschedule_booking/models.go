package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/bookings/models"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewStartAt string `json:"newStartAt"` // RFC 3339
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *RescheduleBookingRequest) ToServiceRequest(userID int64) (*models.RescheduleBookingRequest, error) {
	newStartAt, err := time.Parse(time.RFC3339, r.NewStartAt)
	if err != nil {
		return nil, err
	}
	return &models.RescheduleBookingRequest{
		UserID:     userID,
		NewStartAt: newStartAt,
	}, nil
}
