package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.CustomerUserID <= 0 {
		return fmt.Errorf("%w: customerUserID must be positive", ErrInvalidInput)
	}

	if len(req.Services) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}

	if len(req.Services) > domain.MaxServicesPerBooking {
		return fmt.Errorf("%w: at most %d services", ErrInvalidInput, domain.MaxServicesPerBooking)
	}

	for i, s := range req.Services {
		if s.StaffID <= 0 || s.OfferingID <= 0 {
			return fmt.Errorf("%w: service %d: staffID and offeringID must be positive", ErrInvalidInput, i)
		}
		if err := s.Interval().Validate(); err != nil {
			return fmt.Errorf("%w: service %d: %v", ErrInvalidInput, i, err)
		}
		if s.Price.IsNegative() {
			return fmt.Errorf("%w: service %d: price must not be negative", ErrInvalidInput, i)
		}
	}

	for i, a := range req.Addons {
		if a.OfferingID <= 0 || a.Quantity <= 0 {
			return fmt.Errorf("%w: addon %d: offeringID and quantity must be positive", ErrInvalidInput, i)
		}
	}

	for i, p := range req.Participants {
		if p.Name == "" {
			return fmt.Errorf("%w: participant %d: name is required", ErrInvalidInput, i)
		}
	}

	if !req.LocationType.IsValid() {
		return fmt.Errorf("%w: unknown locationType %q", ErrInvalidInput, req.LocationType)
	}

	if req.LocationType == domain.LocationAtHome && req.Address == nil {
		return fmt.Errorf("%w: address is required for at_home bookings", ErrInvalidInput)
	}

	if !req.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: unknown paymentMethod %q", ErrInvalidInput, req.PaymentMethod)
	}

	if req.TravelFee.IsNegative() {
		return fmt.Errorf("%w: travel fee must not be negative", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}
