package create_hold

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if len(req.Services) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}

	if len(req.Services) > domain.MaxServicesPerBooking {
		return fmt.Errorf("%w: at most %d services", ErrInvalidInput, domain.MaxServicesPerBooking)
	}

	for i, s := range req.Services {
		if s.OfferingID <= 0 || s.StaffID <= 0 {
			return fmt.Errorf("%w: service %d: offeringID and staffID must be positive", ErrInvalidInput, i)
		}
	}

	if req.SelectedDateTime.IsZero() {
		return fmt.Errorf("%w: selectedDateTime is required", ErrInvalidInput)
	}

	if !req.SelectedDateTime.After(now) {
		return fmt.Errorf("%w: selectedDateTime must be in the future", ErrInvalidInput)
	}

	if !req.LocationType.IsValid() {
		return fmt.Errorf("%w: unknown locationType %q", ErrInvalidInput, req.LocationType)
	}

	if req.LocationType == domain.LocationAtHome {
		if req.Address == nil || req.Address.Line1 == "" || req.Address.City == "" {
			return fmt.Errorf("%w: address with line1 and city is required for at_home", ErrInvalidInput)
		}
	}

	return nil
}
