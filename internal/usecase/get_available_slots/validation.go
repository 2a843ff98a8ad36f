package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if len(req.OfferingIDs) == 0 && req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes or offeringIds is required", ErrInvalidInput)
	}

	if len(req.OfferingIDs) > domain.MaxServicesPerBooking {
		return fmt.Errorf("%w: at most %d offerings", ErrInvalidInput, domain.MaxServicesPerBooking)
	}

	for _, id := range req.OfferingIDs {
		if id <= 0 {
			return fmt.Errorf("%w: offeringID must be positive", ErrInvalidInput)
		}
	}

	if req.DurationMinutes > domain.MaxBookingDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must not exceed %d", ErrInvalidInput, domain.MaxBookingDurationMinutes)
	}

	if req.LocationType != "" && !req.LocationType.IsValid() {
		return fmt.Errorf("%w: unknown locationType %q", ErrInvalidInput, req.LocationType)
	}

	if req.TravelBufferMinutes != nil &&
		(*req.TravelBufferMinutes < 0 || *req.TravelBufferMinutes > domain.MaxTravelBufferMinutes) {
		return fmt.Errorf("%w: travelBufferMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxTravelBufferMinutes)
	}

	return nil
}

// validateDate проверяет, что дата подходит для бронирования.
// day и today - полночь в часовом поясе сотрудника.
func validateDate(day, today time.Time, advanceBookingDays int) error {
	if day.Before(today) {
		return ErrInvalidDate
	}

	// Если advanceBookingDays = 0, нет ограничений на дату
	if advanceBookingDays == 0 {
		return nil
	}

	maxDate := today.AddDate(0, 0, advanceBookingDays)
	if day.After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// applyNotice помечает занятыми слоты сегодняшнего дня, которые начинаются раньше now + notice.
// Слоты остаются в ответе.
func applyNotice(slots []domain.Slot, day, now time.Time, noticeMinutes int) ([]domain.Slot, error) {
	earliest := now.Add(time.Duration(noticeMinutes) * time.Minute)
	result := make([]domain.Slot, len(slots))
	for i, slot := range slots {
		start, err := slot.Time.On(day)
		if err != nil {
			return nil, err
		}
		result[i] = slot
		if start.Before(earliest) {
			result[i].Available = false
		}
	}
	return result, nil
}
