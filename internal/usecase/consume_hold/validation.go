package consume_hold

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.HoldID == uuid.Nil {
		return fmt.Errorf("%w: holdID is required", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.PaymentMethod != "" && !req.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: unknown paymentMethod %q", ErrInvalidInput, req.PaymentMethod)
	}

	for i, a := range req.Addons {
		if a.OfferingID <= 0 || a.Quantity <= 0 {
			return fmt.Errorf("%w: addon %d: offeringID and quantity must be positive", ErrInvalidInput, i)
		}
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// checkHold проверяет удержание в фиксированном порядке: статус, срок, владелец.
// Возвращает причину отказа для метрик.
func checkHold(hold *domain.BookingHold, req *Request, now time.Time) (string, error) {
	if hold.Status != domain.HoldActive {
		return reasonInactive, fmt.Errorf("%w: status=%s", ErrHoldInactive, hold.Status)
	}

	if hold.IsExpiredAt(now) {
		return reasonExpired, fmt.Errorf("%w: expired at %s", ErrHoldExpired, hold.ExpiresAt.Format(time.RFC3339))
	}

	if !hold.IsOwnedBy(req.UserID, req.Fingerprint) {
		return reasonOwnership, ErrHoldOwnership
	}

	return "", nil
}
