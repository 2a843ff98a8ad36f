package create_pay_run

import (
	"fmt"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.PayPeriodStart.IsZero() || req.PayPeriodEnd.IsZero() {
		return fmt.Errorf("%w: payPeriodStart and payPeriodEnd are required", ErrInvalidInput)
	}

	if req.PayPeriodEnd.Before(req.PayPeriodStart) {
		return fmt.Errorf("%w: payPeriodEnd must not be before payPeriodStart", ErrInvalidInput)
	}

	if !req.PeriodType.IsValid() {
		return fmt.Errorf("%w: periodType must be weekly or monthly", ErrInvalidInput)
	}

	return nil
}
