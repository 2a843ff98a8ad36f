package availability

import (
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrStaffNotFound возвращается, когда сотрудник не найден
	ErrStaffNotFound = fmt.Errorf("availability: staff %w", domain.ErrNotFound)

	// ErrStoreUnavailable возвращается при ошибке чтения из хранилища
	ErrStoreUnavailable = fmt.Errorf("availability: %w", domain.ErrTransientStore)
)
