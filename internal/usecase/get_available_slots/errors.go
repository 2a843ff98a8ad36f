package get_available_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrStaffNotFound возвращается, когда сотрудник не найден
	ErrStaffNotFound = fmt.Errorf("staff %w", domain.ErrNotFound)

	// ErrOfferingNotFound возвращается, когда услуга не найдена или неактивна
	ErrOfferingNotFound = fmt.Errorf("offering %w", domain.ErrNotFound)

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = fmt.Errorf("invalid booking date: %w", domain.ErrValidation)

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = fmt.Errorf("date is too far in the future: %w", domain.ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("invalid input data: %w", domain.ErrValidation)

	// ErrTransientStore возвращается, когда хранилище временно недоступно
	ErrTransientStore = fmt.Errorf("usecase: %w", domain.ErrTransientStore)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
