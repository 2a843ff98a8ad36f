package create_hold

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrOfferingNotFound возвращается, когда услуга не найдена, неактивна или принадлежит другому провайдеру
	ErrOfferingNotFound = fmt.Errorf("create_hold: offering %w", domain.ErrNotFound)

	// ErrStaffNotFound возвращается, когда сотрудник не найден или не работает у провайдера
	ErrStaffNotFound = fmt.Errorf("create_hold: staff %w", domain.ErrNotFound)

	// ErrSlotNotAvailable возвращается, когда выбранное время уже занято
	ErrSlotNotAvailable = fmt.Errorf("create_hold: %w", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_hold: invalid input data: %w", domain.ErrValidation)

	// ErrTransientStore возвращается, когда хранилище временно недоступно
	ErrTransientStore = fmt.Errorf("create_hold: %w", domain.ErrTransientStore)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_hold: internal error")
)
