package consume_hold

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrHoldNotFound возвращается, когда удержание не найдено
	ErrHoldNotFound = fmt.Errorf("consume_hold: hold %w", domain.ErrNotFound)

	// ErrHoldInactive возвращается, когда удержание уже погашено или помечено истекшим
	ErrHoldInactive = fmt.Errorf("consume_hold: %w", domain.ErrHoldInactive)

	// ErrHoldExpired возвращается, когда срок удержания прошел
	ErrHoldExpired = fmt.Errorf("consume_hold: %w", domain.ErrHoldExpired)

	// ErrHoldOwnership возвращается, когда удержание принадлежит другому клиенту
	ErrHoldOwnership = fmt.Errorf("consume_hold: %w", domain.ErrHoldOwnership)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("consume_hold: invalid input data: %w", domain.ErrValidation)

	// ErrTransientStore возвращается, когда хранилище временно недоступно
	ErrTransientStore = fmt.Errorf("consume_hold: %w", domain.ErrTransientStore)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("consume_hold: internal error")
)

// Причины отказа для метрик
const (
	reasonNotFound  = "not_found"
	reasonInactive  = "inactive"
	reasonExpired   = "expired"
	reasonOwnership = "ownership"
	reasonConflict  = "conflict"
)
