package create_pay_run

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrPayRunConfiguration возвращается, когда у сотрудников не хватает настроек оплаты,
	// а вызывающий не разрешил создавать ведомость с предупреждениями.
	// Предупреждения доступны через errors.As с *domain.PayRunConfigurationError.
	ErrPayRunConfiguration = fmt.Errorf("create_pay_run: %w", domain.ErrPayRunConfiguration)

	// ErrAccessDenied возвращается, когда пользователь не управляет провайдером
	ErrAccessDenied = fmt.Errorf("create_pay_run: %w", domain.ErrAccessDenied)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_pay_run: invalid input data: %w", domain.ErrValidation)

	// ErrTransientStore возвращается, когда хранилище временно недоступно
	ErrTransientStore = fmt.Errorf("create_pay_run: %w", domain.ErrTransientStore)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_pay_run: internal error")
)
