package create_hold

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	createHold "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_hold"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректное время, ожидается RFC 3339"
	msgInvalidInput       = "некорректные параметры удержания"
	msgSlotNotAvailable   = "выбранное время недоступно"
	msgOfferingNotFound   = "услуга не найдена"
	msgStaffNotFound      = "сотрудник не найден"
	msgStoreUnavailable   = "сервис временно недоступен"
)

type Handler struct {
	useCase CreateHoldUseCase
	logger  Logger
}

func NewHandler(useCase CreateHoldUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/holds
// X-User-ID опционален: гость передает guestFingerprint
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateHoldRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /holds - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var userID *int64
	if id, ok := handlers.UserIDFromContext(r.Context()); ok {
		userID = &id
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /holds - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createHold.ErrSlotNotAvailable):
			h.logger.Warn("POST /holds - Slot not available: provider_id=%d, start=%s", req.ProviderID, req.SelectedDateTime)
			handlers.RespondDomainError(w, err, msgSlotNotAvailable)

		case errors.Is(err, createHold.ErrOfferingNotFound):
			h.logger.Warn("POST /holds - Offering not found: provider_id=%d", req.ProviderID)
			handlers.RespondNotFound(w, msgOfferingNotFound)

		case errors.Is(err, createHold.ErrStaffNotFound):
			h.logger.Warn("POST /holds - Staff not found: provider_id=%d", req.ProviderID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, createHold.ErrInvalidInput):
			h.logger.Warn("POST /holds - Invalid input: provider_id=%d, error=%v", req.ProviderID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createHold.ErrTransientStore):
			h.logger.Error("POST /holds - Store unavailable: provider_id=%d, error=%v", req.ProviderID, err)
			handlers.RespondDomainError(w, err, msgStoreUnavailable)

		default:
			h.logger.Error("POST /holds - Failed to create hold: provider_id=%d, error=%v", req.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds - Hold created successfully: hold_id=%s, provider_id=%d, expires_at=%s",
		result.HoldID, req.ProviderID, result.ExpiresAt)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
