package create_pay_run

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	createPayRun "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_pay_run"
)

const (
	msgInvalidProviderID  = "некорректный ID провайдера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidPeriod      = "некорректный период, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные параметры ведомости"
	msgForbidden          = "доступ запрещен"
	msgConfiguration      = "настройка оплаты сотрудников неполная"
	msgStoreUnavailable   = "сервис временно недоступен"
)

type Handler struct {
	useCase CreatePayRunUseCase
	logger  Logger
}

func NewHandler(useCase CreatePayRunUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/providers/{providerId}/pay-runs
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathID(r, "providerId")
	if err != nil {
		h.logger.Warn("POST /providers/{id}/pay-runs - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("POST /providers/{id}/pay-runs - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreatePayRunRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /providers/{id}/pay-runs - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID, providerID)
	if err != nil {
		h.logger.Warn("POST /providers/{id}/pay-runs - Invalid period: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var cfgErr *domain.PayRunConfigurationError
		switch {
		case errors.As(err, &cfgErr):
			h.logger.Warn("POST /providers/{id}/pay-runs - Configuration warnings: provider_id=%d, count=%d",
				providerID, len(cfgErr.Warnings))
			handlers.RespondJSON(w, http.StatusUnprocessableEntity, WarningsErrorResponse{
				Error:    msgConfiguration,
				Code:     handlers.CodePayRunConfiguration,
				Warnings: FromWarnings(cfgErr.Warnings),
			})

		case errors.Is(err, createPayRun.ErrAccessDenied):
			h.logger.Warn("POST /providers/{id}/pay-runs - Access denied: provider_id=%d, user_id=%d", providerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createPayRun.ErrInvalidInput):
			h.logger.Warn("POST /providers/{id}/pay-runs - Invalid input: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createPayRun.ErrTransientStore):
			h.logger.Error("POST /providers/{id}/pay-runs - Store unavailable: provider_id=%d, error=%v", providerID, err)
			handlers.RespondDomainError(w, err, msgStoreUnavailable)

		default:
			h.logger.Error("POST /providers/{id}/pay-runs - Failed to create pay run: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /providers/{id}/pay-runs - Pay run created successfully: pay_run_id=%d, provider_id=%d, items=%d",
		result.PayRunID, providerID, result.ItemCount)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
