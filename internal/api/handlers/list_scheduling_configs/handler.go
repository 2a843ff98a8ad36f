package list_scheduling_configs

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/config"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgForbidden         = "доступ запрещен"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/scheduling-configs
// Все уровни конфигурации провайдера, только для менеджеров
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathID(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/scheduling-configs - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("GET /providers/{id}/scheduling-configs - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.GetAllByProvider(r.Context(), providerID, userID)
	if err != nil {
		if errors.Is(err, config.ErrAccessDenied) {
			h.logger.Warn("GET /providers/{id}/scheduling-configs - Access denied: provider_id=%d, user_id=%d",
				providerID, userID)
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		h.logger.Error("GET /providers/{id}/scheduling-configs - Failed to list configs: provider_id=%d, error=%v",
			providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /providers/{id}/scheduling-configs - Configs retrieved successfully: provider_id=%d, count=%d",
		providerID, len(result.Configs))
	handlers.RespondJSON(w, http.StatusOK, result)
}
