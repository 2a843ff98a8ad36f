package get_scheduling_config

import (
	"net/http"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
)

const (
	msgInvalidProviderID = "некорректный ID провайдера"
	msgInvalidParams     = "некорректные параметры запроса"
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

// Handle GET /api/v1/providers/{providerId}/scheduling-config
// Query params: locationId, staffId (опционально)
// Публичный endpoint - без авторизации. Если ничего не настроено, отдаются значения по умолчанию.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathID(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/scheduling-config - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	serviceReq, err := ToServiceRequest(providerID, r.URL.Query().Get("locationId"), r.URL.Query().Get("staffId"))
	if err != nil {
		h.logger.Warn("GET /providers/{id}/scheduling-config - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetWithHierarchy(r.Context(), serviceReq)
	if err != nil {
		h.logger.Error("GET /providers/{id}/scheduling-config - Failed to get config: provider_id=%d, error=%v",
			providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /providers/{id}/scheduling-config - Config retrieved successfully: provider_id=%d, level=%s, default=%t",
		providerID, result.Level, result.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, result)
}
