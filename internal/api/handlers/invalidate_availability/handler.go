package invalidate_availability

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidParams      = "требуются staffId и date в формате YYYY-MM-DD"
)

// InvalidateRequest HTTP request model
type InvalidateRequest struct {
	StaffID int64  `json:"staffId"`
	Date    string `json:"date"`
}

type Handler struct {
	invalidator Invalidator
	logger      Logger
}

func NewHandler(invalidator Invalidator, logger Logger) *Handler {
	return &Handler{
		invalidator: invalidator,
		logger:      logger,
	}
}

// Handle POST /api/v1/internal/availability/invalidate
// Сброс выполняется асинхронно, ответ 202 не ждет Redis
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/availability/invalidate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil || req.StaffID <= 0 {
		h.logger.Warn("POST /internal/availability/invalidate - Invalid parameters: staff_id=%d, date=%q", req.StaffID, req.Date)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	h.invalidator.Invalidate(req.StaffID, date)

	h.logger.Info("POST /internal/availability/invalidate - Invalidation scheduled: staff_id=%d, date=%s", req.StaffID, req.Date)
	handlers.RespondJSON(w, http.StatusAccepted, nil)
}
