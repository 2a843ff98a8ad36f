package reschedule_booking

import (
	"net/http"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStartAt     = "некорректное время, ожидается RFC 3339"
	msgMissingUserID      = "отсутствует ID пользователя"
)

var errorMessages = map[int]string{
	http.StatusBadRequest:         "бронирование не может быть перенесено",
	http.StatusNotFound:           "бронирование не найдено",
	http.StatusForbidden:          "доступ запрещен",
	http.StatusConflict:           "новое время пересекается с другим бронированием",
	http.StatusServiceUnavailable: "хранилище временно недоступно",
}

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid booking ID: %s", r.URL.Path)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(userID)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid newStartAt: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartAt)
		return
	}

	booking, err := h.service.Reschedule(r.Context(), bookingID, serviceReq)
	if err != nil {
		status, code := handlers.StatusFromError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("PATCH /bookings/{id}/reschedule - Failed to reschedule booking: booking_id=%d, error=%v", bookingID, err)
		} else {
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Rejected: booking_id=%d, new_start=%s, code=%s",
				bookingID, req.NewStartAt, code)
		}
		handlers.RespondDomainError(w, err, errorMessages[status])
		return
	}

	h.logger.Info("PATCH /bookings/{id}/reschedule - Booking rescheduled: booking_id=%d, start_at=%s",
		bookingID, booking.StartAt)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
