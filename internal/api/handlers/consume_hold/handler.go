package consume_hold

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
)

const (
	msgInvalidHoldID      = "некорректный ID удержания"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "требуется авторизация"
)

// Сообщения по коду ошибки
var messages = map[string]string{
	handlers.CodeValidation:     "некорректные параметры бронирования",
	handlers.CodeNotFound:       "удержание не найдено",
	handlers.CodeHoldInactive:   "удержание уже использовано или снято",
	handlers.CodeHoldExpired:    "срок удержания истек",
	handlers.CodeHoldOwnership:  "удержание принадлежит другому клиенту",
	handlers.CodeSlotConflict:   "выбранное время уже занято",
	handlers.CodeTransientStore: "сервис временно недоступен, повторите запрос",
}

type Handler struct {
	useCase ConsumeHoldUseCase
	logger  Logger
}

func NewHandler(useCase ConsumeHoldUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/holds/{holdId}/consume
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	holdID, err := uuid.Parse(mux.Vars(r)["holdId"])
	if err != nil {
		h.logger.Warn("POST /holds/{id}/consume - Invalid hold ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHoldID)
		return
	}

	userID, ok := handlers.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req ConsumeHoldRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /holds/{id}/consume - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(holdID, userID))
	if err != nil {
		status, code := handlers.StatusFromError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("POST /holds/{id}/consume - Failed to consume hold: hold_id=%s, user_id=%d, error=%v",
				holdID, userID, err)
		} else {
			h.logger.Warn("POST /holds/{id}/consume - Rejected: hold_id=%s, user_id=%d, code=%s, error=%v",
				holdID, userID, code, err)
		}
		handlers.RespondDomainError(w, err, messages[code])
		return
	}

	h.logger.Info("POST /holds/{id}/consume - Booking created successfully: hold_id=%s, booking_id=%d, number=%s",
		holdID, result.BookingID, result.BookingNumber)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
