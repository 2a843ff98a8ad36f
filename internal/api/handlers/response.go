package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

const msgInternalError = "внутренняя ошибка сервера"

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// DecodeJSON декодирует тело запроса, неизвестные поля считаются ошибкой
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ошибку с сообщением
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondErrorCode пишет ошибку с машинным кодом
func RespondErrorCode(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondErrorCode(w, http.StatusBadRequest, CodeValidation, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondErrorCode(w, http.StatusNotFound, CodeNotFound, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondErrorCode(w, http.StatusForbidden, CodeAccessDenied, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondErrorCode(w, http.StatusInternalServerError, CodeInternal, msgInternalError)
}

// Коды ошибок в теле ответа
const (
	CodeValidation          = "validation_error"
	CodeNotFound            = "not_found"
	CodeHoldInactive        = "hold_inactive"
	CodeHoldExpired         = "hold_expired"
	CodeHoldOwnership       = "hold_ownership"
	CodeAccessDenied        = "access_denied"
	CodeSlotConflict        = "slot_conflict"
	CodePayRunConfiguration = "pay_run_configuration"
	CodeTransientStore      = "store_unavailable"
	CodeRateLimited         = "rate_limited"
	CodeInternal            = "internal_error"
)

type errorMapping struct {
	kind   error
	status int
	code   string
}

// Порядок важен: HoldOwnership проверяется раньше AccessDenied
var errorMappings = []errorMapping{
	{domain.ErrValidation, http.StatusBadRequest, CodeValidation},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrHoldInactive, http.StatusConflict, CodeHoldInactive},
	{domain.ErrHoldExpired, http.StatusGone, CodeHoldExpired},
	{domain.ErrHoldOwnership, http.StatusForbidden, CodeHoldOwnership},
	{domain.ErrAccessDenied, http.StatusForbidden, CodeAccessDenied},
	{domain.ErrConflict, http.StatusConflict, CodeSlotConflict},
	{domain.ErrPayRunConfiguration, http.StatusUnprocessableEntity, CodePayRunConfiguration},
	{domain.ErrTransientStore, http.StatusServiceUnavailable, CodeTransientStore},
}

// StatusFromError возвращает HTTP статус и код для ошибки по ее доменному виду
func StatusFromError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// RespondDomainError пишет ошибку use case или сервиса.
// Текст внутренних ошибок наружу не отдается.
func RespondDomainError(w http.ResponseWriter, err error, message string) int {
	status, code := StatusFromError(err)
	if status == http.StatusInternalServerError {
		RespondInternalError(w)
		return status
	}
	RespondErrorCode(w, status, code, message)
	return status
}
