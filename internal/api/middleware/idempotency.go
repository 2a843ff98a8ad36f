package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/infra/cache/idempotency"
)

// HeaderIdempotencyKey заголовок ключа идемпотентности
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	maxIdempotencyKeyLength   = 128
	msgInvalidIdempotencyKey  = "некорректный Idempotency-Key"
	headerIdempotencyReplayed = "Idempotency-Replayed"
)

// IdempotencyStore хранилище ответов по ключу
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*idempotency.Response, error)
	Save(ctx context.Context, key string, resp idempotency.Response) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Idempotency повторяет сохраненный ответ для запроса с тем же ключом.
// Ключ привязан к пользователю и пути. Запросы без ключа проходят как есть.
// Ответы 5xx не сохраняются, их можно повторить.
func Idempotency(store IdempotencyStore, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderIdempotencyKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLength {
				handlers.RespondBadRequest(w, msgInvalidIdempotencyKey)
				return
			}

			userID, _ := handlers.UserIDFromContext(r.Context())
			storeKey := strconv.FormatInt(userID, 10) + ":" + r.URL.Path + ":" + key

			stored, err := store.Get(r.Context(), storeKey)
			if err != nil {
				logger.Warn("Idempotency: lookup failed, key=%s: %v", key, err)
			}
			if stored != nil {
				logger.Info("Idempotency: replaying stored response, key=%s, status=%d", key, stored.Status)
				if stored.ContentType != "" {
					w.Header().Set("Content-Type", stored.ContentType)
				}
				w.Header().Set(headerIdempotencyReplayed, "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			rec := newStatusRecorder(w, true)
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusInternalServerError {
				return
			}
			resp := idempotency.Response{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			}
			if err := store.Save(r.Context(), storeKey, resp); err != nil {
				logger.Warn("Idempotency: failed to store response, key=%s: %v", key, err)
			}
		})
	}
}
