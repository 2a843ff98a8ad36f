package invalidate_availability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type call struct {
	staffID int64
	date    time.Time
}

type recordingInvalidator struct{ calls []call }

func (r *recordingInvalidator) Invalidate(staffID int64, date time.Time) {
	r.calls = append(r.calls, call{staffID, date})
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		calls  []call
	}{
		{
			name:   "accepted",
			body:   `{"staffId":7,"date":"2026-04-06"}`,
			status: http.StatusAccepted,
			calls:  []call{{7, time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)}},
		},
		{name: "bad date", body: `{"staffId":7,"date":"tomorrow"}`, status: http.StatusBadRequest},
		{name: "missing staff", body: `{"date":"2026-04-06"}`, status: http.StatusBadRequest},
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &recordingInvalidator{}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/internal/availability/invalidate", strings.NewReader(tt.body))

			NewHandler(inv, logger.NewNop()).Handle(rec, req)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.calls, inv.calls)
		})
	}
}
