package update_scheduling_config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/config"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/config/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

type stubService struct {
	resp   *models.ConfigResponse
	err    error
	called bool
	got    *models.UpdateConfigRequest
}

func (s *stubService) Update(_ context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.called = true
	s.got = req
	return s.resp, s.err
}

func newRequest(providerID string, userID int64, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPut, "/api/v1/providers/"+providerID+"/scheduling-config", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"providerId": providerID})
	if userID > 0 {
		r = r.WithContext(handlers.WithUserID(r.Context(), userID))
	}
	return r
}

func TestHandle(t *testing.T) {
	saved := &models.ConfigResponse{ID: 11, ProviderID: 1, StaffID: ptr.Ptr(int64(5)), Level: "staff", TravelBufferMinutes: 20}
	validBody := `{"staffId":5,"travelBufferMinutes":20}`

	tests := []struct {
		name       string
		providerID string
		userID     int64
		body       string
		svc        *stubService
		status     int
		code       string
	}{
		{name: "manager updates staff level", providerID: "1", userID: 50, body: validBody, svc: &stubService{resp: saved}, status: http.StatusOK},
		{name: "invalid provider", providerID: "-1", userID: 50, body: validBody, svc: &stubService{}, status: http.StatusBadRequest, code: handlers.CodeValidation},
		{name: "anonymous", providerID: "1", body: validBody, svc: &stubService{}, status: http.StatusUnauthorized},
		{name: "identity in body", providerID: "1", userID: 50, body: `{"UserID":999}`, svc: &stubService{}, status: http.StatusBadRequest, code: handlers.CodeValidation},
		{name: "malformed body", providerID: "1", userID: 50, body: `{"staffId":`, svc: &stubService{}, status: http.StatusBadRequest, code: handlers.CodeValidation},
		{
			name:       "not a manager",
			providerID: "1",
			userID:     51,
			body:       validBody,
			svc:        &stubService{err: config.ErrAccessDenied},
			status:     http.StatusForbidden,
			code:       handlers.CodeAccessDenied,
		},
		{
			name:       "staff of another provider",
			providerID: "1",
			userID:     50,
			body:       validBody,
			svc:        &stubService{err: fmt.Errorf("%w: id=5", config.ErrStaffNotFound)},
			status:     http.StatusNotFound,
			code:       handlers.CodeNotFound,
		},
		{
			name:       "out of range value",
			providerID: "1",
			userID:     50,
			body:       `{"slotIntervalMinutes":1}`,
			svc:        &stubService{err: fmt.Errorf("%w: slotIntervalMinutes must be between 5 and 240", config.ErrInvalidInput)},
			status:     http.StatusBadRequest,
			code:       handlers.CodeValidation,
		},
		{
			name:       "service failure",
			providerID: "1",
			userID:     50,
			body:       validBody,
			svc:        &stubService{err: errors.New("boom")},
			status:     http.StatusInternalServerError,
			code:       handlers.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(tt.svc, logger.NewNop()).Handle(rec, newRequest(tt.providerID, tt.userID, tt.body))

			require.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.code, body["code"])
			}
			switch tt.status {
			case http.StatusUnauthorized:
				assert.False(t, tt.svc.called)
			case http.StatusOK:
				assert.Contains(t, rec.Body.String(), `"level":"staff"`)
			}
		})
	}
}

func TestHandle_IdentityComesFromRequestContext(t *testing.T) {
	svc := &stubService{resp: &models.ConfigResponse{ID: 1, ProviderID: 3, Level: "provider"}}
	rec := httptest.NewRecorder()

	body := `{"locationId":4,"slotIntervalMinutes":20}`
	NewHandler(svc, logger.NewNop()).Handle(rec, newRequest("3", 50, body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(50), svc.got.UserID)
	assert.Equal(t, int64(3), svc.got.ProviderID)
	assert.Equal(t, ptr.Ptr(int64(4)), svc.got.LocationID)
	assert.Nil(t, svc.got.StaffID)
	assert.Equal(t, ptr.Ptr(20), svc.got.SlotIntervalMinutes)
}
