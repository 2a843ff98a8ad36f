package get_scheduling_config

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/config/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

type stubService struct {
	resp   *models.ConfigResponse
	err    error
	called bool
	got    *models.GetConfigRequest
}

func (s *stubService) GetWithHierarchy(_ context.Context, req *models.GetConfigRequest) (*models.ConfigResponse, error) {
	s.called = true
	s.got = req
	return s.resp, s.err
}

func newRequest(providerID, query string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/providers/"+providerID+"/scheduling-config"+query, nil)
	return mux.SetURLVars(r, map[string]string{"providerId": providerID})
}

func TestHandle(t *testing.T) {
	stored := &models.ConfigResponse{ID: 4, ProviderID: 1, Level: "staff@location", SlotIntervalMinutes: 20}

	tests := []struct {
		name         string
		providerID   string
		query        string
		svc          *stubService
		status       int
		code         string
		wantLocation *int64
		wantStaff    *int64
	}{
		{
			name:       "defaults without query",
			providerID: "1",
			svc:        &stubService{resp: &models.ConfigResponse{ProviderID: 1, Level: "provider", IsDefault: true}},
			status:     http.StatusOK,
		},
		{
			name:         "location and staff from query",
			providerID:   "1",
			query:        "?locationId=3&staffId=5",
			svc:          &stubService{resp: stored},
			status:       http.StatusOK,
			wantLocation: ptr.Ptr(int64(3)),
			wantStaff:    ptr.Ptr(int64(5)),
		},
		{
			name:       "staff only",
			providerID: "1",
			query:      "?staffId=5",
			svc:        &stubService{resp: stored},
			status:     http.StatusOK,
			wantStaff:  ptr.Ptr(int64(5)),
		},
		{name: "invalid provider", providerID: "abc", svc: &stubService{}, status: http.StatusBadRequest, code: handlers.CodeValidation},
		{name: "zero provider", providerID: "0", svc: &stubService{}, status: http.StatusBadRequest, code: handlers.CodeValidation},
		{name: "invalid staffId", providerID: "1", query: "?staffId=x", svc: &stubService{}, status: http.StatusBadRequest, code: handlers.CodeValidation},
		{name: "invalid locationId", providerID: "1", query: "?locationId=1.5", svc: &stubService{}, status: http.StatusBadRequest, code: handlers.CodeValidation},
		{
			name:       "service failure",
			providerID: "1",
			svc:        &stubService{err: errors.New("db down")},
			status:     http.StatusInternalServerError,
			code:       handlers.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(tt.svc, logger.NewNop()).Handle(rec, newRequest(tt.providerID, tt.query))

			require.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.code, body["code"])
			}
			if tt.status == http.StatusBadRequest {
				assert.False(t, tt.svc.called)
				return
			}
			require.NotNil(t, tt.svc.got)
			assert.Equal(t, int64(1), tt.svc.got.ProviderID)
			assert.Equal(t, tt.wantLocation, tt.svc.got.LocationID)
			assert.Equal(t, tt.wantStaff, tt.svc.got.StaffID)
		})
	}
}

func TestHandle_ResponseBody(t *testing.T) {
	svc := &stubService{resp: &models.ConfigResponse{ProviderID: 1, Level: "provider", IsDefault: true, SlotIntervalMinutes: 15}}
	rec := httptest.NewRecorder()

	NewHandler(svc, logger.NewNop()).Handle(rec, newRequest("1", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var body models.ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.IsDefault)
	assert.Equal(t, 15, body.SlotIntervalMinutes)
	assert.Equal(t, "provider", body.Level)
}
