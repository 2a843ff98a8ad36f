package get_available_slots

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

type MockUseCase struct{ mock.Mock }

func (m *MockUseCase) Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*getAvailableSlots.Response), args.Error(1)
}

func serve(uc *MockUseCase, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/staff/{staffId}/available-slots", NewHandler(uc, logger.NewNop()).Handle)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func mustTime(s string) types.TimeString {
	t, err := types.NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestHandle_ReturnsSlots(t *testing.T) {
	uc := &MockUseCase{}
	date := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailableSlots.Request) bool {
		return req.StaffID == 7 && req.Date.Equal(date) &&
			assert.ObjectsAreEqual([]int64{1, 2}, req.OfferingIDs) &&
			req.LocationType == domain.LocationAtHome &&
			req.TravelBufferMinutes != nil && *req.TravelBufferMinutes == 15
	})).Return(&getAvailableSlots.Response{
		StaffID:             7,
		Date:                date,
		DurationMinutes:     90,
		SlotIntervalMinutes: 30,
		TravelBufferMinutes: 15,
		Slots: []domain.Slot{
			{Time: mustTime("09:00"), Available: true},
			{Time: mustTime("09:30"), Available: false},
		},
	}, nil)

	rec := serve(uc, "/staff/7/available-slots?date=2026-04-06&offeringIds=1,2&locationType=at_home&travelBufferMinutes=15")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"staffId": 7, "date": "2026-04-06", "durationMinutes": 90, "slotIntervalMinutes": 30,
		"travelBufferMinutes": 15,
		"slots": [{"time":"09:00","available":true},{"time":"09:30","available":false}]
	}`, rec.Body.String())
}

func TestHandle_DegradedOnTransientStore(t *testing.T) {
	uc := &MockUseCase{}
	uc.On("Execute", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: redis down", getAvailableSlots.ErrTransientStore))

	rec := serve(uc, "/staff/7/available-slots?date=2026-04-06&durationMinutes=60")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"staffId":7,"date":"2026-04-06","travelBufferMinutes":0,"slots":[],"degraded":true}`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{name: "bad staff id", target: "/staff/x/available-slots?date=2026-04-06", status: http.StatusBadRequest},
		{name: "missing date", target: "/staff/7/available-slots", status: http.StatusBadRequest},
		{name: "bad date", target: "/staff/7/available-slots?date=06.04.2026", status: http.StatusBadRequest},
		{name: "bad offering list", target: "/staff/7/available-slots?date=2026-04-06&offeringIds=1,a", status: http.StatusBadRequest},
		{name: "staff not found", target: "/staff/7/available-slots?date=2026-04-06", err: getAvailableSlots.ErrStaffNotFound, status: http.StatusNotFound},
		{name: "date too far", target: "/staff/7/available-slots?date=2026-04-06", err: getAvailableSlots.ErrDateTooFarInFuture, status: http.StatusBadRequest},
		{name: "internal", target: "/staff/7/available-slots?date=2026-04-06", err: getAvailableSlots.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &MockUseCase{}
			if tt.err != nil {
				uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rec := serve(uc, tt.target)

			assert.Equal(t, tt.status, rec.Code)
			if tt.err == nil {
				uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
			}
		})
	}
}
