package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", fmt.Errorf("uc: %w", domain.ErrValidation), http.StatusBadRequest, CodeValidation},
		{"not found", fmt.Errorf("hold %w", domain.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"hold inactive", domain.ErrHoldInactive, http.StatusConflict, CodeHoldInactive},
		{"hold expired", domain.ErrHoldExpired, http.StatusGone, CodeHoldExpired},
		{"hold ownership", domain.ErrHoldOwnership, http.StatusForbidden, CodeHoldOwnership},
		{"access denied", domain.ErrAccessDenied, http.StatusForbidden, CodeAccessDenied},
		{"conflict", fmt.Errorf("%w: staff 7", domain.ErrConflict), http.StatusConflict, CodeSlotConflict},
		{"pay run configuration", domain.ErrPayRunConfiguration, http.StatusUnprocessableEntity, CodePayRunConfiguration},
		{"transient", fmt.Errorf("%w: timeout", domain.ErrTransientStore), http.StatusServiceUnavailable, CodeTransientStore},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := StatusFromError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestRespondDomainError_HidesInternalText(t *testing.T) {
	rec := httptest.NewRecorder()

	status := RespondDomainError(rec, errors.New("pq: connection refused"), "не важно")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.JSONEq(t, `{"error":"внутренняя ошибка сервера","code":"internal_error"}`, rec.Body.String())
}

func TestRespondDomainError_WritesCode(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondDomainError(rec, domain.ErrHoldExpired, "удержание истекло")

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"удержание истекло","code":"hold_expired"}`, rec.Body.String())
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	userID, ok := UserIDFromContext(WithUserID(context.Background(), 42))
	require.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

func TestParseUserID(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := ParseUserID(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("1, 2,3")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = ParseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = ParseIDList("1,x")
	assert.Error(t, err)
}

func TestPathID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{name: "valid", value: "42", want: 42},
		{name: "zero", value: "0", wantErr: true},
		{name: "negative", value: "-3", wantErr: true},
		{name: "not a number", value: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": tt.value})
			got, err := PathID(r, "bookingId")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPathID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
