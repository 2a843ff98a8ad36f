package create_hold

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/config"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

// Mock implementations

type MockHoldRepository struct{ mock.Mock }

func (m *MockHoldRepository) Create(ctx context.Context, hold *domain.BookingHold) error {
	return m.Called(ctx, hold).Error(0)
}

type MockOfferingRepository struct{ mock.Mock }

func (m *MockOfferingRepository) GetByIDs(ctx context.Context, providerID int64, ids []int64) ([]*domain.Offering, error) {
	args := m.Called(ctx, providerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Offering), args.Error(1)
}

type MockStaffRepository struct{ mock.Mock }

func (m *MockStaffRepository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Staff), args.Error(1)
}

type MockConfigRepository struct{ mock.Mock }

func (m *MockConfigRepository) GetConfigWithHierarchy(ctx context.Context, providerID int64, locationID, staffID *int64) (*domain.SchedulingConfig, error) {
	args := m.Called(ctx, providerID, locationID, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulingConfig), args.Error(1)
}

type MockLoader struct{ mock.Mock }

func (m *MockLoader) LoadAt(ctx context.Context, staffID int64, at time.Time) (*domain.AvailabilityConstraints, error) {
	args := m.Called(ctx, staffID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityConstraints), args.Error(1)
}

type countingMetrics struct{ created int }

func (c *countingMetrics) IncHoldsCreated() { c.created++ }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// Helpers

var (
	now      = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	day      = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	selected = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	holds     *MockHoldRepository
	offerings *MockOfferingRepository
	staff     *MockStaffRepository
	config    *MockConfigRepository
	loader    *MockLoader
	metrics   *countingMetrics
	uc        *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		holds:     &MockHoldRepository{},
		offerings: &MockOfferingRepository{},
		staff:     &MockStaffRepository{},
		config:    &MockConfigRepository{},
		loader:    &MockLoader{},
		metrics:   &countingMetrics{},
	}
	settings := Settings{TTL: 10 * time.Minute, TravelFee: decimal.NewFromInt(80)}
	f.uc = NewUseCase(f.holds, f.offerings, f.staff, f.config, f.loader, f.metrics, settings, logger.NewNop()).
		WithTimeProvider(fixedClock{now: now})
	return f
}

func offerings() []*domain.Offering {
	return []*domain.Offering{
		{ID: 10, ProviderID: 1, DurationMinutes: 60, Price: decimal.NewFromInt(300), Currency: "ZAR", IsActive: true},
		{ID: 11, ProviderID: 1, DurationMinutes: 30, Price: decimal.NewFromInt(150), Currency: "ZAR", IsActive: true},
	}
}

func staffMember(id int64) *domain.Staff {
	return &domain.Staff{ID: id, ProviderID: 1, IsActive: true, Role: domain.RoleStylist}
}

func openDay(busy ...domain.DayInterval) *domain.AvailabilityConstraints {
	return &domain.AvailabilityConstraints{
		Date:             day,
		OperatingWindows: []domain.DayInterval{{Start: 9 * 60, End: 17 * 60}},
		BusyIntervals:    busy,
	}
}

func salonRequest() *Request {
	return &Request{
		ProviderID:       1,
		Services:         []ServiceSelection{{OfferingID: 10, StaffID: 5}, {OfferingID: 11, StaffID: 6}},
		SelectedDateTime: selected,
		LocationType:     domain.LocationAtSalon,
		UserID:           ptr.Ptr(int64(100)),
	}
}

func TestExecute_ChainsServicesAndCreatesHold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.offerings.On("GetByIDs", ctx, int64(1), []int64{10, 11}).Return(offerings(), nil)
	f.staff.On("GetByID", ctx, int64(5)).Return(staffMember(5), nil)
	f.staff.On("GetByID", ctx, int64(6)).Return(staffMember(6), nil)
	f.loader.On("LoadAt", ctx, int64(5), selected).Return(openDay(), nil)
	f.loader.On("LoadAt", ctx, int64(6), selected.Add(time.Hour)).Return(openDay(), nil)
	f.holds.On("Create", ctx, mock.AnythingOfType("*domain.BookingHold")).Return(nil)

	resp, err := f.uc.Execute(ctx, salonRequest())

	require.NoError(t, err)
	require.Len(t, resp.Services, 2)
	assert.True(t, resp.Services[0].ScheduledEndAt.Equal(selected.Add(time.Hour)))
	assert.True(t, resp.Services[1].ScheduledStartAt.Equal(selected.Add(time.Hour)))
	assert.True(t, resp.EndAt.Equal(selected.Add(90*time.Minute)))
	assert.True(t, resp.ExpiresAt.Equal(now.Add(10*time.Minute)))
	assert.True(t, decimal.NewFromInt(450).Equal(resp.Subtotal))
	assert.True(t, resp.TravelFee.IsZero())
	assert.Equal(t, "ZAR", resp.Currency)
	assert.Equal(t, 1, f.metrics.created)

	hold := f.holds.Calls[0].Arguments.Get(1).(*domain.BookingHold)
	assert.Equal(t, domain.HoldActive, hold.Status)
	assert.Equal(t, int64(100), *hold.CreatedByUserID)
	assert.Nil(t, hold.GuestFingerprintHash)
	f.config.AssertNotCalled(t, "GetConfigWithHierarchy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_GuestAtHomeHold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := &Request{
		ProviderID:       1,
		Services:         []ServiceSelection{{OfferingID: 10, StaffID: 5}},
		SelectedDateTime: selected,
		LocationType:     domain.LocationAtHome,
		Address:          &domain.Address{Line1: "1 Main Rd", City: "Cape Town"},
		GuestFingerprint: ptr.Ptr("device-abc"),
	}

	f.offerings.On("GetByIDs", ctx, int64(1), []int64{10}).Return(offerings()[:1], nil)
	f.staff.On("GetByID", ctx, int64(5)).Return(staffMember(5), nil)
	f.config.On("GetConfigWithHierarchy", ctx, int64(1), (*int64)(nil), mock.Anything).Return(nil, configRepo.ErrConfigNotFound)
	f.loader.On("LoadAt", ctx, int64(5), selected).Return(openDay(), nil)
	f.holds.On("Create", ctx, mock.AnythingOfType("*domain.BookingHold")).Return(nil)

	resp, err := f.uc.Execute(ctx, req)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(resp.TravelFee))

	hold := f.holds.Calls[0].Arguments.Get(1).(*domain.BookingHold)
	assert.True(t, hold.IsGuest())
	require.NotNil(t, hold.GuestFingerprintHash)
	assert.Equal(t, domain.HashFingerprint("device-abc"), *hold.GuestFingerprintHash)
	assert.True(t, decimal.NewFromInt(80).Equal(hold.Metadata.TravelFee))
}

func TestExecute_SlotConflicts(t *testing.T) {
	tests := []struct {
		name     string
		location domain.LocationType
		busy     domain.DayInterval
	}{
		// 10:00-11:00 против занятого 10:30-11:30
		{name: "direct overlap", location: domain.LocationAtSalon, busy: domain.DayInterval{Start: 630, End: 690}},
		// выезд: 09:30-11:30 с буфером 30 минут против 11:15-12:00
		{name: "travel buffer overlap", location: domain.LocationAtHome, busy: domain.DayInterval{Start: 675, End: 720}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			req := &Request{
				ProviderID:       1,
				Services:         []ServiceSelection{{OfferingID: 10, StaffID: 5}},
				SelectedDateTime: selected,
				LocationType:     tt.location,
				Address:          &domain.Address{Line1: "1 Main Rd", City: "Cape Town"},
				UserID:           ptr.Ptr(int64(100)),
			}

			f.offerings.On("GetByIDs", ctx, int64(1), []int64{10}).Return(offerings()[:1], nil)
			f.staff.On("GetByID", ctx, int64(5)).Return(staffMember(5), nil)
			f.config.On("GetConfigWithHierarchy", ctx, int64(1), mock.Anything, mock.Anything).Return(nil, configRepo.ErrConfigNotFound)
			f.loader.On("LoadAt", ctx, int64(5), selected).Return(openDay(tt.busy), nil)

			_, err := f.uc.Execute(ctx, req)

			assert.ErrorIs(t, err, ErrSlotNotAvailable)
			assert.ErrorIs(t, err, domain.ErrConflict)
			f.holds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Zero(t, f.metrics.created)
		})
	}
}

func TestExecute_OfferingBuffers(t *testing.T) {
	tests := []struct {
		name       string
		prep, post int
		busy       domain.DayInterval
		wantErr    error
	}{
		// 10:00-11:00 и уборка 15 минут против занятого с 11:00
		{name: "post buffer hits next booking", post: 15, busy: domain.DayInterval{Start: 660, End: 720}, wantErr: ErrSlotNotAvailable},
		// подготовка 10 минут против занятого до 09:55
		{name: "prep buffer hits previous booking", prep: 10, busy: domain.DayInterval{Start: 540, End: 595}, wantErr: ErrSlotNotAvailable},
		{name: "no buffers touching is free", busy: domain.DayInterval{Start: 660, End: 720}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			req := salonRequest()
			req.Services = req.Services[:1]
			list := offerings()[:1]
			list[0].PrepBufferMinutes = tt.prep
			list[0].PostBufferMinutes = tt.post

			f.offerings.On("GetByIDs", ctx, int64(1), []int64{10}).Return(list, nil)
			f.staff.On("GetByID", ctx, int64(5)).Return(staffMember(5), nil)
			f.loader.On("LoadAt", ctx, int64(5), selected).Return(openDay(tt.busy), nil)
			f.holds.On("Create", ctx, mock.AnythingOfType("*domain.BookingHold")).Return(nil)

			_, err := f.uc.Execute(ctx, req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrConflict)
				f.holds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			f.holds.AssertNumberOfCalls(t, "Create", 1)
		})
	}
}

func TestExecute_AtHomeConfigUsesStaffLocation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	staff := staffMember(5)
	staff.LocationID = ptr.Ptr(int64(7))
	req := &Request{
		ProviderID:       1,
		Services:         []ServiceSelection{{OfferingID: 10, StaffID: 5}},
		SelectedDateTime: selected,
		LocationType:     domain.LocationAtHome,
		LocationID:       ptr.Ptr(int64(99)),
		Address:          &domain.Address{Line1: "1 Main Rd", City: "Cape Town"},
		UserID:           ptr.Ptr(int64(100)),
	}
	config := domain.DefaultSchedulingConfig(1)
	config.TravelBufferMinutes = 45

	f.offerings.On("GetByIDs", ctx, int64(1), []int64{10}).Return(offerings()[:1], nil)
	f.staff.On("GetByID", ctx, int64(5)).Return(staff, nil)
	f.config.On("GetConfigWithHierarchy", ctx, int64(1), ptr.Ptr(int64(7)), ptr.Ptr(int64(5))).Return(config, nil)
	// 10:00-11:00 с выездом 45 минут против занятого 11:30-12:00
	f.loader.On("LoadAt", ctx, int64(5), selected).Return(openDay(domain.DayInterval{Start: 690, End: 720}), nil)

	_, err := f.uc.Execute(ctx, req)

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	f.config.AssertExpectations(t)
	f.holds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_OutsideWorkingHours(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := salonRequest()
	req.Services = req.Services[:1]
	req.SelectedDateTime = time.Date(2026, 3, 2, 16, 30, 0, 0, time.UTC)

	f.offerings.On("GetByIDs", ctx, int64(1), []int64{10}).Return(offerings()[:1], nil)
	f.staff.On("GetByID", ctx, int64(5)).Return(staffMember(5), nil)
	f.loader.On("LoadAt", ctx, int64(5), req.SelectedDateTime).Return(openDay(), nil)

	_, err := f.uc.Execute(ctx, req)

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestExecute_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("inactive offering", func(t *testing.T) {
		f := newFixture()
		list := offerings()
		list[1].IsActive = false
		f.offerings.On("GetByIDs", ctx, int64(1), []int64{10, 11}).Return(list, nil)

		_, err := f.uc.Execute(ctx, salonRequest())

		assert.ErrorIs(t, err, ErrOfferingNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("staff of another provider", func(t *testing.T) {
		f := newFixture()
		other := staffMember(5)
		other.ProviderID = 2
		f.offerings.On("GetByIDs", ctx, int64(1), []int64{10, 11}).Return(offerings(), nil)
		f.staff.On("GetByID", ctx, int64(5)).Return(other, nil)

		_, err := f.uc.Execute(ctx, salonRequest())

		assert.ErrorIs(t, err, ErrStaffNotFound)
	})

	t.Run("offering store failure", func(t *testing.T) {
		f := newFixture()
		f.offerings.On("GetByIDs", ctx, int64(1), []int64{10, 11}).Return(nil, errors.New("timeout"))

		_, err := f.uc.Execute(ctx, salonRequest())

		assert.ErrorIs(t, err, domain.ErrTransientStore)
	})

	t.Run("persist failure", func(t *testing.T) {
		f := newFixture()
		f.offerings.On("GetByIDs", ctx, int64(1), []int64{10, 11}).Return(offerings(), nil)
		f.staff.On("GetByID", ctx, mock.Anything).Return(staffMember(5), nil)
		f.loader.On("LoadAt", ctx, mock.Anything, mock.Anything).Return(openDay(), nil)
		f.holds.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))

		_, err := f.uc.Execute(ctx, salonRequest())

		assert.ErrorIs(t, err, ErrInternal)
		assert.Zero(t, f.metrics.created)
	})
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "no provider", mutate: func(r *Request) { r.ProviderID = 0 }},
		{name: "no services", mutate: func(r *Request) { r.Services = nil }},
		{name: "bad staff id", mutate: func(r *Request) { r.Services[0].StaffID = 0 }},
		{name: "in the past", mutate: func(r *Request) { r.SelectedDateTime = now.Add(-time.Minute) }},
		{name: "unknown location type", mutate: func(r *Request) { r.LocationType = "mobile" }},
		{name: "at home without address", mutate: func(r *Request) { r.LocationType = domain.LocationAtHome }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := salonRequest()
			tt.mutate(req)
			err := validateRequest(req, now)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	assert.NoError(t, validateRequest(salonRequest(), now))
}
