package create_booking

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

type MockBookingRepository struct{ mock.Mock }

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, booking)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Booking) *domain.Booking); ok {
		return fn(ctx, booking), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetStaffServices(ctx context.Context, staffIDs []int64, from, to time.Time) ([]*domain.BookingService, error) {
	args := m.Called(ctx, staffIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BookingService), args.Error(1)
}

type passThroughTx struct{}

func (passThroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var (
	now   = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	start = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

func newUseCase(repo *MockBookingRepository) *UseCase {
	return NewUseCase(repo, passThroughTx{}, logger.NewNop()).WithTimeProvider(fixedClock{now: now})
}

func request() *Request {
	return &Request{
		HoldID:         uuid.New(),
		ProviderID:     1,
		CustomerUserID: 100,
		LocationType:   domain.LocationAtSalon,
		Services: []domain.BookingService{
			{OfferingID: 10, StaffID: 5, StartAt: start, EndAt: start.Add(time.Hour), DurationMinutes: 60, Price: decimal.NewFromInt(300), PostBufferMinutes: 10},
			{OfferingID: 11, StaffID: 6, StartAt: start.Add(time.Hour), EndAt: start.Add(90 * time.Minute), DurationMinutes: 30, Price: decimal.NewFromInt(150)},
		},
		Addons:        []domain.BookingAddon{{OfferingID: 20, Quantity: 2, Price: decimal.NewFromInt(25)}},
		TravelFee:     decimal.Zero,
		Currency:      "ZAR",
		PaymentMethod: domain.PaymentCash,
	}
}

func TestExecute_CreatesBooking(t *testing.T) {
	repo := &MockBookingRepository{}
	ctx := context.Background()
	req := request()

	repo.On("GetStaffServices", ctx, []int64{5}, mock.Anything, mock.Anything).Return([]*domain.BookingService{}, nil)
	repo.On("GetStaffServices", ctx, []int64{6}, mock.Anything, mock.Anything).Return([]*domain.BookingService{}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).
		Return(func(_ context.Context, b *domain.Booking) *domain.Booking {
			b.ID = 42
			return b
		}, nil)

	resp, err := newUseCase(repo).Execute(ctx, req)

	require.NoError(t, err)
	b := resp.Booking
	assert.Equal(t, int64(42), b.ID)
	assert.Regexp(t, regexp.MustCompile(`^BK-20260301-[A-Z2-9]{6}$`), b.BookingNumber)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.True(t, b.StartAt.Equal(start))
	assert.True(t, b.EndAt.Equal(start.Add(90*time.Minute)))
	assert.True(t, decimal.NewFromInt(500).Equal(b.Subtotal))
	assert.True(t, decimal.NewFromInt(500).Equal(b.TotalAmount))
	require.NotNil(t, b.HoldID)
	assert.Equal(t, req.HoldID, *b.HoldID)
	repo.AssertExpectations(t)
}

func TestExecute_CardPaymentStaysPending(t *testing.T) {
	repo := &MockBookingRepository{}
	ctx := context.Background()
	req := request()
	req.PaymentMethod = domain.PaymentCard
	req.LocationType = domain.LocationAtHome
	req.Address = &domain.Address{Line1: "1 Main Rd", City: "Cape Town"}
	req.TravelFee = decimal.NewFromInt(50)

	repo.On("GetStaffServices", ctx, mock.Anything, mock.Anything, mock.Anything).Return([]*domain.BookingService{}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).
		Return(func(_ context.Context, b *domain.Booking) *domain.Booking { return b }, nil)

	resp, err := newUseCase(repo).Execute(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, resp.Booking.Status)
	assert.True(t, decimal.NewFromInt(550).Equal(resp.Booking.TotalAmount))
}

func TestExecute_Conflicts(t *testing.T) {
	tests := []struct {
		name     string
		existing *domain.BookingService
		wantErr  bool
	}{
		{
			name:     "overlapping booking",
			existing: &domain.BookingService{BookingID: 7, StaffID: 5, StartAt: start.Add(30 * time.Minute), EndAt: start.Add(90 * time.Minute)},
			wantErr:  true,
		},
		{
			name:     "existing starts inside post buffer",
			existing: &domain.BookingService{BookingID: 7, StaffID: 5, StartAt: start.Add(65 * time.Minute), EndAt: start.Add(2 * time.Hour)},
			wantErr:  true,
		},
		{
			name:     "touching after post buffer",
			existing: &domain.BookingService{BookingID: 7, StaffID: 5, StartAt: start.Add(70 * time.Minute), EndAt: start.Add(2 * time.Hour)},
		},
		{
			name:     "existing post buffer ends at start",
			existing: &domain.BookingService{BookingID: 7, StaffID: 5, StartAt: start.Add(-time.Hour), EndAt: start.Add(-15 * time.Minute), PostBufferMinutes: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockBookingRepository{}
			ctx := context.Background()

			repo.On("GetStaffServices", ctx, []int64{5}, mock.Anything, mock.Anything).Return([]*domain.BookingService{tt.existing}, nil)
			repo.On("GetStaffServices", ctx, []int64{6}, mock.Anything, mock.Anything).Return([]*domain.BookingService{}, nil)
			repo.On("Create", ctx, mock.Anything).Return(func(_ context.Context, b *domain.Booking) *domain.Booking { return b }, nil)

			_, err := newUseCase(repo).Execute(ctx, request())

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSlotNotAvailable)
				assert.ErrorIs(t, err, domain.ErrConflict)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExecute_QueriesWidenedRange(t *testing.T) {
	repo := &MockBookingRepository{}
	ctx := context.Background()
	margin := time.Duration(domain.MaxBufferMinutes) * time.Minute

	repo.On("GetStaffServices", ctx, []int64{5}, start.Add(-margin), start.Add(70*time.Minute).Add(margin)).
		Return([]*domain.BookingService{}, nil)
	repo.On("GetStaffServices", ctx, []int64{6}, start.Add(time.Hour).Add(-margin), start.Add(90*time.Minute).Add(margin)).
		Return([]*domain.BookingService{}, nil)
	repo.On("Create", ctx, mock.Anything).Return(func(_ context.Context, b *domain.Booking) *domain.Booking { return b }, nil)

	_, err := newUseCase(repo).Execute(ctx, request())

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestExecute_RepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("lock query fails", func(t *testing.T) {
		repo := &MockBookingRepository{}
		repo.On("GetStaffServices", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		_, err := newUseCase(repo).Execute(ctx, request())

		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("insert fails", func(t *testing.T) {
		repo := &MockBookingRepository{}
		repo.On("GetStaffServices", ctx, mock.Anything, mock.Anything, mock.Anything).Return([]*domain.BookingService{}, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, errors.New("unique violation"))

		_, err := newUseCase(repo).Execute(ctx, request())

		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "no services", mutate: func(r *Request) { r.Services = nil }},
		{name: "no customer", mutate: func(r *Request) { r.CustomerUserID = 0 }},
		{name: "inverted interval", mutate: func(r *Request) { r.Services[0].EndAt = r.Services[0].StartAt }},
		{name: "addon without quantity", mutate: func(r *Request) { r.Addons[0].Quantity = 0 }},
		{name: "at home without address", mutate: func(r *Request) { r.LocationType = domain.LocationAtHome }},
		{name: "unknown payment method", mutate: func(r *Request) { r.PaymentMethod = "crypto" }},
		{name: "participant without name", mutate: func(r *Request) { r.Participants = []domain.BookingParticipant{{Email: "a@b.c"}} }},
		{name: "long notes", mutate: func(r *Request) { r.Notes = ptr.Ptr(string(make([]byte, domain.MaxNotesLength+1))) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request()
			tt.mutate(req)
			err := validateRequest(req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	assert.NoError(t, validateRequest(request()))
}

func TestGenerateBookingNumber(t *testing.T) {
	a, err := generateBookingNumber(now)
	require.NoError(t, err)
	b, err := generateBookingNumber(now)
	require.NoError(t, err)

	assert.Len(t, a, len("BK-20260301-XXXXXX"))
	assert.NotEqual(t, a, b)
}
