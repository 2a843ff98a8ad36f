package consume_hold

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	holdRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/hold"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

// Fakes

// holdStore хранит одно удержание и повторяет условный UPDATE репозитория
type holdStore struct {
	mu          sync.Mutex
	hold        *domain.BookingHold
	markCalls   int
	getErr      error
	consumedFor []int64
}

func (s *holdStore) GetByID(_ context.Context, id uuid.UUID) (*domain.BookingHold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.hold == nil || s.hold.ID != id {
		return nil, holdRepo.ErrHoldNotFound
	}
	copied := *s.hold
	return &copied, nil
}

func (s *holdStore) MarkConsumed(_ context.Context, id uuid.UUID, userID, bookingID int64, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCalls++
	if s.hold.ID != id || s.hold.Status != domain.HoldActive || !s.hold.ExpiresAt.After(now) {
		return false, nil
	}
	s.hold.Status = domain.HoldConsumed
	s.hold.CreatedByUserID = &userID
	s.hold.BookingID = &bookingID
	s.consumedFor = append(s.consumedFor, bookingID)
	return true, nil
}

type txState struct {
	bookings []*domain.Booking
	events   []*domain.Event
}

type txKey struct{}

// fakeTx фиксирует изменения только при успешном завершении функции
type fakeTx struct {
	mu        sync.Mutex
	committed []*domain.Booking
	events    []*domain.Event
}

func (t *fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	state := &txState{}
	if err := fn(context.WithValue(ctx, txKey{}, state)); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.committed = append(t.committed, state.bookings...)
	t.events = append(t.events, state.events...)
	return nil
}

func stateOf(ctx context.Context) *txState {
	return ctx.Value(txKey{}).(*txState)
}

type fakeCreator struct {
	nextID    int64
	err       error
	onExecute func()
	requests  []*create_booking.Request
	mu        sync.Mutex
}

func (c *fakeCreator) Execute(ctx context.Context, req *create_booking.Request) (*create_booking.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	if c.onExecute != nil {
		c.onExecute()
	}
	if c.err != nil {
		return nil, c.err
	}
	id := atomic.AddInt64(&c.nextID, 1)
	total := req.TravelFee
	for _, s := range req.Services {
		total = total.Add(s.Price)
	}
	b := &domain.Booking{
		ID:             id,
		BookingNumber:  fmt.Sprintf("BK-20260301-ABC%03d", id),
		ProviderID:     req.ProviderID,
		CustomerUserID: req.CustomerUserID,
		Status:         domain.StatusConfirmed,
		StartAt:        req.Services[0].StartAt,
		Services:       req.Services,
		TotalAmount:    total,
		Currency:       req.Currency,
		PaymentMethod:  req.PaymentMethod,
		ClientInfo:     req.ClientInfo,
		Timezone:       req.Timezone,
	}
	stateOf(ctx).bookings = append(stateOf(ctx).bookings, b)
	return &create_booking.Response{Booking: b}, nil
}

type fakeOutbox struct{}

func (fakeOutbox) Insert(ctx context.Context, event *domain.Event) error {
	stateOf(ctx).events = append(stateOf(ctx).events, event)
	return nil
}

type MockBookingRepository struct{ mock.Mock }

func (m *MockBookingRepository) AttachCustomFields(ctx context.Context, bookingID int64, values []domain.CustomFieldValue) error {
	return m.Called(ctx, bookingID, values).Error(0)
}

func (m *MockBookingRepository) AttachFormResponses(ctx context.Context, bookingID int64, responses []domain.FormResponse) error {
	return m.Called(ctx, bookingID, responses).Error(0)
}

type fakeOfferings struct{ list []*domain.Offering }

func (f fakeOfferings) GetByIDs(_ context.Context, providerID int64, ids []int64) ([]*domain.Offering, error) {
	result := make([]*domain.Offering, 0)
	for _, o := range f.list {
		for _, id := range ids {
			if o.ID == id && o.ProviderID == providerID {
				result = append(result, o)
				break
			}
		}
	}
	return result, nil
}

type fakeStaff struct{}

func (fakeStaff) GetByID(_ context.Context, id int64) (*domain.Staff, error) {
	return &domain.Staff{ID: id, ProviderID: 1, IsActive: true, Timezone: "Africa/Johannesburg"}, nil
}

type recordingInvalidator struct {
	mu       sync.Mutex
	bookings []*domain.Booking
}

func (r *recordingInvalidator) InvalidateBooking(b *domain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, b)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) InitializeCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type recordingMetrics struct {
	mu       sync.Mutex
	consumed int
	rejected []string
}

func (r *recordingMetrics) IncHoldsConsumed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumed++
}

func (r *recordingMetrics) IncHoldConsumeRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, reason)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// Helpers

var (
	now   = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	start = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	holds       *holdStore
	creator     *fakeCreator
	tx          *fakeTx
	bookings    *MockBookingRepository
	invalidator *recordingInvalidator
	payments    *MockPaymentGateway
	metrics     *recordingMetrics
	clock       fixedClock
}

func newFixture(hold *domain.BookingHold) *fixture {
	return &fixture{
		holds:       &holdStore{hold: hold},
		creator:     &fakeCreator{},
		tx:          &fakeTx{},
		bookings:    &MockBookingRepository{},
		invalidator: &recordingInvalidator{},
		payments:    &MockPaymentGateway{},
		metrics:     &recordingMetrics{},
		clock:       fixedClock{now: now},
	}
}

func (f *fixture) useCase() *UseCase {
	offerings := fakeOfferings{list: []*domain.Offering{
		{ID: 10, ProviderID: 1, DurationMinutes: 60, Price: decimal.NewFromInt(300), IsActive: true, PrepBufferMinutes: 5, PostBufferMinutes: 10},
		{ID: 20, ProviderID: 1, DurationMinutes: 0, Price: decimal.NewFromInt(25), IsActive: true},
	}}
	return NewUseCase(f.holds, f.creator, f.bookings, offerings, fakeStaff{}, fakeOutbox{}, f.invalidator,
		f.payments, f.metrics, f.tx, logger.NewNop()).WithTimeProvider(f.clock)
}

func activeHold() *domain.BookingHold {
	return &domain.BookingHold{
		ID:           uuid.New(),
		ProviderID:   1,
		StaffID:      ptr.Ptr(int64(5)),
		LocationType: domain.LocationAtSalon,
		StartAt:      start,
		EndAt:        start.Add(time.Hour),
		Services: []domain.HoldService{{
			OfferingID:       10,
			StaffID:          5,
			DurationMinutes:  60,
			Price:            decimal.NewFromInt(300),
			Currency:         "ZAR",
			ScheduledStartAt: start,
			ScheduledEndAt:   start.Add(time.Hour),
		}},
		Metadata:  domain.HoldMetadata{TravelFee: decimal.Zero},
		Status:    domain.HoldActive,
		ExpiresAt: now.Add(10 * time.Minute),
	}
}

func TestExecute_ConsumesGuestHold(t *testing.T) {
	hold := activeHold()
	f := newFixture(hold)
	ctx := context.Background()

	resp, err := f.useCase().Execute(ctx, &Request{
		HoldID:        hold.ID,
		UserID:        100,
		PaymentMethod: domain.PaymentCash,
		Addons:        []AddonSelection{{OfferingID: 20, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.BookingID)
	assert.Nil(t, resp.PaymentURL)

	// удержание погашено и закреплено за пользователем
	assert.Equal(t, domain.HoldConsumed, f.holds.hold.Status)
	assert.Equal(t, int64(100), *f.holds.hold.CreatedByUserID)
	assert.Equal(t, int64(1), *f.holds.hold.BookingID)

	// запрос на бронирование собран из снимка удержания
	req := f.creator.requests[0]
	assert.Equal(t, hold.ID, req.HoldID)
	assert.Equal(t, "Africa/Johannesburg", req.Timezone)
	assert.Equal(t, 5, req.Services[0].PrepBufferMinutes)
	assert.Equal(t, 10, req.Services[0].PostBufferMinutes)
	assert.True(t, req.Services[0].StartAt.Equal(start))
	require.Len(t, req.Addons, 1)
	assert.True(t, decimal.NewFromInt(25).Equal(req.Addons[0].Price))

	require.Len(t, f.tx.committed, 1)
	require.Len(t, f.tx.events, 2)
	assert.Equal(t, domain.EventBookingCreated, f.tx.events[0].Type)
	assert.Equal(t, domain.EventHoldConsumed, f.tx.events[1].Type)

	assert.Len(t, f.invalidator.bookings, 1)
	assert.Equal(t, 1, f.metrics.consumed)
	f.payments.AssertNotCalled(t, "InitializeCheckout", mock.Anything, mock.Anything)
}

func TestExecute_CardPaymentReturnsURL(t *testing.T) {
	hold := activeHold()
	f := newFixture(hold)
	ctx := context.Background()

	f.payments.On("InitializeCheckout", ctx, mock.MatchedBy(func(r paymentgateway.CheckoutRequest) bool {
		return r.BookingID == 1 && r.Email == "a@b.co" && r.Amount.Equal(decimal.NewFromInt(300)) && r.Currency == "ZAR"
	})).Return("https://pay.example/abc", nil)

	resp, err := f.useCase().Execute(ctx, &Request{
		HoldID:        hold.ID,
		UserID:        100,
		PaymentMethod: domain.PaymentCard,
		ClientInfo:    &domain.ClientInfo{Name: "Lee", Email: "a@b.co"},
	})

	require.NoError(t, err)
	require.NotNil(t, resp.PaymentURL)
	assert.Equal(t, "https://pay.example/abc", *resp.PaymentURL)
}

func TestExecute_PaymentFailureKeepsBooking(t *testing.T) {
	hold := activeHold()
	f := newFixture(hold)
	ctx := context.Background()

	f.payments.On("InitializeCheckout", ctx, mock.Anything).Return("", errors.New("gateway down"))

	resp, err := f.useCase().Execute(ctx, &Request{HoldID: hold.ID, UserID: 100, PaymentMethod: domain.PaymentCard})

	require.NoError(t, err)
	assert.Nil(t, resp.PaymentURL)
	assert.Len(t, f.tx.committed, 1)
}

func TestExecute_RejectionsDoNotMutate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(h *domain.BookingHold)
		clock   time.Time
		req     func(id uuid.UUID) *Request
		wantErr error
		reason  string
	}{
		{
			name:    "not found",
			req:     func(uuid.UUID) *Request { return &Request{HoldID: uuid.New(), UserID: 100} },
			wantErr: ErrHoldNotFound,
			reason:  reasonNotFound,
		},
		{
			name:    "already consumed",
			mutate:  func(h *domain.BookingHold) { h.Status = domain.HoldConsumed },
			wantErr: ErrHoldInactive,
			reason:  reasonInactive,
		},
		{
			name:    "swept as expired",
			mutate:  func(h *domain.BookingHold) { h.Status = domain.HoldExpired },
			wantErr: ErrHoldInactive,
			reason:  reasonInactive,
		},
		{
			// создано с expires_at = now+10m, погашение в now+11m, статус все еще active
			name:    "expired without sweep",
			clock:   now.Add(11 * time.Minute),
			wantErr: ErrHoldExpired,
			reason:  reasonExpired,
		},
		{
			name:    "owned by another user",
			mutate:  func(h *domain.BookingHold) { h.CreatedByUserID = ptr.Ptr(int64(7)) },
			wantErr: ErrHoldOwnership,
			reason:  reasonOwnership,
		},
		{
			name: "expired hold of another user reports expiry first",
			mutate: func(h *domain.BookingHold) {
				h.CreatedByUserID = ptr.Ptr(int64(7))
			},
			clock:   now.Add(10 * time.Minute),
			wantErr: ErrHoldExpired,
			reason:  reasonExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hold := activeHold()
			if tt.mutate != nil {
				tt.mutate(hold)
			}
			snapshot := *hold
			f := newFixture(hold)
			if !tt.clock.IsZero() {
				f.clock = fixedClock{now: tt.clock}
			}
			req := &Request{HoldID: hold.ID, UserID: 100}
			if tt.req != nil {
				req = tt.req(hold.ID)
			}

			_, err := f.useCase().Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.creator.requests)
			assert.Zero(t, f.holds.markCalls)
			assert.Empty(t, f.tx.committed)
			assert.Equal(t, snapshot, *f.holds.hold)
			assert.Equal(t, []string{tt.reason}, f.metrics.rejected)
		})
	}
}

func TestExecute_ErrorKinds(t *testing.T) {
	hold := activeHold()
	hold.CreatedByUserID = ptr.Ptr(int64(7))
	f := newFixture(hold)
	f.clock = fixedClock{now: now.Add(time.Hour)}

	_, err := f.useCase().Execute(context.Background(), &Request{HoldID: hold.ID, UserID: 100})

	assert.ErrorIs(t, err, domain.ErrHoldExpired)
	assert.NotErrorIs(t, err, domain.ErrHoldOwnership)
	assert.NotErrorIs(t, err, domain.ErrHoldInactive)
}

func TestExecute_FingerprintProvesOwnership(t *testing.T) {
	hold := activeHold()
	hold.CreatedByUserID = ptr.Ptr(int64(7))
	hold.GuestFingerprintHash = ptr.Ptr(domain.HashFingerprint("device-abc"))
	f := newFixture(hold)

	_, err := f.useCase().Execute(context.Background(), &Request{
		HoldID:      hold.ID,
		UserID:      100,
		Fingerprint: ptr.Ptr("device-abc"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(100), *f.holds.hold.CreatedByUserID)
}

func TestExecute_BookingConflictLeavesHoldActive(t *testing.T) {
	hold := activeHold()
	f := newFixture(hold)
	f.creator.err = create_booking.ErrSlotNotAvailable

	_, err := f.useCase().Execute(context.Background(), &Request{HoldID: hold.ID, UserID: 100})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.HoldActive, f.holds.hold.Status)
	assert.Zero(t, f.holds.markCalls)
	assert.Empty(t, f.tx.events)
	assert.Empty(t, f.invalidator.bookings)
	assert.Equal(t, []string{reasonConflict}, f.metrics.rejected)
}

func TestExecute_HoldSweptDuringBookingCreation(t *testing.T) {
	hold := activeHold()
	f := newFixture(hold)
	// свипер помечает удержание истекшим, пока создается бронирование
	f.creator.onExecute = func() {
		f.holds.mu.Lock()
		f.holds.hold.Status = domain.HoldExpired
		f.holds.mu.Unlock()
	}

	_, err := f.useCase().Execute(context.Background(), &Request{HoldID: hold.ID, UserID: 100})

	assert.ErrorIs(t, err, ErrHoldInactive)
	assert.Equal(t, 1, f.holds.markCalls)
	assert.Len(t, f.creator.requests, 1)
	assert.Empty(t, f.tx.committed)
	assert.Empty(t, f.tx.events)
	assert.Empty(t, f.invalidator.bookings)
}

func TestExecute_ConcurrentConsumeCreatesOneBooking(t *testing.T) {
	hold := activeHold()
	f := newFixture(hold)
	uc := f.useCase()

	const callers = 2
	var (
		wg   sync.WaitGroup
		errs = make([]error, callers)
		resp = make([]*Response, callers)
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			resp[i], errs[i] = uc.Execute(context.Background(), &Request{HoldID: hold.ID, UserID: 100})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i := 0; i < callers; i++ {
		if errs[i] == nil {
			succeeded++
			assert.NotZero(t, resp[i].BookingID)
			continue
		}
		assert.ErrorIs(t, errs[i], domain.ErrHoldInactive)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.tx.committed, 1)
	assert.Len(t, f.tx.events, 2)
	assert.Len(t, f.holds.consumedFor, 1)
	assert.Len(t, f.invalidator.bookings, 1)
}

func TestExecute_ExtrasAreBestEffort(t *testing.T) {
	hold := activeHold()
	f := newFixture(hold)
	ctx := context.Background()
	fields := []domain.CustomFieldValue{{FieldID: 1, Value: "short hair"}}
	forms := []domain.FormResponse{{FormID: 2, Answers: map[string]string{"allergies": "none"}}}

	f.bookings.On("AttachCustomFields", ctx, int64(1), fields).Return(errors.New("db down"))
	f.bookings.On("AttachFormResponses", ctx, int64(1), forms).Return(nil)

	resp, err := f.useCase().Execute(ctx, &Request{
		HoldID:            hold.ID,
		UserID:            100,
		CustomFieldValues: fields,
		FormResponses:     forms,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.BookingID)
	f.bookings.AssertExpectations(t)
}

func TestExecute_UnknownAddon(t *testing.T) {
	hold := activeHold()
	f := newFixture(hold)

	_, err := f.useCase().Execute(context.Background(), &Request{
		HoldID: hold.ID,
		UserID: 100,
		Addons: []AddonSelection{{OfferingID: 99, Quantity: 1}},
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.creator.requests)
}

func TestExecute_StoreFailure(t *testing.T) {
	hold := activeHold()
	f := newFixture(hold)
	f.holds.getErr = errors.New("connection reset")

	_, err := f.useCase().Execute(context.Background(), &Request{HoldID: hold.ID, UserID: 100})

	assert.ErrorIs(t, err, domain.ErrTransientStore)
}
