package invalidation

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type recordingCache struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (c *recordingCache) Invalidate(_ context.Context, staffID int64, date time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, date.Format(domain.DateFormat)+"/"+strconv.FormatInt(staffID, 10))
	return c.err
}

func (c *recordingCache) sorted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.calls...)
	sort.Strings(out)
	return out
}

func TestInvalidateBooking_DistinctStaffDays(t *testing.T) {
	cache := &recordingCache{}
	inv := NewInvalidator(cache, time.Second, logger.NewNop())

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) // 10:00 в Johannesburg
	booking := &domain.Booking{
		Timezone: "Africa/Johannesburg",
		Services: []domain.BookingService{
			{StaffID: 5, StartAt: start, EndAt: start.Add(time.Hour)},
			{StaffID: 5, StartAt: start.Add(time.Hour), EndAt: start.Add(2 * time.Hour)},
			{StaffID: 6, StartAt: start.Add(2 * time.Hour), EndAt: start.Add(3 * time.Hour)},
		},
	}

	inv.InvalidateBooking(booking)
	inv.Wait()

	assert.Equal(t, []string{"2026-03-02/5", "2026-03-02/6"}, cache.sorted())
}

func TestInvalidateBooking_SpansMidnightWithBuffer(t *testing.T) {
	cache := &recordingCache{}
	inv := NewInvalidator(cache, time.Second, logger.NewNop())

	// 23:00-23:30 UTC, post buffer 45 минут уходит на следующие сутки
	start := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	booking := &domain.Booking{
		Services: []domain.BookingService{
			{StaffID: 5, StartAt: start, EndAt: start.Add(30 * time.Minute), PostBufferMinutes: 45},
		},
	}

	inv.InvalidateBooking(booking)
	inv.Wait()

	assert.Equal(t, []string{"2026-03-02/5", "2026-03-03/5"}, cache.sorted())
}

func TestInvalidateBooking_EndingAtMidnightStaysOnOneDay(t *testing.T) {
	cache := &recordingCache{}
	inv := NewInvalidator(cache, time.Second, logger.NewNop())

	start := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	inv.InvalidateBooking(&domain.Booking{
		Services: []domain.BookingService{{StaffID: 5, StartAt: start, EndAt: start.Add(time.Hour)}},
	})
	inv.Wait()

	assert.Equal(t, []string{"2026-03-02/5"}, cache.sorted())
}

func TestInvalidate_ErrorIsSwallowed(t *testing.T) {
	cache := &recordingCache{err: errors.New("redis down")}
	inv := NewInvalidator(cache, time.Second, logger.NewNop())

	require.NotPanics(t, func() {
		inv.Invalidate(5, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
		inv.Wait()
	})
	assert.Len(t, cache.sorted(), 1)
}
