package invalidation

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Invalidator сбрасывает кэш доступности после изменения бронирований.
// Сброс выполняется асинхронно, ошибки только логируются.
type Invalidator struct {
	cache   Cache
	timeout time.Duration
	logger  Logger
	wg      sync.WaitGroup
}

// NewInvalidator создает новый экземпляр
func NewInvalidator(cache Cache, timeout time.Duration, logger Logger) *Invalidator {
	return &Invalidator{
		cache:   cache,
		timeout: timeout,
		logger:  logger,
	}
}

// Invalidate запускает сброс кэша сотрудника на дату и сразу возвращается
func (i *Invalidator) Invalidate(staffID int64, date time.Time) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
		defer cancel()

		if err := i.cache.Invalidate(ctx, staffID, date); err != nil {
			i.logger.Warn("Invalidate: staff_id=%d, date=%s: %v", staffID, date.Format(domain.DateFormat), err)
			return
		}
		i.logger.Info("Invalidate: staff_id=%d, date=%s", staffID, date.Format(domain.DateFormat))
	}()
}

// InvalidateBooking сбрасывает кэш для каждой пары (сотрудник, дата), которую занимают услуги бронирования
func (i *Invalidator) InvalidateBooking(b *domain.Booking) {
	for _, key := range affectedDays(b) {
		i.Invalidate(key.staffID, key.date)
	}
}

// Wait дожидается завершения запущенных сбросов
func (i *Invalidator) Wait() {
	i.wg.Wait()
}

type staffDay struct {
	staffID int64
	date    time.Time
}

// affectedDays возвращает уникальные пары (сотрудник, локальная дата) с учетом буферов
func affectedDays(b *domain.Booking) []staffDay {
	type dayKey struct {
		staffID int64
		date    string
	}

	loc := b.Location()
	seen := make(map[dayKey]struct{})
	var days []staffDay

	for _, s := range b.Services {
		busy := s.BusyInterval()
		// интервал полуоткрытый: последний занятый момент на наносекунду раньше End
		for _, t := range []time.Time{busy.Start, busy.End.Add(-time.Nanosecond)} {
			date := domain.StartOfDay(t.In(loc))
			key := dayKey{staffID: s.StaffID, date: date.Format(domain.DateFormat)}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			days = append(days, staffDay{staffID: s.StaffID, date: date})
		}
	}
	return days
}
