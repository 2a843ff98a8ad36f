// Package availability builds the per-day constraints the slot engine works on.
package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	staffRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/staff"
)

// Loader собирает ограничения доступности сотрудника на дату
type Loader struct {
	staffRepo    StaffRepository
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	logger       Logger
}

// NewLoader создает новый экземпляр загрузчика
func NewLoader(
	staffRepo StaffRepository,
	scheduleRepo ScheduleRepository,
	bookingRepo BookingRepository,
	logger Logger,
) *Loader {
	return &Loader{
		staffRepo:    staffRepo,
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		logger:       logger,
	}
}

// Load загружает ограничения на календарную дату date (год, месяц, день) в часовом поясе сотрудника
func (l *Loader) Load(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityConstraints, error) {
	staff, err := l.getStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	day := domain.DateIn(date, domain.LoadLocation(staff.Timezone))
	return l.load(ctx, staff, day)
}

// LoadAt загружает ограничения на локальный день сотрудника, в который попадает момент at
func (l *Loader) LoadAt(ctx context.Context, staffID int64, at time.Time) (*domain.AvailabilityConstraints, error) {
	staff, err := l.getStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	day := domain.StartOfDay(at.In(domain.LoadLocation(staff.Timezone)))
	return l.load(ctx, staff, day)
}

func (l *Loader) getStaff(ctx context.Context, staffID int64) (*domain.Staff, error) {
	staff, err := l.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			l.logger.Warn("Load: staff id=%d not found", staffID)
			return nil, ErrStaffNotFound
		}
		l.logger.Error("Load: failed to get staff id=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: get staff: %v", ErrStoreUnavailable, err)
	}
	return staff, nil
}

func (l *Loader) load(ctx context.Context, staff *domain.Staff, day time.Time) (*domain.AvailabilityConstraints, error) {
	dayEnd := day.AddDate(0, 0, 1)
	// Бронирования с буферами могут начинаться накануне и заходить в этот день
	margin := time.Duration(domain.MaxBufferMinutes) * time.Minute

	var (
		hours    []*domain.OperatingHours
		services []*domain.BookingService
		blocked  []*domain.BlockedTime
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hours, err = l.scheduleRepo.GetOperatingHours(gctx, staff.ProviderID, day.Weekday())
		if err != nil {
			return fmt.Errorf("operating hours: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		services, err = l.bookingRepo.GetStaffServices(gctx, []int64{staff.ID}, day.Add(-margin), dayEnd.Add(margin))
		if err != nil {
			return fmt.Errorf("bookings: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		blocked, err = l.scheduleRepo.GetBlockedTimes(gctx, staff.ProviderID, staff.ID, day, dayEnd)
		if err != nil {
			return fmt.Errorf("blocked time: %v", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		l.logger.Error("Load: staff=%d, date=%s: %v", staff.ID, day.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	busy := make([]domain.DayInterval, 0, len(services)+len(blocked))
	for _, s := range services {
		if s.StaffID != staff.ID {
			continue
		}
		busy = append(busy, s.BusyInterval().ToDay(day))
	}
	for _, b := range blocked {
		busy = append(busy, b.Interval().ToDay(day))
	}
	sort.SliceStable(busy, func(i, j int) bool { return busy[i].Start < busy[j].Start })

	return &domain.AvailabilityConstraints{
		StaffID:          staff.ID,
		Date:             day,
		OperatingWindows: l.resolveWindows(hours, staff),
		BusyIntervals:    busy,
	}, nil
}

// resolveWindows выбирает самый специфичный уровень часов работы:
// 1. Сотрудник (staff_id совпадает, location_id пустой или совпадает)
// 2. Локация сотрудника
// 3. Провайдер
// Если на выбранном уровне день помечен закрытым, окон нет.
func (l *Loader) resolveWindows(rows []*domain.OperatingHours, staff *domain.Staff) []domain.DayInterval {
	var staffRows, locationRows, providerRows []*domain.OperatingHours
	for _, h := range rows {
		switch {
		case h.StaffID != nil:
			if *h.StaffID != staff.ID {
				continue
			}
			if h.LocationID != nil && (staff.LocationID == nil || *h.LocationID != *staff.LocationID) {
				continue
			}
			staffRows = append(staffRows, h)
		case h.LocationID != nil:
			if staff.LocationID != nil && *h.LocationID == *staff.LocationID {
				locationRows = append(locationRows, h)
			}
		default:
			providerRows = append(providerRows, h)
		}
	}

	level := providerRows
	if len(staffRows) > 0 {
		level = staffRows
	} else if len(locationRows) > 0 {
		level = locationRows
	}

	windows := make([]domain.DayInterval, 0, len(level))
	for _, h := range level {
		if h.IsClosed {
			return []domain.DayInterval{}
		}
		w, err := domain.NewDayIntervalFromTimes(h.OpenTime, h.CloseTime)
		if err != nil {
			l.logger.Warn("Load: skipping operating hours id=%d: %v", h.ID, err)
			continue
		}
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })
	return windows
}
