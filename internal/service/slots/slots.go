// Package slots computes bookable start times from availability constraints.
// All functions are pure: no I/O, no clock.
package slots

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// Calculate генерирует все слоты-кандидаты для окон работы и помечает доступность.
//
// Кандидат начинается с начала окна и идет с шагом SlotIntervalMinutes,
// пока start + duration <= конец окна. Занятый кандидатом интервал:
// [start - travel, start + duration + travel). Кандидат доступен, только если
// этот интервал не пересекается ни с одним занятым интервалом (строгая проверка,
// соприкосновение не считается пересечением).
//
// Буфер на дорогу применяется только к кандидату, занятые интервалы уже содержат
// prep/post буферы существующих бронирований.
func Calculate(c *domain.AvailabilityConstraints, req domain.SlotRequest) ([]domain.Slot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		return []domain.Slot{}, nil
	}

	// Шаг 1: собираем старты кандидатов по всем окнам, дубликаты из пересекающихся окон отбрасываем
	seen := make(map[int]struct{})
	starts := make([]int, 0)
	for _, window := range c.OperatingWindows {
		for start := window.Start; start+req.DurationMinutes <= window.End; start += req.SlotIntervalMinutes {
			if start < 0 || start >= domain.MinutesPerDay {
				continue
			}
			if _, ok := seen[start]; ok {
				continue
			}
			seen[start] = struct{}{}
			starts = append(starts, start)
		}
	}
	sort.Ints(starts)

	// Шаг 2: проверяем каждого кандидата на пересечение с занятыми интервалами
	result := make([]domain.Slot, 0, len(starts))
	for _, start := range starts {
		occupied := domain.DayInterval{Start: start, End: start + req.DurationMinutes}.
			Expand(req.TravelBufferMinutes, req.TravelBufferMinutes)

		ts, err := types.NewTimeStringFromMinutes(start)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		result = append(result, domain.Slot{
			Time:      ts,
			Available: !overlapsAny(occupied, c.BusyIntervals),
		})
	}

	return result, nil
}

// IsFree проверяет конкретный интервал: он должен целиком помещаться в одно из окон,
// а интервал, расширенный на travel, не должен пересекаться с занятыми.
func IsFree(c *domain.AvailabilityConstraints, interval domain.DayInterval, travel int) bool {
	return IsFreeWithBuffers(c, interval, 0, 0, travel)
}

// IsFreeWithBuffers как IsFree, но занятые интервалы проверяются с учетом подготовки
// до услуги и уборки после нее. В окно работы должна помещаться только сама услуга.
func IsFreeWithBuffers(c *domain.AvailabilityConstraints, interval domain.DayInterval, prep, post, travel int) bool {
	if c == nil || interval.Validate() != nil {
		return false
	}

	inWindow := false
	for _, window := range c.OperatingWindows {
		if window.Contains(interval) {
			inWindow = true
			break
		}
	}
	if !inWindow {
		return false
	}

	return !overlapsAny(interval.Expand(prep+travel, post+travel), c.BusyIntervals)
}

func overlapsAny(candidate domain.DayInterval, busy []domain.DayInterval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
