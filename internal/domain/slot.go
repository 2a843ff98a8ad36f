package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// AvailabilityConstraints everything the slot engine needs for one staff member and date.
// BusyIntervals may be unsorted and overlapping.
type AvailabilityConstraints struct {
	StaffID          int64
	Date             time.Time // local midnight in the provider's timezone
	OperatingWindows []DayInterval
	BusyIntervals    []DayInterval
}

// SlotRequest parameters of a slot calculation.
type SlotRequest struct {
	DurationMinutes     int
	SlotIntervalMinutes int
	TravelBufferMinutes int
}

func (r SlotRequest) Validate() error {
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if r.SlotIntervalMinutes <= 0 {
		return fmt.Errorf("%w: slot interval must be positive", ErrValidation)
	}
	if r.TravelBufferMinutes < 0 {
		return fmt.Errorf("%w: travel buffer must not be negative", ErrValidation)
	}
	return nil
}

// Slot candidate start time with its availability flag.
type Slot struct {
	Time      types.TimeString
	Available bool
}
