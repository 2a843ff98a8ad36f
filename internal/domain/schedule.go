package domain

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// OperatingHours one opening window for a weekday.
// Several rows for the same weekday and level describe split shifts.
// Lookup priority: staff override > location > provider.
type OperatingHours struct {
	ID         int64
	ProviderID int64
	LocationID *int64
	StaffID    *int64
	Weekday    time.Weekday
	OpenTime   types.TimeString
	CloseTime  types.TimeString
	IsClosed   bool
}

// BlockedTimeType kind of unavailability
type BlockedTimeType string

const (
	BlockedBreak       BlockedTimeType = "break"
	BlockedMaintenance BlockedTimeType = "maintenance"
	BlockedUnavailable BlockedTimeType = "unavailable"
)

// BlockedTime a period when staff cannot be booked. StaffID nil blocks the whole provider.
type BlockedTime struct {
	ID         int64
	ProviderID int64
	StaffID    *int64
	StartAt    time.Time
	EndAt      time.Time
	Type       BlockedTimeType
	Reason     *string
}

// Interval returns the blocked range
func (b BlockedTime) Interval() TimeInterval {
	return TimeInterval{Start: b.StartAt, End: b.EndAt}
}
