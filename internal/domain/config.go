package domain

import "time"

// SchedulingConfig represents the slot configuration of a provider
// Supports hierarchical configuration:
// 1. Staff member at a specific location (provider_id, location_id, staff_id)
// 2. Location-wide (provider_id, location_id, NULL)
// 3. Staff member everywhere (provider_id, NULL, staff_id)
// 4. Provider-wide (provider_id, NULL, NULL)
type SchedulingConfig struct {
	ID                      int64
	ProviderID              int64
	LocationID              *int64 // NULL = config for all locations
	StaffID                 *int64 // NULL = config for all staff
	SlotIntervalMinutes     int
	TravelBufferMinutes     int
	AdvanceBookingDays      int // 0 = unlimited
	MinBookingNoticeMinutes int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// DefaultSchedulingConfig returns the configuration used when nothing is stored
func DefaultSchedulingConfig(providerID int64) *SchedulingConfig {
	return &SchedulingConfig{
		ProviderID:              providerID,
		SlotIntervalMinutes:     DefaultSlotIntervalMinutes,
		TravelBufferMinutes:     DefaultTravelBufferMinutes,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
	}
}

// Level returns a human readable hierarchy level, used in logs
func (c *SchedulingConfig) Level() string {
	switch {
	case c.LocationID != nil && c.StaffID != nil:
		return "staff_at_location"
	case c.LocationID != nil:
		return "location"
	case c.StaffID != nil:
		return "staff"
	default:
		return "provider"
	}
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (c *SchedulingConfig) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}

// TravelBufferFor returns the buffer to apply for the given location type
func (c *SchedulingConfig) TravelBufferFor(locationType LocationType) int {
	if locationType == LocationAtHome {
		return c.TravelBufferMinutes
	}
	return 0
}
