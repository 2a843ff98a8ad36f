package domain

// Default configuration values
const (
	DefaultSlotIntervalMinutes     = 15
	DefaultTravelBufferMinutes     = 30
	DefaultAdvanceBookingDays      = 0  // 0 = unlimited
	DefaultMinBookingNoticeMinutes = 60 // 1 hour
)

// Business validation constants
const (
	MinSlotIntervalMinutes      = 5
	MaxSlotIntervalMinutes      = 240
	MaxTravelBufferMinutes      = 240
	MaxAdvanceBookingDays       = 365   // 1 year
	MaxBookingNoticeMinutes     = 10080 // 1 week
	MaxBookingDurationMinutes   = 12 * 60
	MaxServicesPerBooking       = 10
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500

	// MaxBufferMinutes upper bound of prep/post buffers, used to widen range queries
	MaxBufferMinutes = 240
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов неактивных бронирований
// Используется для фильтрации при построении занятых интервалов
var InactiveStatuses = []BookingStatus{
	StatusCancelledByCustomer,
	StatusCancelledByProvider,
	StatusNoShow,
}
