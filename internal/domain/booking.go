package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending             BookingStatus = "pending"
	StatusConfirmed           BookingStatus = "confirmed"
	StatusInProgress          BookingStatus = "in_progress"
	StatusCompleted           BookingStatus = "completed"
	StatusCancelledByCustomer BookingStatus = "cancelled_by_customer"
	StatusCancelledByProvider BookingStatus = "cancelled_by_provider"
	StatusNoShow              BookingStatus = "no_show"
)

// PaymentMethod how the customer settles the booking
type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentCash       PaymentMethod = "cash"
	PaymentPayAtVenue PaymentMethod = "pay_at_venue"
)

// RequiresOnlinePayment returns true if a checkout link must be issued
func (p PaymentMethod) RequiresOnlinePayment() bool {
	return p == PaymentCard
}

// IsValid returns true for known payment methods
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCard, PaymentCash, PaymentPayAtVenue:
		return true
	}
	return false
}

// Booking represents a confirmed appointment, possibly spanning several services
type Booking struct {
	ID             int64
	BookingNumber  string
	ProviderID     int64
	CustomerUserID int64
	LocationID     *int64
	LocationType   LocationType
	Address        *Address
	Timezone       string
	Status         BookingStatus
	StartAt        time.Time
	EndAt          time.Time

	Services     []BookingService
	Addons       []BookingAddon
	Participants []BookingParticipant

	Subtotal       decimal.Decimal
	TravelFee      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Currency       string

	PaymentMethod PaymentMethod
	PromotionCode *string
	ClientInfo    *ClientInfo
	Notes         *string
	HoldID        *uuid.UUID

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingService one service line of a booking, performed by one staff member
type BookingService struct {
	ID                int64
	BookingID         int64
	OfferingID        int64
	StaffID           int64
	StartAt           time.Time
	EndAt             time.Time
	DurationMinutes   int
	Price             decimal.Decimal
	PrepBufferMinutes int
	PostBufferMinutes int
}

// Interval returns the raw service time
func (s BookingService) Interval() TimeInterval {
	return TimeInterval{Start: s.StartAt, End: s.EndAt}
}

// BusyInterval returns the service time widened by the offering's prep/post buffers
func (s BookingService) BusyInterval() TimeInterval {
	return s.Interval().Expand(
		time.Duration(s.PrepBufferMinutes)*time.Minute,
		time.Duration(s.PostBufferMinutes)*time.Minute,
	)
}

// BookingAddon extra item sold with the booking
type BookingAddon struct {
	OfferingID int64
	Quantity   int
	Price      decimal.Decimal
}

// BookingParticipant additional guest of a group booking
type BookingParticipant struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ClientInfo contact details supplied at checkout
type ClientInfo struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CustomFieldValue answer to a provider-defined booking field
type CustomFieldValue struct {
	FieldID int64  `json:"field_id"`
	Value   string `json:"value"`
}

// FormResponse answer to a provider intake form
type FormResponse struct {
	FormID  int64             `json:"form_id"`
	Answers map[string]string `json:"answers"`
}

// IsActive returns true if the booking is in an active state
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelledByCustomer &&
		b.Status != StatusCancelledByProvider &&
		b.Status != StatusNoShow
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the booking can be moved to another time
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelledByCustomer || b.Status == StatusCancelledByProvider
}

// StaffIDs returns distinct staff members assigned to the booking, in service order
func (b *Booking) StaffIDs() []int64 {
	seen := make(map[int64]struct{}, len(b.Services))
	ids := make([]int64, 0, len(b.Services))
	for _, s := range b.Services {
		if _, ok := seen[s.StaffID]; ok {
			continue
		}
		seen[s.StaffID] = struct{}{}
		ids = append(ids, s.StaffID)
	}
	return ids
}

// Location returns the booking's timezone, UTC if unknown
func (b *Booking) Location() *time.Location {
	return LoadLocation(b.Timezone)
}

// HasConflict reports whether segment, widened by prep/post buffers, overlaps any
// existing service's busy interval. Services of excludeBookingID are ignored.
func HasConflict(segment TimeInterval, prep, post int, existing []*BookingService, excludeBookingID int64) bool {
	candidate := segment.Expand(time.Duration(prep)*time.Minute, time.Duration(post)*time.Minute)
	for _, s := range existing {
		if excludeBookingID != 0 && s.BookingID == excludeBookingID {
			continue
		}
		if candidate.Overlaps(s.BusyInterval()) {
			return true
		}
	}
	return false
}

// LoadLocation resolves an IANA timezone name, falling back to UTC
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
