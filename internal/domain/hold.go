package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldStatus lifecycle state of a booking hold
type HoldStatus string

const (
	HoldActive   HoldStatus = "active"
	HoldExpired  HoldStatus = "expired"
	HoldConsumed HoldStatus = "consumed"
)

// LocationType where the service is performed
type LocationType string

const (
	LocationAtSalon LocationType = "at_salon"
	LocationAtHome  LocationType = "at_home"
)

// IsValid returns true for known location types
func (l LocationType) IsValid() bool {
	return l == LocationAtSalon || l == LocationAtHome
}

// HoldService schedule snapshot of one service inside a hold
type HoldService struct {
	OfferingID       int64           `json:"offering_id"`
	StaffID          int64           `json:"staff_id"`
	DurationMinutes  int             `json:"duration_minutes"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	ScheduledStartAt time.Time       `json:"scheduled_start_at"`
	ScheduledEndAt   time.Time       `json:"scheduled_end_at"`
}

// Address customer address for at-home services
type Address struct {
	Line1      string   `json:"line1"`
	Line2      string   `json:"line2,omitempty"`
	City       string   `json:"city"`
	PostalCode string   `json:"postal_code,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// HoldMetadata extra data captured at hold time
type HoldMetadata struct {
	ResourceIDs []int64         `json:"resource_ids,omitempty"`
	TravelFee   decimal.Decimal `json:"travel_fee"`
}

// BookingHold short-lived reservation of a staff/time combination before checkout
type BookingHold struct {
	ID                   uuid.UUID
	ProviderID           int64
	StaffID              *int64
	LocationID           *int64
	LocationType         LocationType
	StartAt              time.Time
	EndAt                time.Time
	Services             []HoldService
	Address              *Address
	Metadata             HoldMetadata
	Status               HoldStatus
	ExpiresAt            time.Time
	CreatedByUserID      *int64
	GuestFingerprintHash *string
	BookingID            *int64
	ConsumedAt           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsExpiredAt returns true once now reaches ExpiresAt, regardless of stored status
func (h *BookingHold) IsExpiredAt(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// IsActiveAt returns true only for an active, unexpired hold
func (h *BookingHold) IsActiveAt(now time.Time) bool {
	return h.Status == HoldActive && !h.IsExpiredAt(now)
}

// IsGuest returns true for holds created before the customer authenticated
func (h *BookingHold) IsGuest() bool {
	return h.CreatedByUserID == nil
}

// IsOwnedBy checks ownership: same user, matching guest fingerprint, or an unclaimed guest hold
func (h *BookingHold) IsOwnedBy(userID int64, fingerprint *string) bool {
	if h.CreatedByUserID != nil && *h.CreatedByUserID == userID {
		return true
	}
	if h.GuestFingerprintHash != nil && fingerprint != nil && *fingerprint != "" &&
		HashFingerprint(*fingerprint) == *h.GuestFingerprintHash {
		return true
	}
	return h.IsGuest()
}

// Currency returns the currency of the first service
func (h *BookingHold) Currency() string {
	if len(h.Services) == 0 {
		return ""
	}
	return h.Services[0].Currency
}

// HashFingerprint hex sha256 of a client fingerprint; only the hash is stored
func HashFingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
