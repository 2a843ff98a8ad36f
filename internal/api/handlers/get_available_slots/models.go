package get_available_slots

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель слота
type SlotResponse struct {
	Time      string `json:"time"` // "10:30"
	Available bool   `json:"available"`
}

// AvailableSlotsResponse HTTP модель ответа
type AvailableSlotsResponse struct {
	StaffID             int64          `json:"staffId"`
	Date                string         `json:"date"`
	DurationMinutes     int            `json:"durationMinutes,omitempty"`
	SlotIntervalMinutes int            `json:"slotIntervalMinutes,omitempty"`
	TravelBufferMinutes int            `json:"travelBufferMinutes"`
	Slots               []SlotResponse `json:"slots"`
	Degraded            bool           `json:"degraded,omitempty"`
}

// ToUseCaseRequest формирует запрос к use case из query параметров
func ToUseCaseRequest(staffID int64, query url.Values) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, query.Get("date"))
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	req := &getAvailableSlots.Request{
		StaffID:      staffID,
		Date:         date,
		LocationType: domain.LocationType(query.Get("locationType")),
	}

	if v := query.Get("durationMinutes"); v != "" {
		if req.DurationMinutes, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("durationMinutes: %w", err)
		}
	}

	if req.OfferingIDs, err = handlers.ParseIDList(query.Get("offeringIds")); err != nil {
		return nil, fmt.Errorf("offeringIds: %w", err)
	}

	if v := query.Get("travelBufferMinutes"); v != "" {
		travel, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("travelBufferMinutes: %w", err)
		}
		req.TravelBufferMinutes = &travel
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{Time: s.Time.String(), Available: s.Available})
	}
	return &AvailableSlotsResponse{
		StaffID:             resp.StaffID,
		Date:                resp.Date.Format(domain.DateFormat),
		DurationMinutes:     resp.DurationMinutes,
		SlotIntervalMinutes: resp.SlotIntervalMinutes,
		TravelBufferMinutes: resp.TravelBufferMinutes,
		Slots:               slots,
	}
}

// DegradedResponse пустой список слотов, когда хранилище недоступно
func DegradedResponse(req *getAvailableSlots.Request) *AvailableSlotsResponse {
	return &AvailableSlotsResponse{
		StaffID:  req.StaffID,
		Date:     req.Date.Format(domain.DateFormat),
		Slots:    []SlotResponse{},
		Degraded: true,
	}
}
