package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модель запроса на получение слотов сотрудника
type Request struct {
	StaffID             int64
	Date                time.Time // Календарная дата, интерпретируется в часовом поясе сотрудника
	DurationMinutes     int       // Длительность, если OfferingIDs не переданы
	OfferingIDs         []int64   // Услуги подряд, длительности суммируются
	LocationType        domain.LocationType
	TravelBufferMinutes *int // Переопределяет буфер на дорогу из конфигурации
}

// Response модель ответа со списком слотов
type Response struct {
	StaffID             int64
	Date                time.Time
	DurationMinutes     int
	SlotIntervalMinutes int
	TravelBufferMinutes int
	Slots               []domain.Slot
}
