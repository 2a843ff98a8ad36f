package create_pay_run

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модель запроса на создание платежной ведомости
type Request struct {
	UserID         int64
	ProviderID     int64
	PayPeriodStart time.Time // календарный день, включительно
	PayPeriodEnd   time.Time // календарный день, включительно
	PeriodType     domain.PeriodType
	AllowWarnings  bool
}

// Response модель ответа с созданной ведомостью
type Response struct {
	PayRunID  int64
	ItemCount int
	Items     []*domain.PayRunItem
	Warnings  []domain.PayRunConfigurationWarning
}
