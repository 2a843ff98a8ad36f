package list_scheduling_configs

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/config/models"
)

type ConfigService interface {
	GetAllByProvider(ctx context.Context, providerID int64, userID int64) (*models.ConfigListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
