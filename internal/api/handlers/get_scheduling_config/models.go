package get_scheduling_config

import (
	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/config/models"
)

// ToServiceRequest формирует запрос к сервису из URL и query параметров
func ToServiceRequest(providerID int64, locationIDStr, staffIDStr string) (*models.GetConfigRequest, error) {
	locationID, err := handlers.ParseOptionalID(locationIDStr)
	if err != nil {
		return nil, err
	}
	staffID, err := handlers.ParseOptionalID(staffIDStr)
	if err != nil {
		return nil, err
	}
	return &models.GetConfigRequest{
		ProviderID: providerID,
		LocationID: locationID,
		StaffID:    staffID,
	}, nil
}
