package models

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модели

// GetConfigRequest запрос на получение конфигурации с учетом иерархии
type GetConfigRequest struct {
	ProviderID int64
	LocationID *int64 // nil означает любую локацию
	StaffID    *int64 // nil означает любого сотрудника
}

// UpdateConfigRequest запрос на изменение конфигурации уровня (provider, location, staff).
// Поля опциональны: непереданные значения берутся из текущей конфигурации уровня или значений по умолчанию.
type UpdateConfigRequest struct {
	UserID                  int64  `json:"-"`
	ProviderID              int64  `json:"-"`
	LocationID              *int64 `json:"locationId,omitempty"`
	StaffID                 *int64 `json:"staffId,omitempty"`
	SlotIntervalMinutes     *int   `json:"slotIntervalMinutes,omitempty"`
	TravelBufferMinutes     *int   `json:"travelBufferMinutes,omitempty"`
	AdvanceBookingDays      *int   `json:"advanceBookingDays,omitempty"`
	MinBookingNoticeMinutes *int   `json:"minBookingNoticeMinutes,omitempty"`
}

// Response модели

// ConfigResponse ответ с данными конфигурации
type ConfigResponse struct {
	ID                      int64      `json:"id,omitempty"`
	ProviderID              int64      `json:"providerId"`
	LocationID              *int64     `json:"locationId,omitempty"`
	StaffID                 *int64     `json:"staffId,omitempty"`
	Level                   string     `json:"level"`
	IsDefault               bool       `json:"isDefault"`
	SlotIntervalMinutes     int        `json:"slotIntervalMinutes"`
	TravelBufferMinutes     int        `json:"travelBufferMinutes"`
	AdvanceBookingDays      int        `json:"advanceBookingDays"`
	MinBookingNoticeMinutes int        `json:"minBookingNoticeMinutes"`
	CreatedAt               *time.Time `json:"createdAt,omitempty"`
	UpdatedAt               *time.Time `json:"updatedAt,omitempty"`
}

// ConfigListResponse ответ со списком конфигураций
type ConfigListResponse struct {
	Configs []ConfigResponse `json:"configs"`
}

// Методы конвертации

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.SchedulingConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	resp := &ConfigResponse{
		ID:                      c.ID,
		ProviderID:              c.ProviderID,
		LocationID:              c.LocationID,
		StaffID:                 c.StaffID,
		Level:                   c.Level(),
		IsDefault:               c.ID == 0,
		SlotIntervalMinutes:     c.SlotIntervalMinutes,
		TravelBufferMinutes:     c.TravelBufferMinutes,
		AdvanceBookingDays:      c.AdvanceBookingDays,
		MinBookingNoticeMinutes: c.MinBookingNoticeMinutes,
	}
	if !c.CreatedAt.IsZero() {
		createdAt, updatedAt := c.CreatedAt, c.UpdatedAt
		resp.CreatedAt = &createdAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// FromDomainConfigList конвертирует список domain моделей в DTO
func FromDomainConfigList(configs []*domain.SchedulingConfig) *ConfigListResponse {
	resp := &ConfigListResponse{
		Configs: make([]ConfigResponse, 0, len(configs)),
	}
	for _, config := range configs {
		if configResp := FromDomainConfig(config); configResp != nil {
			resp.Configs = append(resp.Configs, *configResp)
		}
	}
	return resp
}

// ApplyToConfig применяет обновления к конфигурации
// Обновляются только непустые (not nil) поля из request
func (r *UpdateConfigRequest) ApplyToConfig(config *domain.SchedulingConfig) {
	if r.SlotIntervalMinutes != nil {
		config.SlotIntervalMinutes = *r.SlotIntervalMinutes
	}
	if r.TravelBufferMinutes != nil {
		config.TravelBufferMinutes = *r.TravelBufferMinutes
	}
	if r.AdvanceBookingDays != nil {
		config.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	if r.MinBookingNoticeMinutes != nil {
		config.MinBookingNoticeMinutes = *r.MinBookingNoticeMinutes
	}
}
