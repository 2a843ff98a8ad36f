package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/config"
	staffRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/config/models"
)

// Service сервис для работы с конфигурацией расписания
type Service struct {
	configRepo ConfigRepository
	staffRepo  StaffRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(
	configRepo ConfigRepository,
	staffRepo StaffRepository,
	logger Logger,
) *Service {
	return &Service{
		configRepo: configRepo,
		staffRepo:  staffRepo,
		logger:     logger,
	}
}

// GetWithHierarchy получает конфигурацию с учетом иерархии приоритетов.
// Приоритет: staff@location > location > staff > provider. Если ничего не настроено, возвращаются значения по умолчанию.
func (s *Service) GetWithHierarchy(ctx context.Context, req *models.GetConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("GetWithHierarchy: fetching config for provider=%d, location=%v, staff=%v",
		req.ProviderID, req.LocationID, req.StaffID)

	config, err := s.configRepo.GetConfigWithHierarchy(ctx, req.ProviderID, req.LocationID, req.StaffID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Info("GetWithHierarchy: no config for provider=%d, using defaults", req.ProviderID)
			return models.FromDomainConfig(domain.DefaultSchedulingConfig(req.ProviderID)), nil
		}
		s.logger.Error("GetWithHierarchy: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetWithHierarchy - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetWithHierarchy: successfully fetched config id=%d (level: %s)", config.ID, config.Level())
	return models.FromDomainConfig(config), nil
}

// GetAllByProvider получает все конфигурации провайдера
// Доступно только менеджерам провайдера
func (s *Service) GetAllByProvider(ctx context.Context, providerID int64, userID int64) (*models.ConfigListResponse, error) {
	s.logger.Info("GetAllByProvider: fetching configs for provider=%d by user=%d", providerID, userID)

	if err := s.checkManagerAccess(ctx, providerID, userID); err != nil {
		return nil, err
	}

	configs, err := s.configRepo.GetAllByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("GetAllByProvider: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetAllByProvider - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAllByProvider: successfully fetched %d configs for provider=%d", len(configs), providerID)
	return models.FromDomainConfigList(configs), nil
}

// Update создает или обновляет конфигурацию указанного уровня
// Доступно только менеджерам провайдера
func (s *Service) Update(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Update: updating config for provider=%d, location=%v, staff=%v by user=%d",
		req.ProviderID, req.LocationID, req.StaffID, req.UserID)

	// 1. Проверяем права доступа
	if err := s.checkManagerAccess(ctx, req.ProviderID, req.UserID); err != nil {
		return nil, err
	}

	// 2. Сотрудник уровня должен работать у этого провайдера
	if req.StaffID != nil {
		if err := s.checkStaffOfProvider(ctx, req.ProviderID, *req.StaffID); err != nil {
			return nil, err
		}
	}

	// 3. Получаем текущую конфигурацию уровня или значения по умолчанию
	config, err := s.configRepo.GetByLevel(ctx, req.ProviderID, req.LocationID, req.StaffID)
	if err != nil {
		if !errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Error("Update: repository error: %v", err)
			return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		config = domain.DefaultSchedulingConfig(req.ProviderID)
		config.LocationID = req.LocationID
		config.StaffID = req.StaffID
	}

	// 4. Применяем и валидируем изменения
	req.ApplyToConfig(config)
	if err := validateConfig(config); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	// 5. Сохраняем
	saved, err := s.configRepo.Upsert(ctx, config)
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully saved config id=%d (level: %s)", saved.ID, saved.Level())
	return models.FromDomainConfig(saved), nil
}

// Вспомогательные методы

// checkManagerAccess проверяет, что пользователь - активный владелец или менеджер провайдера
func (s *Service) checkManagerAccess(ctx context.Context, providerID, userID int64) error {
	staff, err := s.staffRepo.GetByUserAndProvider(ctx, userID, providerID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			s.logger.Warn("checkManagerAccess: user=%d is not staff of provider=%d", userID, providerID)
			return ErrAccessDenied
		}
		s.logger.Error("checkManagerAccess: failed to get staff for user=%d: %v", userID, err)
		return fmt.Errorf("%w: checkManagerAccess - repository error: %v", ErrInternal, err)
	}

	if !staff.IsActive || !staff.CanManage() {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of provider=%d", userID, providerID)
		return ErrAccessDenied
	}
	return nil
}

// checkStaffOfProvider проверяет, что сотрудник существует и принадлежит провайдеру
func (s *Service) checkStaffOfProvider(ctx context.Context, providerID, staffID int64) error {
	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			s.logger.Warn("checkStaffOfProvider: staff id=%d not found", staffID)
			return fmt.Errorf("%w: id=%d", ErrStaffNotFound, staffID)
		}
		s.logger.Error("checkStaffOfProvider: failed to get staff id=%d: %v", staffID, err)
		return fmt.Errorf("%w: checkStaffOfProvider - repository error: %v", ErrInternal, err)
	}
	if staff.ProviderID != providerID {
		s.logger.Warn("checkStaffOfProvider: staff id=%d belongs to provider=%d, not %d", staffID, staff.ProviderID, providerID)
		return fmt.Errorf("%w: id=%d", ErrStaffNotFound, staffID)
	}
	return nil
}

// validateConfig валидирует параметры конфигурации
func validateConfig(c *domain.SchedulingConfig) error {
	if c.SlotIntervalMinutes < domain.MinSlotIntervalMinutes || c.SlotIntervalMinutes > domain.MaxSlotIntervalMinutes {
		return fmt.Errorf("%w: slotIntervalMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotIntervalMinutes, domain.MaxSlotIntervalMinutes)
	}
	if c.TravelBufferMinutes < 0 || c.TravelBufferMinutes > domain.MaxTravelBufferMinutes {
		return fmt.Errorf("%w: travelBufferMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxTravelBufferMinutes)
	}
	if c.AdvanceBookingDays < 0 || c.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between 0 and %d", ErrInvalidInput, domain.MaxAdvanceBookingDays)
	}
	if c.MinBookingNoticeMinutes < 0 || c.MinBookingNoticeMinutes > domain.MaxBookingNoticeMinutes {
		return fmt.Errorf("%w: minBookingNoticeMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxBookingNoticeMinutes)
	}
	return nil
}
