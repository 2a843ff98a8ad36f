package create_hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/config"
	staffRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/slots"
)

// UseCase use case для создания удержания слота.
// Пересекающиеся удержания допускаются, конфликт окончательно решается при погашении.
type UseCase struct {
	holdRepo     HoldRepository
	offeringRepo OfferingRepository
	staffRepo    StaffRepository
	configRepo   ConfigRepository
	loader       ConstraintLoader
	metrics      Metrics
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	holdRepo HoldRepository,
	offeringRepo OfferingRepository,
	staffRepo StaffRepository,
	configRepo ConfigRepository,
	loader ConstraintLoader,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		holdRepo:     holdRepo,
		offeringRepo: offeringRepo,
		staffRepo:    staffRepo,
		configRepo:   configRepo,
		loader:       loader,
		metrics:      metrics,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания удержания
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateHold: provider=%d, services=%d, at=%s, location=%s",
		req.ProviderID, len(req.Services), req.SelectedDateTime.Format(time.RFC3339), req.LocationType)

	// 1. Валидация входных данных
	now := uc.timeProvider.Now()
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("CreateHold: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем услуги провайдера
	offerings, err := uc.loadOfferings(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Выстраиваем услуги подряд от выбранного времени
	services := make([]domain.HoldService, 0, len(req.Services))
	cursor := req.SelectedDateTime
	subtotal := decimal.Zero
	for _, sel := range req.Services {
		o := offerings[sel.OfferingID]
		currency := o.Currency
		if currency == "" {
			currency = uc.settings.Currency
		}
		end := cursor.Add(time.Duration(o.DurationMinutes) * time.Minute)
		services = append(services, domain.HoldService{
			OfferingID:       o.ID,
			StaffID:          sel.StaffID,
			DurationMinutes:  o.DurationMinutes,
			Price:            o.Price,
			Currency:         currency,
			ScheduledStartAt: cursor,
			ScheduledEndAt:   end,
		})
		subtotal = subtotal.Add(o.Price)
		cursor = end
	}

	// 4. Перепроверяем каждый отрезок по актуальным ограничениям сотрудника
	for _, s := range services {
		if err := uc.checkSegment(ctx, req, s, offerings[s.OfferingID]); err != nil {
			return nil, err
		}
	}

	// 5. Плата за выезд
	travelFee := decimal.Zero
	if req.LocationType == domain.LocationAtHome {
		travelFee = uc.settings.TravelFee
	}

	// 6. Сохраняем удержание
	hold := &domain.BookingHold{
		ID:           uuid.New(),
		ProviderID:   req.ProviderID,
		StaffID:      &services[0].StaffID,
		LocationID:   req.LocationID,
		LocationType: req.LocationType,
		StartAt:      req.SelectedDateTime,
		EndAt:        cursor,
		Services:     services,
		Address:      req.Address,
		Metadata: domain.HoldMetadata{
			ResourceIDs: req.ResourceIDs,
			TravelFee:   travelFee,
		},
		Status:          domain.HoldActive,
		ExpiresAt:       now.Add(uc.settings.TTL),
		CreatedByUserID: req.UserID,
	}
	if req.GuestFingerprint != nil && *req.GuestFingerprint != "" {
		hash := domain.HashFingerprint(*req.GuestFingerprint)
		hold.GuestFingerprintHash = &hash
	}

	if err := uc.holdRepo.Create(ctx, hold); err != nil {
		uc.logger.Error("CreateHold: failed to create hold: %v", err)
		return nil, fmt.Errorf("%w: failed to create hold: %v", ErrInternal, err)
	}
	uc.metrics.IncHoldsCreated()

	uc.logger.Info("CreateHold: created hold id=%s, expires_at=%s", hold.ID, hold.ExpiresAt.Format(time.RFC3339))

	return &Response{
		HoldID:    hold.ID,
		ExpiresAt: hold.ExpiresAt,
		StartAt:   hold.StartAt,
		EndAt:     hold.EndAt,
		Services:  services,
		Subtotal:  subtotal,
		TravelFee: travelFee,
		Currency:  hold.Currency(),
	}, nil
}

func (uc *UseCase) loadOfferings(ctx context.Context, req *Request) (map[int64]*domain.Offering, error) {
	ids := make([]int64, 0, len(req.Services))
	for _, s := range req.Services {
		ids = append(ids, s.OfferingID)
	}

	offerings, err := uc.offeringRepo.GetByIDs(ctx, req.ProviderID, ids)
	if err != nil {
		uc.logger.Error("CreateHold: failed to get offerings: %v", err)
		return nil, fmt.Errorf("%w: failed to get offerings: %v", ErrTransientStore, err)
	}

	byID := make(map[int64]*domain.Offering, len(offerings))
	for _, o := range offerings {
		if o.IsActive && o.ProviderID == req.ProviderID {
			byID[o.ID] = o
		}
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			uc.logger.Warn("CreateHold: offering id=%d is not available for provider=%d", id, req.ProviderID)
			return nil, fmt.Errorf("%w: id=%d", ErrOfferingNotFound, id)
		}
	}
	return byID, nil
}

// checkSegment проверяет, что отрезок услуги попадает в рабочее окно сотрудника и свободен
// вместе с подготовкой и уборкой услуги
func (uc *UseCase) checkSegment(ctx context.Context, req *Request, s domain.HoldService, o *domain.Offering) error {
	staff, err := uc.staffRepo.GetByID(ctx, s.StaffID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			uc.logger.Warn("CreateHold: staff id=%d not found", s.StaffID)
			return fmt.Errorf("%w: id=%d", ErrStaffNotFound, s.StaffID)
		}
		uc.logger.Error("CreateHold: failed to get staff id=%d: %v", s.StaffID, err)
		return fmt.Errorf("%w: failed to get staff: %v", ErrTransientStore, err)
	}
	if !staff.IsActive || staff.ProviderID != req.ProviderID {
		uc.logger.Warn("CreateHold: staff id=%d is not active at provider=%d", s.StaffID, req.ProviderID)
		return fmt.Errorf("%w: id=%d", ErrStaffNotFound, s.StaffID)
	}

	travel := 0
	if req.LocationType == domain.LocationAtHome {
		// Конфигурация берется по салону сотрудника, как при расчете слотов
		config, err := uc.configRepo.GetConfigWithHierarchy(ctx, staff.ProviderID, staff.LocationID, &staff.ID)
		switch {
		case errors.Is(err, configRepo.ErrConfigNotFound):
			config = domain.DefaultSchedulingConfig(req.ProviderID)
		case err != nil:
			uc.logger.Error("CreateHold: failed to get config: %v", err)
			return fmt.Errorf("%w: failed to get config: %v", ErrTransientStore, err)
		}
		travel = config.TravelBufferFor(req.LocationType)
	}

	constraints, err := uc.loader.LoadAt(ctx, s.StaffID, s.ScheduledStartAt)
	if err != nil {
		uc.logger.Error("CreateHold: failed to load constraints for staff=%d: %v", s.StaffID, err)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: id=%d", ErrStaffNotFound, s.StaffID)
		}
		return fmt.Errorf("%w: load constraints: %v", ErrTransientStore, err)
	}

	segment := domain.TimeInterval{Start: s.ScheduledStartAt, End: s.ScheduledEndAt}.ToDay(constraints.Date)
	if !slots.IsFreeWithBuffers(constraints, segment, o.PrepBufferMinutes, o.PostBufferMinutes, travel) {
		uc.logger.Warn("CreateHold: staff=%d is not free at %s", s.StaffID, s.ScheduledStartAt.Format(time.RFC3339))
		return ErrSlotNotAvailable
	}
	return nil
}
