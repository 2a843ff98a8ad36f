package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/config"
	staffRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/slots"
)

const (
	cacheHit  = "hit"
	cacheMiss = "miss"
)

// UseCase use case для получения слотов сотрудника на дату
type UseCase struct {
	staffRepo    StaffRepository
	configRepo   ConfigRepository
	offeringRepo OfferingRepository
	loader       ConstraintLoader
	cache        SlotCache
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	staffRepo StaffRepository,
	configRepo ConfigRepository,
	offeringRepo OfferingRepository,
	loader ConstraintLoader,
	cache SlotCache,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		staffRepo:    staffRepo,
		configRepo:   configRepo,
		offeringRepo: offeringRepo,
		loader:       loader,
		cache:        cache,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: staff=%d, date=%s, duration=%d, offerings=%v",
		req.StaffID, req.Date.Format(domain.DateFormat), req.DurationMinutes, req.OfferingIDs)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем сотрудника: провайдер, локация и часовой пояс
	staff, err := uc.staffRepo.GetByID(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			uc.logger.Warn("GetAvailableSlots: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: get staff: %v", ErrTransientStore, err)
	}
	if !staff.IsActive {
		uc.logger.Warn("GetAvailableSlots: staff id=%d is inactive", req.StaffID)
		return nil, ErrStaffNotFound
	}

	// 3. Длительность: сумма услуг или явное значение
	duration, err := uc.resolveDuration(ctx, staff.ProviderID, req)
	if err != nil {
		return nil, err
	}

	// 4. Конфигурация с учетом иерархии, при отсутствии - значения по умолчанию
	config, err := uc.configRepo.GetConfigWithHierarchy(ctx, staff.ProviderID, staff.LocationID, &staff.ID)
	if err != nil {
		if !errors.Is(err, configRepo.ErrConfigNotFound) {
			uc.logger.Error("GetAvailableSlots: failed to get config: %v", err)
			return nil, fmt.Errorf("%w: get config: %v", ErrTransientStore, err)
		}
		config = domain.DefaultSchedulingConfig(staff.ProviderID)
		uc.logger.Info("GetAvailableSlots: using default config for provider=%d", staff.ProviderID)
	} else {
		uc.logger.Info("GetAvailableSlots: using %s config id=%d", config.Level(), config.ID)
	}

	// 5. Проверяем дату в часовом поясе сотрудника
	now := uc.timeProvider.Now()
	loc := domain.LoadLocation(staff.Timezone)
	day := domain.DateIn(req.Date, loc)
	today := domain.StartOfDay(now.In(loc))
	if err := validateDate(day, today, config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	locationType := req.LocationType
	if locationType == "" {
		locationType = domain.LocationAtSalon
	}
	travel := config.TravelBufferFor(locationType)
	if req.TravelBufferMinutes != nil {
		travel = *req.TravelBufferMinutes
	}

	slotReq := domain.SlotRequest{
		DurationMinutes:     duration,
		SlotIntervalMinutes: config.SlotIntervalMinutes,
		TravelBufferMinutes: travel,
	}

	// 6. Слоты из кэша или расчет
	result, err := uc.calculate(ctx, staff.ID, day, slotReq)
	if err != nil {
		return nil, err
	}

	// 7. Окно минимального уведомления
	result, err = applyNotice(result, day, now, config.MinBookingNoticeMinutes)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to apply notice window: %v", err)
		return nil, fmt.Errorf("%w: apply notice: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for staff=%d, date=%s",
		len(result), staff.ID, day.Format(domain.DateFormat))

	return &Response{
		StaffID:             staff.ID,
		Date:                day,
		DurationMinutes:     duration,
		SlotIntervalMinutes: slotReq.SlotIntervalMinutes,
		TravelBufferMinutes: travel,
		Slots:               result,
	}, nil
}

func (uc *UseCase) resolveDuration(ctx context.Context, providerID int64, req *Request) (int, error) {
	if len(req.OfferingIDs) == 0 {
		return req.DurationMinutes, nil
	}

	offerings, err := uc.offeringRepo.GetByIDs(ctx, providerID, req.OfferingIDs)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get offerings: %v", err)
		return 0, fmt.Errorf("%w: get offerings: %v", ErrTransientStore, err)
	}

	byID := make(map[int64]*domain.Offering, len(offerings))
	for _, o := range offerings {
		byID[o.ID] = o
	}

	total := 0
	for _, id := range req.OfferingIDs {
		o, ok := byID[id]
		if !ok || !o.IsActive {
			uc.logger.Warn("GetAvailableSlots: offering id=%d not found for provider=%d", id, providerID)
			return 0, fmt.Errorf("%w: id=%d", ErrOfferingNotFound, id)
		}
		total += o.DurationMinutes
	}

	if total > domain.MaxBookingDurationMinutes {
		return 0, fmt.Errorf("%w: total duration %d exceeds %d", ErrInvalidInput, total, domain.MaxBookingDurationMinutes)
	}
	return total, nil
}

// calculate читает слоты из кэша, при промахе считает и записывает обратно.
// Ошибки кэша не прерывают запрос.
func (uc *UseCase) calculate(ctx context.Context, staffID int64, day time.Time, req domain.SlotRequest) ([]domain.Slot, error) {
	cached, ok, err := uc.cache.Get(ctx, staffID, day, req)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: cache read failed for staff=%d: %v", staffID, err)
	}
	if ok {
		uc.metrics.IncAvailabilityCache(cacheHit)
		return cached, nil
	}
	uc.metrics.IncAvailabilityCache(cacheMiss)

	constraints, err := uc.loader.Load(ctx, staffID, day)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to load constraints for staff=%d: %v", staffID, err)
		if errors.Is(err, domain.ErrTransientStore) {
			return nil, fmt.Errorf("%w: load constraints: %v", ErrTransientStore, err)
		}
		return nil, fmt.Errorf("%w: load constraints: %v", ErrInternal, err)
	}

	result, err := slots.Calculate(constraints, req)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: slot calculation rejected request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := uc.cache.Set(ctx, staffID, day, req, result); err != nil {
		uc.logger.Warn("GetAvailableSlots: cache write failed for staff=%d: %v", staffID, err)
	}
	return result, nil
}
