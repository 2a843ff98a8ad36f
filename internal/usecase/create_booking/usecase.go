package create_booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// UseCase создает бронирование. Вызывается внутри транзакции погашения удержания:
// DoSerializable присоединяется к внешней транзакции, поэтому блокировки и вставка
// фиксируются вместе с переводом удержания в consumed.
type UseCase struct {
	bookingRepo  BookingRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: provider=%d, customer=%d, hold=%s, services=%d",
		req.ProviderID, req.CustomerUserID, req.HoldID, len(req.Services))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var result *domain.Booking

	// 3. Проверка занятости и вставка в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Перепроверяем каждого сотрудника по зафиксированным бронированиям с блокировкой
		if err := uc.checkConflicts(txCtx, req.Services); err != nil {
			return err
		}

		// 3.2. Собираем бронирование
		booking, err := uc.buildBooking(req, now)
		if err != nil {
			return err
		}

		// 3.3. Сохраняем бронирование вместе с услугами, доп. позициями и участниками
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, number=%s", result.ID, result.BookingNumber)

	return &Response{Booking: result}, nil
}

// checkConflicts проверяет строгое пересечение с учетом prep/post буферов обеих сторон
func (uc *UseCase) checkConflicts(ctx context.Context, services []domain.BookingService) error {
	margin := time.Duration(domain.MaxBufferMinutes) * time.Minute

	for _, staffID := range staffIDs(services) {
		var from, to time.Time
		for _, s := range services {
			if s.StaffID != staffID {
				continue
			}
			busy := s.BusyInterval()
			if from.IsZero() || busy.Start.Before(from) {
				from = busy.Start
			}
			if busy.End.After(to) {
				to = busy.End
			}
		}

		existing, err := uc.bookingRepo.GetStaffServices(ctx, []int64{staffID}, from.Add(-margin), to.Add(margin))
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get services of staff=%d: %v", staffID, err)
			return fmt.Errorf("%w: failed to get staff services: %w", ErrInternal, err)
		}

		for _, s := range services {
			if s.StaffID != staffID {
				continue
			}
			if domain.HasConflict(s.Interval(), s.PrepBufferMinutes, s.PostBufferMinutes, existing, 0) {
				uc.logger.Warn("CreateBooking: staff=%d is busy at %s", staffID, s.StartAt.Format(time.RFC3339))
				return ErrSlotNotAvailable
			}
		}
	}

	return nil
}

func (uc *UseCase) buildBooking(req *Request, now time.Time) (*domain.Booking, error) {
	loc := domain.LoadLocation(req.Timezone)
	number, err := generateBookingNumber(now.In(loc))
	if err != nil {
		uc.logger.Error("CreateBooking: failed to generate booking number: %v", err)
		return nil, fmt.Errorf("%w: generate booking number: %w", ErrInternal, err)
	}

	subtotal := decimal.Zero
	for _, s := range req.Services {
		subtotal = subtotal.Add(s.Price)
	}
	for _, a := range req.Addons {
		subtotal = subtotal.Add(a.Price.Mul(decimal.NewFromInt(int64(a.Quantity))))
	}

	// Онлайн оплата подтверждает бронирование позже, остальные способы сразу
	status := domain.StatusConfirmed
	if req.PaymentMethod.RequiresOnlinePayment() {
		status = domain.StatusPending
	}

	var holdID *uuid.UUID
	if req.HoldID != uuid.Nil {
		holdID = &req.HoldID
	}

	return &domain.Booking{
		BookingNumber:  number,
		ProviderID:     req.ProviderID,
		CustomerUserID: req.CustomerUserID,
		LocationID:     req.LocationID,
		LocationType:   req.LocationType,
		Address:        req.Address,
		Timezone:       req.Timezone,
		Status:         status,
		StartAt:        req.StartAt(),
		EndAt:          req.EndAt(),
		Services:       req.Services,
		Addons:         req.Addons,
		Participants:   req.Participants,
		Subtotal:       subtotal,
		TravelFee:      req.TravelFee,
		DiscountAmount: decimal.Zero,
		TotalAmount:    subtotal.Add(req.TravelFee),
		Currency:       req.Currency,
		PaymentMethod:  req.PaymentMethod,
		PromotionCode:  req.PromotionCode,
		ClientInfo:     req.ClientInfo,
		Notes:          req.Notes,
		HoldID:         holdID,
	}, nil
}

func staffIDs(services []domain.BookingService) []int64 {
	seen := make(map[int64]struct{}, len(services))
	ids := make([]int64, 0, len(services))
	for _, s := range services {
		if _, ok := seen[s.StaffID]; ok {
			continue
		}
		seen[s.StaffID] = struct{}{}
		ids = append(ids, s.StaffID)
	}
	return ids
}
