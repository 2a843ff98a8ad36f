package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/booking"
	staffRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/bookings/models"
)

const aggregateBooking = "booking"

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo BookingRepository
	staffRepo   StaffRepository
	outboxRepo  OutboxRepository
	invalidator Invalidator
	txManager   TransactionManager
	clock       TimeProvider
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	staffRepo StaffRepository,
	outboxRepo OutboxRepository,
	invalidator Invalidator,
	txManager TransactionManager,
	clock TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		staffRepo:   staffRepo,
		outboxRepo:  outboxRepo,
		invalidator: invalidator,
		txManager:   txManager,
		clock:       clock,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID.
// Доступно клиенту, сотрудникам, выполняющим услуги, и менеджерам провайдера.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if booking.CustomerUserID != userID {
		staff, err := s.providerStaff(ctx, booking.ProviderID, userID)
		if err != nil {
			return nil, err
		}
		if staff == nil || !(staff.CanManage() || containsID(booking.StaffIDs(), staff.ID)) {
			s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
			return nil, ErrAccessDenied
		}
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// Cancel отменяет бронирование.
// Клиент получает статус cancelled_by_customer, сотрудник провайдера - cancelled_by_provider.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	if req.CancellationReason != nil && len(*req.CancellationReason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	var cancelled *domain.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Получаем бронирование с блокировкой строки
		booking, err := s.getBooking(ctx, "Cancel", bookingID)
		if err != nil {
			return err
		}

		// 2. Определяем статус отмены в зависимости от прав доступа
		status, err := s.authorizeChange(ctx, booking, req.UserID)
		if err != nil {
			return err
		}

		// 3. Проверяем, можно ли отменить бронирование
		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return ErrCannotCancel
		}

		now := s.clock.Now()
		if err := s.bookingRepo.Cancel(ctx, bookingID, status, req.CancellationReason, now); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		// 4. Событие в outbox в той же транзакции
		if err := s.emit(ctx, booking, domain.EventBookingCancelled, status, req.UserID, now); err != nil {
			return err
		}

		booking.Status = status
		cancelled = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidator.InvalidateBooking(cancelled)

	s.logger.Info("Cancel: successfully cancelled booking id=%d with status=%s", bookingID, cancelled.Status)
	return nil
}

// Reschedule переносит бронирование: все услуги сдвигаются на одинаковую величину.
// Конфликты проверяются для каждого сотрудника без учета самого бронирования.
func (s *Service) Reschedule(ctx context.Context, bookingID int64, req *models.RescheduleBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Reschedule: booking id=%d to %s by user=%d", bookingID, req.NewStartAt.Format(time.RFC3339), req.UserID)

	now := s.clock.Now()
	if req.NewStartAt.IsZero() || !req.NewStartAt.After(now) {
		return nil, fmt.Errorf("%w: new start time must be in the future", ErrInvalidInput)
	}

	var before, after *domain.Booking
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		// 1. Получаем бронирование с блокировкой строки
		booking, err := s.getBooking(ctx, "Reschedule", bookingID)
		if err != nil {
			return err
		}

		// 2. Переносить могут клиент и сотрудники провайдера
		if _, err := s.authorizeChange(ctx, booking, req.UserID); err != nil {
			return err
		}

		if !booking.CanBeRescheduled() {
			s.logger.Warn("Reschedule: booking id=%d cannot be rescheduled, status=%s", bookingID, booking.Status)
			return ErrCannotReschedule
		}

		// 3. Сдвигаем все услуги на одну дельту
		moved := shift(booking, req.NewStartAt.Sub(booking.StartAt))

		// 4. Проверяем конфликты по каждому сотруднику, исключая само бронирование
		if err := s.checkConflicts(ctx, moved); err != nil {
			return err
		}

		if err := s.bookingRepo.Reschedule(ctx, moved, now); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Reschedule: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Reschedule - repository error: %v", ErrInternal, err)
		}

		if err := s.emit(ctx, moved, domain.EventBookingRescheduled, moved.Status, req.UserID, now); err != nil {
			return err
		}

		before, after = booking, moved
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сбрасываем кэш и старой, и новой даты
	s.invalidator.InvalidateBooking(before)
	s.invalidator.InvalidateBooking(after)

	s.logger.Info("Reschedule: booking id=%d moved to %s", bookingID, after.StartAt.Format(time.RFC3339))
	return models.FromDomainBooking(after), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, method string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", method, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return booking, nil
}

// providerStaff возвращает активного сотрудника провайдера для пользователя или nil
func (s *Service) providerStaff(ctx context.Context, providerID, userID int64) (*domain.Staff, error) {
	staff, err := s.staffRepo.GetByUserAndProvider(ctx, userID, providerID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			return nil, nil
		}
		s.logger.Error("providerStaff: failed to get staff for user=%d provider=%d: %v", userID, providerID, err)
		return nil, fmt.Errorf("%w: providerStaff - repository error: %v", ErrInternal, err)
	}
	if !staff.IsActive {
		return nil, nil
	}
	return staff, nil
}

// authorizeChange определяет, кто меняет бронирование, и возвращает соответствующий статус отмены
func (s *Service) authorizeChange(ctx context.Context, booking *domain.Booking, userID int64) (domain.BookingStatus, error) {
	if booking.CustomerUserID == userID {
		return domain.StatusCancelledByCustomer, nil
	}

	staff, err := s.providerStaff(ctx, booking.ProviderID, userID)
	if err != nil {
		return "", err
	}
	if staff == nil {
		s.logger.Warn("authorizeChange: user=%d has no rights on booking id=%d", userID, booking.ID)
		return "", ErrAccessDenied
	}
	return domain.StatusCancelledByProvider, nil
}

func (s *Service) checkConflicts(ctx context.Context, moved *domain.Booking) error {
	buffer := time.Duration(domain.MaxBufferMinutes) * time.Minute

	for _, staffID := range moved.StaffIDs() {
		var segments []domain.BookingService
		for _, svc := range moved.Services {
			if svc.StaffID == staffID {
				segments = append(segments, svc)
			}
		}

		from := segments[0].StartAt.Add(-buffer)
		to := segments[len(segments)-1].EndAt.Add(buffer)
		existing, err := s.bookingRepo.GetStaffServices(ctx, []int64{staffID}, from, to)
		if err != nil {
			s.logger.Error("checkConflicts: failed to load services of staff=%d: %v", staffID, err)
			return fmt.Errorf("%w: checkConflicts - repository error: %v", ErrInternal, err)
		}

		for _, seg := range segments {
			if domain.HasConflict(seg.Interval(), seg.PrepBufferMinutes, seg.PostBufferMinutes, existing, moved.ID) {
				s.logger.Warn("checkConflicts: booking id=%d conflicts for staff=%d at %s",
					moved.ID, staffID, seg.StartAt.Format(time.RFC3339))
				return ErrSlotConflict
			}
		}
	}
	return nil
}

func (s *Service) emit(ctx context.Context, b *domain.Booking, eventType domain.EventType, status domain.BookingStatus, userID int64, now time.Time) error {
	event, err := domain.NewEvent(aggregateBooking, strconv.FormatInt(b.ID, 10), eventType, domain.BookingChangedPayload{
		BookingID: b.ID,
		Status:    status,
		StartAt:   b.StartAt,
		ChangedBy: userID,
	}, now)
	if err != nil {
		return fmt.Errorf("%w: emit - %v", ErrInternal, err)
	}
	if err := s.outboxRepo.Insert(ctx, event); err != nil {
		s.logger.Error("emit: failed to store %s for booking id=%d: %v", eventType, b.ID, err)
		return fmt.Errorf("%w: emit - outbox: %v", ErrInternal, err)
	}
	return nil
}

// shift возвращает копию бронирования, сдвинутую на delta
func shift(b *domain.Booking, delta time.Duration) *domain.Booking {
	moved := *b
	moved.StartAt = b.StartAt.Add(delta)
	moved.EndAt = b.EndAt.Add(delta)
	moved.Services = make([]domain.BookingService, len(b.Services))
	for i, svc := range b.Services {
		svc.StartAt = svc.StartAt.Add(delta)
		svc.EndAt = svc.EndAt.Add(delta)
		moved.Services[i] = svc
	}
	return &moved
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
