package consume_hold

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	holdRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/hold"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

// UseCase use case погашения удержания: удержание превращается в бронирование ровно один раз
type UseCase struct {
	holdRepo       HoldRepository
	bookingCreator BookingCreator
	bookingRepo    BookingRepository
	offeringRepo   OfferingRepository
	staffRepo      StaffRepository
	outboxRepo     OutboxRepository
	invalidator    Invalidator
	payments       PaymentGateway
	metrics        Metrics
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	holdRepo HoldRepository,
	bookingCreator BookingCreator,
	bookingRepo BookingRepository,
	offeringRepo OfferingRepository,
	staffRepo StaffRepository,
	outboxRepo OutboxRepository,
	invalidator Invalidator,
	payments PaymentGateway,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		holdRepo:       holdRepo,
		bookingCreator: bookingCreator,
		bookingRepo:    bookingRepo,
		offeringRepo:   offeringRepo,
		staffRepo:      staffRepo,
		outboxRepo:     outboxRepo,
		invalidator:    invalidator,
		payments:       payments,
		metrics:        metrics,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case погашения удержания
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ConsumeHold: hold=%s, user=%d", req.HoldID, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ConsumeHold: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var booking *domain.Booking
	var rejectReason string

	// 3. Чтение удержания, бронирование, погашение и события в одной сериализуемой транзакции.
	// При повторе после 40001 удержание перечитывается и проигравший получает ErrHoldInactive
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		rejectReason = ""

		// 3.1. Получаем удержание
		hold, err := uc.holdRepo.GetByID(txCtx, req.HoldID)
		if err != nil {
			if errors.Is(err, holdRepo.ErrHoldNotFound) {
				rejectReason = reasonNotFound
				return ErrHoldNotFound
			}
			uc.logger.Error("ConsumeHold: failed to get hold id=%s: %v", req.HoldID, err)
			return fmt.Errorf("%w: failed to get hold: %w", ErrTransientStore, err)
		}

		// 3.2. Статус, срок действия и владелец
		if reason, err := checkHold(hold, req, now); err != nil {
			rejectReason = reason
			return err
		}

		// 3.3. Собираем запрос на бронирование из снимка удержания
		bookingReq, err := uc.buildBookingRequest(txCtx, hold, req)
		if err != nil {
			return err
		}

		// 3.4. Создаем бронирование, коллаборатор перепроверяет занятость с блокировкой
		created, err := uc.bookingCreator.Execute(txCtx, bookingReq)
		if err != nil {
			return err
		}

		// 3.5. Условный перевод в consumed. Проигравший параллельный запрос получает 0 строк
		ok, err := uc.holdRepo.MarkConsumed(txCtx, hold.ID, req.UserID, created.Booking.ID, now)
		if err != nil {
			uc.logger.Error("ConsumeHold: failed to mark hold id=%s consumed: %v", hold.ID, err)
			return fmt.Errorf("%w: failed to mark hold consumed: %w", ErrInternal, err)
		}
		if !ok {
			uc.logger.Warn("ConsumeHold: hold id=%s was consumed or expired concurrently", hold.ID)
			rejectReason = reasonInactive
			return ErrHoldInactive
		}

		// 3.6. События для внешних потребителей
		if err := uc.writeEvents(txCtx, hold, created.Booking, req.UserID, now); err != nil {
			return err
		}

		booking = created.Booking
		return nil
	})
	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			err = fmt.Errorf("%w: %w", ErrTransientStore, err)
		}
		if rejectReason == "" && errors.Is(err, domain.ErrConflict) {
			rejectReason = reasonConflict
		}
		if rejectReason != "" {
			uc.metrics.IncHoldConsumeRejected(rejectReason)
		}
		uc.logger.Warn("ConsumeHold: hold id=%s not consumed: %v", req.HoldID, err)
		return nil, err
	}
	uc.metrics.IncHoldsConsumed()

	uc.logger.Info("ConsumeHold: hold id=%s consumed into booking id=%d, number=%s",
		req.HoldID, booking.ID, booking.BookingNumber)

	// 4. Дополнительные данные, ошибки только логируются
	uc.attachExtras(ctx, booking.ID, req)

	// 5. Сбрасываем кэш слотов затронутых сотрудников
	uc.invalidator.InvalidateBooking(booking)

	// 6. Ссылка на оплату для онлайн способов
	resp := &Response{
		BookingID:     booking.ID,
		BookingNumber: booking.BookingNumber,
		Status:        booking.Status,
		TotalAmount:   booking.TotalAmount,
		Currency:      booking.Currency,
	}
	if booking.PaymentMethod.RequiresOnlinePayment() {
		resp.PaymentURL = uc.paymentURL(ctx, booking)
	}

	return resp, nil
}

func (uc *UseCase) buildBookingRequest(ctx context.Context, hold *domain.BookingHold, req *Request) (*create_booking.Request, error) {
	if len(hold.Services) == 0 {
		uc.logger.Error("ConsumeHold: hold id=%s has no services", hold.ID)
		return nil, fmt.Errorf("%w: hold has no services", ErrInternal)
	}

	staff, err := uc.staffRepo.GetByID(ctx, hold.Services[0].StaffID)
	if err != nil {
		uc.logger.Error("ConsumeHold: failed to get staff id=%d: %v", hold.Services[0].StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %w", ErrTransientStore, err)
	}

	ids := make([]int64, 0, len(hold.Services)+len(req.Addons))
	for _, s := range hold.Services {
		ids = append(ids, s.OfferingID)
	}
	for _, a := range req.Addons {
		ids = append(ids, a.OfferingID)
	}

	offerings, err := uc.offeringRepo.GetByIDs(ctx, hold.ProviderID, ids)
	if err != nil {
		uc.logger.Error("ConsumeHold: failed to get offerings: %v", err)
		return nil, fmt.Errorf("%w: failed to get offerings: %w", ErrTransientStore, err)
	}
	byID := make(map[int64]*domain.Offering, len(offerings))
	for _, o := range offerings {
		byID[o.ID] = o
	}

	// Цена и время берутся из снимка, буферы из текущей карточки услуги
	services := make([]domain.BookingService, 0, len(hold.Services))
	for _, s := range hold.Services {
		bs := domain.BookingService{
			OfferingID:      s.OfferingID,
			StaffID:         s.StaffID,
			StartAt:         s.ScheduledStartAt,
			EndAt:           s.ScheduledEndAt,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
		}
		if o, ok := byID[s.OfferingID]; ok {
			bs.PrepBufferMinutes = o.PrepBufferMinutes
			bs.PostBufferMinutes = o.PostBufferMinutes
		}
		services = append(services, bs)
	}

	addons := make([]domain.BookingAddon, 0, len(req.Addons))
	for _, a := range req.Addons {
		o, ok := byID[a.OfferingID]
		if !ok || !o.IsActive {
			uc.logger.Warn("ConsumeHold: addon offering id=%d is not available", a.OfferingID)
			return nil, fmt.Errorf("%w: addon offering id=%d is not available", ErrInvalidInput, a.OfferingID)
		}
		addons = append(addons, domain.BookingAddon{OfferingID: o.ID, Quantity: a.Quantity, Price: o.Price})
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentPayAtVenue
	}

	return &create_booking.Request{
		HoldID:         hold.ID,
		ProviderID:     hold.ProviderID,
		CustomerUserID: req.UserID,
		LocationID:     hold.LocationID,
		LocationType:   hold.LocationType,
		Address:        hold.Address,
		Timezone:       staff.Timezone,
		Services:       services,
		Addons:         addons,
		Participants:   req.Participants,
		TravelFee:      hold.Metadata.TravelFee,
		Currency:       hold.Currency(),
		PaymentMethod:  paymentMethod,
		PromotionCode:  req.PromotionCode,
		ClientInfo:     req.ClientInfo,
		Notes:          req.Notes,
	}, nil
}

func (uc *UseCase) writeEvents(ctx context.Context, hold *domain.BookingHold, booking *domain.Booking, userID int64, now time.Time) error {
	bookingID := strconv.FormatInt(booking.ID, 10)

	created, err := domain.NewEvent("booking", bookingID, domain.EventBookingCreated, domain.BookingCreatedPayload{
		BookingID:      booking.ID,
		BookingNumber:  booking.BookingNumber,
		ProviderID:     booking.ProviderID,
		CustomerUserID: booking.CustomerUserID,
		StartAt:        booking.StartAt,
		StaffIDs:       booking.StaffIDs(),
	}, now)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	consumed, err := domain.NewEvent("hold", hold.ID.String(), domain.EventHoldConsumed, domain.HoldConsumedPayload{
		HoldID:    hold.ID,
		BookingID: booking.ID,
		UserID:    userID,
	}, now)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	for _, event := range []*domain.Event{created, consumed} {
		if err := uc.outboxRepo.Insert(ctx, event); err != nil {
			uc.logger.Error("ConsumeHold: failed to write %s event: %v", event.Type, err)
			return fmt.Errorf("%w: failed to write event: %w", ErrInternal, err)
		}
	}
	return nil
}

func (uc *UseCase) attachExtras(ctx context.Context, bookingID int64, req *Request) {
	if len(req.CustomFieldValues) > 0 {
		if err := uc.bookingRepo.AttachCustomFields(ctx, bookingID, req.CustomFieldValues); err != nil {
			uc.logger.Warn("ConsumeHold: failed to attach custom fields to booking id=%d: %v", bookingID, err)
		}
	}
	if len(req.FormResponses) > 0 {
		if err := uc.bookingRepo.AttachFormResponses(ctx, bookingID, req.FormResponses); err != nil {
			uc.logger.Warn("ConsumeHold: failed to attach form responses to booking id=%d: %v", bookingID, err)
		}
	}
}

func (uc *UseCase) paymentURL(ctx context.Context, booking *domain.Booking) *string {
	email := ""
	if booking.ClientInfo != nil {
		email = booking.ClientInfo.Email
	}

	url, err := uc.payments.InitializeCheckout(ctx, paymentgateway.CheckoutRequest{
		Reference: booking.BookingNumber,
		Email:     email,
		Amount:    booking.TotalAmount,
		Currency:  booking.Currency,
		BookingID: booking.ID,
	})
	if err != nil {
		uc.logger.Error("ConsumeHold: failed to initialize payment for booking id=%d: %v", booking.ID, err)
		return nil
	}
	return &url
}
