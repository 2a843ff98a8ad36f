package create_pay_run

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	staffRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/payroll"
)

// UseCase use case создания платежной ведомости
type UseCase struct {
	payrollRepo  PayrollRepository
	staffRepo    StaffRepository
	outboxRepo   OutboxRepository
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	payrollRepo PayrollRepository,
	staffRepo StaffRepository,
	outboxRepo OutboxRepository,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		payrollRepo:  payrollRepo,
		staffRepo:    staffRepo,
		outboxRepo:   outboxRepo,
		metrics:      metrics,
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

// Execute выполняет use case создания платежной ведомости
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreatePayRun: user=%d, provider=%d, period=%s..%s, type=%s",
		req.UserID, req.ProviderID, req.PayPeriodStart.Format(domain.DateFormat),
		req.PayPeriodEnd.Format(domain.DateFormat), req.PeriodType)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreatePayRun: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем, что пользователь управляет провайдером
	manager, err := uc.staffRepo.GetByUserAndProvider(ctx, req.UserID, req.ProviderID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			uc.logger.Warn("CreatePayRun: user=%d is not staff of provider=%d", req.UserID, req.ProviderID)
			return nil, ErrAccessDenied
		}
		uc.logger.Error("CreatePayRun: failed to get staff: %v", err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrTransientStore, err)
	}
	if !manager.IsActive || !manager.CanManage() {
		uc.logger.Warn("CreatePayRun: user=%d cannot manage provider=%d", req.UserID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	// 3. Загружаем данные за период
	input, err := uc.loadInput(ctx, req, domain.LoadLocation(manager.Timezone))
	if err != nil {
		uc.logger.Error("CreatePayRun: failed to load payroll input: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
	}

	// 4. Расчет
	items, warnings := payroll.Calculate(*input)

	// 5. Предупреждения блокируют создание, если вызывающий их не принял
	if len(warnings) > 0 && !req.AllowWarnings {
		uc.logger.Warn("CreatePayRun: %d configuration warnings for provider=%d", len(warnings), req.ProviderID)
		return nil, fmt.Errorf("%w: %w", ErrPayRunConfiguration, &domain.PayRunConfigurationError{Warnings: warnings})
	}

	now := uc.timeProvider.Now()
	run := &domain.PayRun{
		ProviderID:     req.ProviderID,
		PayPeriodStart: input.PeriodStart,
		PayPeriodEnd:   input.PeriodEnd,
		PeriodType:     req.PeriodType,
		Status:         domain.PayRunDraft,
		CreatedBy:      req.UserID,
	}

	// 6. Заголовок, строки и событие в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.payrollRepo.CreatePayRun(txCtx, run); err != nil {
			uc.logger.Error("CreatePayRun: failed to create pay run: %v", err)
			return fmt.Errorf("%w: failed to create pay run: %v", ErrInternal, err)
		}

		for _, item := range items {
			item.PayRunID = run.ID
		}
		if err := uc.payrollRepo.CreateItems(txCtx, run.ID, items); err != nil {
			uc.logger.Error("CreatePayRun: failed to create items for pay run id=%d: %v", run.ID, err)
			return fmt.Errorf("%w: failed to create items: %v", ErrInternal, err)
		}

		event, err := domain.NewEvent("pay_run", strconv.FormatInt(run.ID, 10), domain.EventPayRunCreated,
			domain.PayRunCreatedPayload{PayRunID: run.ID, ProviderID: run.ProviderID, ItemCount: len(items)}, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if err := uc.outboxRepo.Insert(txCtx, event); err != nil {
			uc.logger.Error("CreatePayRun: failed to write event: %v", err)
			return fmt.Errorf("%w: failed to write event: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncPayRunsCreated()

	uc.logger.Info("CreatePayRun: created pay run id=%d with %d items, %d warnings", run.ID, len(items), len(warnings))

	return &Response{
		PayRunID:  run.ID,
		ItemCount: len(items),
		Items:     items,
		Warnings:  warnings,
	}, nil
}

// loadInput читает сотрудников, затем остальные данные параллельно.
// Выручка и чаевые берутся за [start, end+1d) в часовом поясе провайдера.
func (uc *UseCase) loadInput(ctx context.Context, req *Request, loc *time.Location) (*domain.PayrollInput, error) {
	start := domain.DateIn(req.PayPeriodStart, loc)
	end := domain.DateIn(req.PayPeriodEnd, loc)
	to := end.AddDate(0, 0, 1)

	staff, err := uc.staffRepo.ListByProvider(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	staffIDs := make([]int64, 0, len(staff))
	for _, s := range staff {
		staffIDs = append(staffIDs, s.ID)
	}

	input := &domain.PayrollInput{
		ProviderID:  req.ProviderID,
		PeriodStart: start,
		PeriodEnd:   end,
		PeriodType:  req.PeriodType,
		Staff:       staff,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		compensation, err := uc.payrollRepo.GetCompensation(gctx, staffIDs)
		if err != nil {
			return fmt.Errorf("compensation: %w", err)
		}
		input.Compensation = compensation
		return nil
	})
	g.Go(func() error {
		rules, err := uc.payrollRepo.GetCommissionRules(gctx, req.ProviderID)
		if err != nil {
			return fmt.Errorf("commission rules: %w", err)
		}
		input.CommissionRules = rules
		return nil
	})
	g.Go(func() error {
		revenue, err := uc.payrollRepo.GetRevenue(gctx, req.ProviderID, start, to)
		if err != nil {
			return fmt.Errorf("revenue: %w", err)
		}
		input.Revenue = revenue
		return nil
	})
	g.Go(func() error {
		tips, err := uc.payrollRepo.GetTips(gctx, req.ProviderID, start, to)
		if err != nil {
			return fmt.Errorf("tips: %w", err)
		}
		input.Tips = tips
		return nil
	})
	g.Go(func() error {
		shifts, err := uc.payrollRepo.GetShifts(gctx, req.ProviderID, start, end)
		if err != nil {
			return fmt.Errorf("shifts: %w", err)
		}
		input.Shifts = shifts
		return nil
	})
	g.Go(func() error {
		rules, err := uc.payrollRepo.GetRules(gctx, req.ProviderID)
		if err != nil {
			return fmt.Errorf("payroll rules: %w", err)
		}
		input.Rules = rules
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return input, nil
}
