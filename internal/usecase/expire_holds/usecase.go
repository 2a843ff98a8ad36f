package expire_holds

import (
	"context"
	"fmt"
	"time"
)

// UseCase помечает просроченные активные удержания как expired.
// Погашение проверяет срок самостоятельно, поэтому свипер только наводит порядок в данных.
type UseCase struct {
	holdRepo     HoldRepository
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(holdRepo HoldRepository, metrics Metrics, logger Logger) *UseCase {
	return &UseCase{
		holdRepo:     holdRepo,
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

// Execute выполняет один проход свипера и возвращает число истекших удержаний
func (uc *UseCase) Execute(ctx context.Context) (int64, error) {
	now := uc.timeProvider.Now()

	expired, err := uc.holdRepo.ExpireStale(ctx, now)
	if err != nil {
		uc.logger.Error("ExpireHolds: failed to expire holds: %v", err)
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if expired > 0 {
		uc.metrics.AddHoldsExpired(expired)
		uc.logger.Info("ExpireHolds: expired %d holds", expired)
	}
	return expired, nil
}

// Run запускает свипер с заданным интервалом до отмены контекста
func (uc *UseCase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	uc.logger.Info("ExpireHolds: sweeper started, interval=%s", interval)
	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("ExpireHolds: sweeper stopped")
			return
		case <-ticker.C:
			_, _ = uc.Execute(ctx)
		}
	}
}
