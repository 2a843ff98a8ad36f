package outbox

import (
	"context"
	"fmt"
	"time"
)

const (
	resultPublished = "published"
	resultFailed    = "failed"
)

// Dispatcher переносит события из outbox в брокер
type Dispatcher struct {
	repo      Repository
	publisher Publisher
	txManager TransactionManager
	metrics   Metrics
	clock     TimeProvider
	logger    Logger
	batchSize int
}

// NewDispatcher создает новый экземпляр
func NewDispatcher(
	repo Repository,
	publisher Publisher,
	txManager TransactionManager,
	metrics Metrics,
	clock TimeProvider,
	logger Logger,
	batchSize int,
) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		publisher: publisher,
		txManager: txManager,
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Run опрашивает outbox с заданным интервалом до отмены ctx
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.DispatchBatch(ctx); err != nil {
				d.logger.Error("Dispatcher: batch failed: %v", err)
			}
		}
	}
}

// DispatchBatch публикует одну пачку событий. Возвращает число опубликованных.
// Неудачная публикация оставляет событие в статусе new для следующей попытки.
func (d *Dispatcher) DispatchBatch(ctx context.Context) (int, error) {
	published := 0

	err := d.txManager.Do(ctx, func(ctx context.Context) error {
		records, err := d.repo.FetchPending(ctx, d.batchSize)
		if err != nil {
			return fmt.Errorf("fetch pending: %w", err)
		}

		for _, rec := range records {
			pubErr := d.publisher.Publish(ctx, string(rec.Type), rec.ID.String(), rec.Payload)
			if pubErr != nil {
				d.metrics.IncOutbox(resultFailed)
				d.logger.Warn("Dispatcher: publish %s (%s) failed, attempt %d: %v", rec.ID, rec.Type, rec.Attempts+1, pubErr)
				if err := d.repo.MarkFailed(ctx, rec.ID, pubErr); err != nil {
					return fmt.Errorf("mark failed %s: %w", rec.ID, err)
				}
				continue
			}

			if err := d.repo.MarkPublished(ctx, rec.ID, d.clock.Now()); err != nil {
				return fmt.Errorf("mark published %s: %w", rec.ID, err)
			}
			d.metrics.IncOutbox(resultPublished)
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if published > 0 {
		d.logger.Info("Dispatcher: published %d events", published)
	}
	return published, nil
}
