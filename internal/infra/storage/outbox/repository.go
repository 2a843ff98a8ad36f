package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

const maxLastErrorLength = 1000

// Repository хранилище исходящих событий (transactional outbox)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert сохраняет событие. Вызывается в той же транзакции, что и изменение агрегата.
func (r *Repository) Insert(ctx context.Context, event *domain.Event) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("outbox_events").
		Columns("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "occurred_at").
		Values(
			event.ID,
			event.AggregateType,
			event.AggregateID,
			event.Type,
			string(event.Payload),
			domain.OutboxNew,
			event.OccurredAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Insert - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Insert - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// FetchPending выбирает неопубликованные события в порядке возникновения.
// В транзакции строки блокируются с SKIP LOCKED, чтобы параллельные воркеры не брали одни и те же события.
func (r *Repository) FetchPending(ctx context.Context, limit int) ([]*domain.OutboxRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(
		"id",
		"aggregate_type",
		"aggregate_id",
		"event_type",
		"payload",
		"status",
		"attempts",
		"last_error",
		"occurred_at",
		"published_at",
	).
		From("outbox_events").
		Where(squirrel.Eq{"status": domain.OutboxNew}).
		OrderBy("occurred_at").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var records []*domain.OutboxRecord
	for rows.Next() {
		var rec domain.OutboxRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.AggregateType,
			&rec.AggregateID,
			&rec.Type,
			&rec.Payload,
			&rec.Status,
			&rec.Attempts,
			&rec.LastError,
			&rec.OccurredAt,
			&rec.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: FetchPending - scan row: %w", ErrScanRow, err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchPending - rows iteration: %w", ErrScanRow, err)
	}

	return records, nil
}

// MarkPublished помечает событие доставленным
func (r *Repository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("outbox_events").
		Set("status", domain.OutboxPublished).
		Set("published_at", at).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// MarkFailed увеличивает счетчик попыток и запоминает ошибку; событие остается в статусе new
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	msg := cause.Error()
	if len(msg) > maxLastErrorLength {
		msg = msg[:maxLastErrorLength]
	}

	query, args, err := psqlbuilder.Update("outbox_events").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", msg).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkFailed - execute update: %w", ErrExecQuery, err)
	}

	return nil
}
