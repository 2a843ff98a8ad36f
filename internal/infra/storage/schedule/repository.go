package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// Repository репозиторий часов работы и блокировок времени
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetOperatingHours получает строки часов работы провайдера на день недели со всех уровней
// (провайдер, локация, сотрудник). Выбор уровня делает вызывающий код.
func (r *Repository) GetOperatingHours(ctx context.Context, providerID int64, weekday time.Weekday) ([]*domain.OperatingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"location_id",
		"staff_id",
		"weekday",
		"open_time",
		"close_time",
		"is_closed",
	).
		From("operating_hours").
		Where(squirrel.Eq{"provider_id": providerID, "weekday": int(weekday)}).
		OrderBy("open_time ASC NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOperatingHours - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOperatingHours - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.OperatingHours, 0)
	for rows.Next() {
		var h domain.OperatingHours
		var day int
		var openTime, closeTime sql.NullString

		if err := rows.Scan(
			&h.ID,
			&h.ProviderID,
			&h.LocationID,
			&h.StaffID,
			&day,
			&openTime,
			&closeTime,
			&h.IsClosed,
		); err != nil {
			return nil, fmt.Errorf("%w: GetOperatingHours - scan row: %w", ErrScanRow, err)
		}

		h.Weekday = time.Weekday(day)
		if openTime.Valid {
			if h.OpenTime, err = types.NewTimeStringFromString(openTime.String); err != nil {
				return nil, fmt.Errorf("%w: GetOperatingHours - open_time: %w", ErrScanRow, err)
			}
		}
		if closeTime.Valid {
			if h.CloseTime, err = types.NewTimeStringFromString(closeTime.String); err != nil {
				return nil, fmt.Errorf("%w: GetOperatingHours - close_time: %w", ErrScanRow, err)
			}
		}

		result = append(result, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOperatingHours - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// GetBlockedTimes получает блокировки сотрудника и блокировки всего провайдера (staff_id IS NULL),
// пересекающиеся с [from, to)
func (r *Repository) GetBlockedTimes(ctx context.Context, providerID, staffID int64, from, to time.Time) ([]*domain.BlockedTime, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"staff_id",
		"start_at",
		"end_at",
		"type",
		"reason",
	).
		From("blocked_times").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Or{
			squirrel.Eq{"staff_id": staffID},
			squirrel.Eq{"staff_id": nil},
		}).
		Where(squirrel.Lt{"start_at": to}).
		Where(squirrel.Gt{"end_at": from}).
		OrderBy("start_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlockedTimes - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlockedTimes - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BlockedTime, 0)
	for rows.Next() {
		var b domain.BlockedTime
		if err := rows.Scan(
			&b.ID,
			&b.ProviderID,
			&b.StaffID,
			&b.StartAt,
			&b.EndAt,
			&b.Type,
			&b.Reason,
		); err != nil {
			return nil, fmt.Errorf("%w: GetBlockedTimes - scan row: %w", ErrScanRow, err)
		}
		result = append(result, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBlockedTimes - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}
