package offering

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

// Repository репозиторий услуг провайдера
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByIDs получает услуги провайдера по списку ID. Чужие и несуществующие ID
// просто отсутствуют в результате, проверку делает вызывающий код.
func (r *Repository) GetByIDs(ctx context.Context, providerID int64, ids []int64) ([]*domain.Offering, error) {
	if len(ids) == 0 {
		return []*domain.Offering{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"category_id",
		"name",
		"duration_minutes",
		"price",
		"currency",
		"prep_buffer_minutes",
		"post_buffer_minutes",
		"is_active",
	).
		From("offerings").
		Where(squirrel.Eq{"provider_id": providerID, "id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Offering, 0, len(ids))
	for rows.Next() {
		var o domain.Offering
		if err := rows.Scan(
			&o.ID,
			&o.ProviderID,
			&o.CategoryID,
			&o.Name,
			&o.DurationMinutes,
			&o.Price,
			&o.Currency,
			&o.PrepBufferMinutes,
			&o.PostBufferMinutes,
			&o.IsActive,
		); err != nil {
			return nil, fmt.Errorf("%w: GetByIDs - scan row: %w", ErrScanRow, err)
		}
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}
