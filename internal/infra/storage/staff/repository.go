package staff

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

// Repository репозиторий сотрудников. Часовой пояс берется у провайдера.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория сотрудников
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

func selectStaff() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"s.id",
		"s.provider_id",
		"s.location_id",
		"s.user_id",
		"s.name",
		"s.role",
		"s.is_active",
		"p.timezone",
	).
		From("staff s").
		Join("providers p ON p.id = s.provider_id")
}

// GetByID получает сотрудника по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	query, args, err := selectStaff().
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}
	return r.getOne(ctx, "GetByID", query, args)
}

// GetByUserAndProvider получает сотрудника провайдера по ID пользователя
func (r *Repository) GetByUserAndProvider(ctx context.Context, userID, providerID int64) (*domain.Staff, error) {
	query, args, err := selectStaff().
		Where(squirrel.Eq{"s.user_id": userID, "s.provider_id": providerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserAndProvider - build select query: %w", ErrBuildQuery, err)
	}
	return r.getOne(ctx, "GetByUserAndProvider", query, args)
}

// ListByProvider получает всех сотрудников провайдера, включая неактивных
func (r *Repository) ListByProvider(ctx context.Context, providerID int64) ([]*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectStaff().
		Where(squirrel.Eq{"s.provider_id": providerID}).
		OrderBy("s.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByProvider - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByProvider - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	staff := make([]*domain.Staff, 0)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByProvider - scan row: %w", ErrScanRow, err)
		}
		staff = append(staff, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByProvider - rows error: %w", ErrScanRow, err)
	}

	return staff, nil
}

func (r *Repository) getOne(ctx context.Context, method, query string, args []interface{}) (*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	s, err := scanStaff(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan staff: %w", ErrScanRow, method, err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStaff(row scanner) (*domain.Staff, error) {
	var s domain.Staff
	if err := row.Scan(
		&s.ID,
		&s.ProviderID,
		&s.LocationID,
		&s.UserID,
		&s.Name,
		&s.Role,
		&s.IsActive,
		&s.Timezone,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
