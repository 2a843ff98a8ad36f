package hold

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

// Repository репозиторий холдов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория холдов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый холд
func (r *Repository) Create(ctx context.Context, hold *domain.BookingHold) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	services, err := json.Marshal(hold.Services)
	if err != nil {
		return fmt.Errorf("%w: Create - services: %w", ErrEncode, err)
	}
	metadata, err := json.Marshal(hold.Metadata)
	if err != nil {
		return fmt.Errorf("%w: Create - metadata: %w", ErrEncode, err)
	}
	var address sql.NullString
	if hold.Address != nil {
		raw, err := json.Marshal(hold.Address)
		if err != nil {
			return fmt.Errorf("%w: Create - address: %w", ErrEncode, err)
		}
		address = sql.NullString{String: string(raw), Valid: true}
	}

	query, args, err := psqlbuilder.Insert("booking_holds").
		Columns(
			"id",
			"provider_id",
			"staff_id",
			"location_id",
			"location_type",
			"start_at",
			"end_at",
			"services",
			"address",
			"metadata",
			"status",
			"expires_at",
			"created_by_user_id",
			"guest_fingerprint_hash",
		).
		Values(
			hold.ID,
			hold.ProviderID,
			hold.StaffID,
			hold.LocationID,
			hold.LocationType,
			hold.StartAt,
			hold.EndAt,
			string(services),
			address,
			string(metadata),
			hold.Status,
			hold.ExpiresAt,
			hold.CreatedByUserID,
			hold.GuestFingerprintHash,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	hold.CreatedAt = createdAt.Time
	hold.UpdatedAt = updatedAt.Time

	return nil
}

// GetByID получает холд по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingHold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"staff_id",
		"location_id",
		"location_type",
		"start_at",
		"end_at",
		"services",
		"address",
		"metadata",
		"status",
		"expires_at",
		"created_by_user_id",
		"guest_fingerprint_hash",
		"booking_id",
		"consumed_at",
		"created_at",
		"updated_at",
	).
		From("booking_holds").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var h domain.BookingHold
	var services, address, metadata []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&h.ID,
		&h.ProviderID,
		&h.StaffID,
		&h.LocationID,
		&h.LocationType,
		&h.StartAt,
		&h.EndAt,
		&services,
		&address,
		&metadata,
		&h.Status,
		&h.ExpiresAt,
		&h.CreatedByUserID,
		&h.GuestFingerprintHash,
		&h.BookingID,
		&h.ConsumedAt,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan hold: %w", ErrScanRow, err)
	}

	if err := json.Unmarshal(services, &h.Services); err != nil {
		return nil, fmt.Errorf("%w: GetByID - decode services: %w", ErrScanRow, err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &h.Metadata); err != nil {
			return nil, fmt.Errorf("%w: GetByID - decode metadata: %w", ErrScanRow, err)
		}
	}
	if len(address) > 0 {
		h.Address = &domain.Address{}
		if err := json.Unmarshal(address, h.Address); err != nil {
			return nil, fmt.Errorf("%w: GetByID - decode address: %w", ErrScanRow, err)
		}
	}

	h.CreatedAt = createdAt.Time
	h.UpdatedAt = updatedAt.Time
	return &h, nil
}

// MarkConsumed атомарно переводит активный непросроченный холд в consumed.
// Возвращает false, если холд уже не active или истек к моменту now: ровно один
// из конкурирующих вызовов получит true.
func (r *Repository) MarkConsumed(ctx context.Context, id uuid.UUID, userID, bookingID int64, now time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_holds").
		Set("status", domain.HoldConsumed).
		Set("created_by_user_id", userID).
		Set("booking_id", bookingID).
		Set("consumed_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": domain.HoldActive}).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: MarkConsumed - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: MarkConsumed - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: MarkConsumed - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected == 1, nil
}

// ExpireStale переводит в expired все активные холды с истекшим сроком. Возвращает число строк.
func (r *Repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_holds").
		Set("status", domain.HoldExpired).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": domain.HoldActive}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - get rows affected: %w", ErrExecQuery, err)
	}
	return rowsAffected, nil
}
