package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с конфигурацией расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var configColumns = []string{
	"id",
	"provider_id",
	"location_id",
	"staff_id",
	"slot_interval_minutes",
	"travel_buffer_minutes",
	"advance_booking_days",
	"min_booking_notice_minutes",
	"created_at",
	"updated_at",
}

// GetByLevel получает конфигурацию ровно указанного уровня:
// 1. Если locationID и staffID заданы - сотрудник на конкретной локации
// 2. Если только locationID задан - вся локация
// 3. Если только staffID задан - сотрудник на всех локациях
// 4. Если оба nil - провайдер целиком
func (r *Repository) GetByLevel(ctx context.Context, providerID int64, locationID, staffID *int64) (*domain.SchedulingConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(configColumns...).
		From("scheduling_config").
		Where(squirrel.Eq{"provider_id": providerID})

	// Фильтрация по location_id (NULL или конкретное значение)
	if locationID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"location_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"location_id": *locationID})
	}

	// Фильтрация по staff_id (NULL или конкретное значение)
	if staffID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *staffID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLevel - build select query: %w", ErrBuildQuery, err)
	}

	config, err := scanConfig(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLevel - scan config: %w", ErrScanRow, err)
	}

	return config, nil
}

// GetConfigWithHierarchy получает конфигурацию с учетом иерархии приоритетов:
// 1. Сотрудник на локации (locationID, staffID)
// 2. Локация (locationID, NULL)
// 3. Сотрудник (NULL, staffID)
// 4. Провайдер (NULL, NULL)
//
// Если конфигурация не найдена ни на одном уровне, возвращает ErrConfigNotFound
func (r *Repository) GetConfigWithHierarchy(ctx context.Context, providerID int64, locationID, staffID *int64) (*domain.SchedulingConfig, error) {
	type level struct {
		name       string
		locationID *int64
		staffID    *int64
	}

	levels := make([]level, 0, 4)
	if locationID != nil && staffID != nil {
		levels = append(levels, level{"staff at location", locationID, staffID})
	}
	if locationID != nil {
		levels = append(levels, level{"location", locationID, nil})
	}
	if staffID != nil {
		levels = append(levels, level{"staff", nil, staffID})
	}
	levels = append(levels, level{"provider", nil, nil})

	for _, l := range levels {
		config, err := r.GetByLevel(ctx, providerID, l.locationID, l.staffID)
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: GetConfigWithHierarchy - level %s: %w", ErrExecQuery, l.name, err)
		}
	}

	return nil, ErrConfigNotFound
}

// GetAllByProvider получает все конфигурации провайдера, провайдерская первой
func (r *Repository) GetAllByProvider(ctx context.Context, providerID int64) ([]*domain.SchedulingConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(configColumns...).
		From("scheduling_config").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("location_id ASC NULLS FIRST, staff_id ASC NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByProvider - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByProvider - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	configs := make([]*domain.SchedulingConfig, 0)
	for rows.Next() {
		config, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetAllByProvider - scan row: %w", ErrScanRow, err)
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAllByProvider - rows error: %w", ErrScanRow, err)
	}

	return configs, nil
}

// Upsert создает или обновляет конфигурацию уровня (provider, location, staff)
func (r *Repository) Upsert(ctx context.Context, config *domain.SchedulingConfig) (*domain.SchedulingConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("scheduling_config").
		Columns(
			"provider_id",
			"location_id",
			"staff_id",
			"slot_interval_minutes",
			"travel_buffer_minutes",
			"advance_booking_days",
			"min_booking_notice_minutes",
		).
		Values(
			config.ProviderID,
			config.LocationID,
			config.StaffID,
			config.SlotIntervalMinutes,
			config.TravelBufferMinutes,
			config.AdvanceBookingDays,
			config.MinBookingNoticeMinutes,
		).
		Suffix(`ON CONFLICT (provider_id, COALESCE(location_id, 0), COALESCE(staff_id, 0)) DO UPDATE SET
			slot_interval_minutes = EXCLUDED.slot_interval_minutes,
			travel_buffer_minutes = EXCLUDED.travel_buffer_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			min_booking_notice_minutes = EXCLUDED.min_booking_notice_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&config.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time
	return config, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanConfig(row scanner) (*domain.SchedulingConfig, error) {
	var config domain.SchedulingConfig
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(
		&config.ID,
		&config.ProviderID,
		&config.LocationID,
		&config.StaffID,
		&config.SlotIntervalMinutes,
		&config.TravelBufferMinutes,
		&config.AdvanceBookingDays,
		&config.MinBookingNoticeMinutes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time
	return &config, nil
}
