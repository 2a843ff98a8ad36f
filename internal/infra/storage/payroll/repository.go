package payroll

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

const transactionCompleted = "completed"

// Repository репозиторий данных для расчета зарплат
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetCompensation возвращает схемы оплаты сотрудников по их ID
func (r *Repository) GetCompensation(ctx context.Context, staffIDs []int64) (map[int64]*domain.StaffCompensation, error) {
	result := make(map[int64]*domain.StaffCompensation, len(staffIDs))
	if len(staffIDs) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"staff_id",
		"type",
		"hourly_rate",
		"monthly_salary",
		"default_commission_rate",
	).
		From("staff_compensation").
		Where(squirrel.Eq{"staff_id": staffIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCompensation - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetCompensation - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.StaffCompensation
		var hourly, salary, commission decimal.NullDecimal
		if err := rows.Scan(&c.StaffID, &c.Type, &hourly, &salary, &commission); err != nil {
			return nil, fmt.Errorf("%w: GetCompensation - scan row: %w", ErrScanRow, err)
		}
		c.HourlyRate = nullDecimalPtr(hourly)
		c.MonthlySalary = nullDecimalPtr(salary)
		c.DefaultCommissionRate = nullDecimalPtr(commission)
		result[c.StaffID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetCompensation - rows iteration: %w", ErrScanRow, err)
	}

	return result, nil
}

// GetCommissionRules возвращает все правила комиссий провайдера
func (r *Repository) GetCommissionRules(ctx context.Context, providerID int64) ([]*domain.CommissionRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "provider_id", "staff_id", "offering_id", "category_id", "rate").
		From("commission_rules").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCommissionRules - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetCommissionRules - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var rules []*domain.CommissionRule
	for rows.Next() {
		var rule domain.CommissionRule
		if err := rows.Scan(&rule.ID, &rule.ProviderID, &rule.StaffID, &rule.OfferingID, &rule.CategoryID, &rule.Rate); err != nil {
			return nil, fmt.Errorf("%w: GetCommissionRules - scan row: %w", ErrScanRow, err)
		}
		rules = append(rules, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetCommissionRules - rows iteration: %w", ErrScanRow, err)
	}

	return rules, nil
}

// GetRevenue возвращает завершенные транзакции по строкам бронирований за период [from, to)
func (r *Repository) GetRevenue(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.RevenueLine, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"ft.booking_service_id",
		"bs.staff_id",
		"bs.offering_id",
		"o.category_id",
		"ft.net_amount",
		"ft.completed_at",
	).
		From("financial_transactions ft").
		Join("booking_services bs ON bs.id = ft.booking_service_id").
		Join("offerings o ON o.id = bs.offering_id").
		Where(squirrel.Eq{"ft.provider_id": providerID, "ft.status": transactionCompleted}).
		Where(squirrel.GtOrEq{"ft.completed_at": from}).
		Where(squirrel.Lt{"ft.completed_at": to}).
		OrderBy("ft.completed_at", "ft.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetRevenue - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRevenue - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var lines []*domain.RevenueLine
	for rows.Next() {
		var l domain.RevenueLine
		if err := rows.Scan(&l.BookingServiceID, &l.StaffID, &l.OfferingID, &l.CategoryID, &l.NetAmount, &l.CompletedAt); err != nil {
			return nil, fmt.Errorf("%w: GetRevenue - scan row: %w", ErrScanRow, err)
		}
		lines = append(lines, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRevenue - rows iteration: %w", ErrScanRow, err)
	}

	return lines, nil
}

// GetTips возвращает чаевые провайдера за период [from, to)
func (r *Repository) GetTips(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.TipRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("staff_id", "amount", "received_at").
		From("tips").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.GtOrEq{"received_at": from}).
		Where(squirrel.Lt{"received_at": to}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetTips - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetTips - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var tips []*domain.TipRecord
	for rows.Next() {
		var tip domain.TipRecord
		if err := rows.Scan(&tip.StaffID, &tip.Amount, &tip.ReceivedAt); err != nil {
			return nil, fmt.Errorf("%w: GetTips - scan row: %w", ErrScanRow, err)
		}
		tips = append(tips, &tip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetTips - rows iteration: %w", ErrScanRow, err)
	}

	return tips, nil
}

// GetShifts возвращает отработанные смены за календарные дни периода [from, to]
func (r *Repository) GetShifts(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.WorkedShift, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("staff_id", "work_date", "hours").
		From("staff_shifts").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.GtOrEq{"work_date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"work_date": to.Format(domain.DateFormat)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetShifts - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetShifts - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var shifts []*domain.WorkedShift
	for rows.Next() {
		var s domain.WorkedShift
		if err := rows.Scan(&s.StaffID, &s.WorkDate, &s.Hours); err != nil {
			return nil, fmt.Errorf("%w: GetShifts - scan row: %w", ErrScanRow, err)
		}
		shifts = append(shifts, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetShifts - rows iteration: %w", ErrScanRow, err)
	}

	return shifts, nil
}

// GetRules возвращает правила удержаний провайдера; nil, если правила не настроены
func (r *Repository) GetRules(ctx context.Context, providerID int64) (*domain.PayrollRules, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"provider_id",
		"deduction_type",
		"deduction_value",
		"tax_type",
		"tax_value",
		"uif_rate",
		"uif_monthly_cap",
	).
		From("payroll_rules").
		Where(squirrel.Eq{"provider_id": providerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - build select query: %w", ErrBuildQuery, err)
	}

	var rules domain.PayrollRules
	var uifCap decimal.NullDecimal
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rules.ProviderID,
		&rules.DeductionType,
		&rules.DeductionValue,
		&rules.TaxType,
		&rules.TaxValue,
		&rules.UIFRate,
		&uifCap,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - scan row: %w", ErrScanRow, err)
	}
	rules.UIFMonthlyCap = nullDecimalPtr(uifCap)

	return &rules, nil
}

// CreatePayRun сохраняет ведомость и заполняет ID и CreatedAt
func (r *Repository) CreatePayRun(ctx context.Context, run *domain.PayRun) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("pay_runs").
		Columns("provider_id", "pay_period_start", "pay_period_end", "period_type", "status", "created_by").
		Values(
			run.ProviderID,
			run.PayPeriodStart.Format(domain.DateFormat),
			run.PayPeriodEnd.Format(domain.DateFormat),
			run.PeriodType,
			run.Status,
			run.CreatedBy,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreatePayRun - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.CreatedAt); err != nil {
		return fmt.Errorf("%w: CreatePayRun - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// CreateItems сохраняет строки ведомости одним запросом
func (r *Repository) CreateItems(ctx context.Context, payRunID int64, items []*domain.PayRunItem) error {
	if len(items) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("pay_run_items").
		Columns(
			"pay_run_id",
			"staff_id",
			"gross_pay",
			"commission_amount",
			"hourly_amount",
			"salary_amount",
			"tips_amount",
			"manual_deductions",
			"tax_deduction",
			"uif_contribution",
			"net_pay",
			"notes",
		)
	for _, item := range items {
		builder = builder.Values(
			payRunID,
			item.StaffID,
			item.GrossPay,
			item.CommissionAmount,
			item.HourlyAmount,
			item.SalaryAmount,
			item.TipsAmount,
			item.ManualDeductions,
			item.TaxDeduction,
			item.UIFContribution,
			item.NetPay,
			item.Notes,
		)
	}

	query, args, err := builder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateItems - build insert query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CreateItems - execute insert: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() && i < len(items) {
		if err := rows.Scan(&items[i].ID); err != nil {
			return fmt.Errorf("%w: CreateItems - scan id: %w", ErrScanRow, err)
		}
		items[i].PayRunID = payRunID
		i++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: CreateItems - rows iteration: %w", ErrScanRow, err)
	}

	return nil
}

// GetPayRun возвращает ведомость со строками
func (r *Repository) GetPayRun(ctx context.Context, id int64) (*domain.PayRun, []*domain.PayRunItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"pay_period_start",
		"pay_period_end",
		"period_type",
		"status",
		"created_by",
		"created_at",
		"approved_at",
	).
		From("pay_runs").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: GetPayRun - build select query: %w", ErrBuildQuery, err)
	}

	var run domain.PayRun
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&run.ID,
		&run.ProviderID,
		&run.PayPeriodStart,
		&run.PayPeriodEnd,
		&run.PeriodType,
		&run.Status,
		&run.CreatedBy,
		&run.CreatedAt,
		&run.ApprovedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, ErrPayRunNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: GetPayRun - scan row: %w", ErrScanRow, err)
	}

	itemsQuery, itemsArgs, err := psqlbuilder.Select(
		"id",
		"pay_run_id",
		"staff_id",
		"gross_pay",
		"commission_amount",
		"hourly_amount",
		"salary_amount",
		"tips_amount",
		"manual_deductions",
		"tax_deduction",
		"uif_contribution",
		"net_pay",
		"notes",
	).
		From("pay_run_items").
		Where(squirrel.Eq{"pay_run_id": id}).
		OrderBy("staff_id").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: GetPayRun - build items query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, itemsQuery, itemsArgs...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: GetPayRun - execute items query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	var items []*domain.PayRunItem
	for rows.Next() {
		var it domain.PayRunItem
		if err := rows.Scan(
			&it.ID,
			&it.PayRunID,
			&it.StaffID,
			&it.GrossPay,
			&it.CommissionAmount,
			&it.HourlyAmount,
			&it.SalaryAmount,
			&it.TipsAmount,
			&it.ManualDeductions,
			&it.TaxDeduction,
			&it.UIFContribution,
			&it.NetPay,
			&it.Notes,
		); err != nil {
			return nil, nil, fmt.Errorf("%w: GetPayRun - scan item: %w", ErrScanRow, err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: GetPayRun - rows iteration: %w", ErrScanRow, err)
	}

	return &run, items, nil
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
