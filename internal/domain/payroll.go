package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PayRunStatus lifecycle of a pay run
type PayRunStatus string

const (
	PayRunDraft    PayRunStatus = "draft"
	PayRunApproved PayRunStatus = "approved"
	PayRunPaid     PayRunStatus = "paid"
)

// PeriodType pay period length
type PeriodType string

const (
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

// IsValid returns true for supported period types
func (p PeriodType) IsValid() bool {
	return p == PeriodWeekly || p == PeriodMonthly
}

// CompensationType how a staff member is paid
type CompensationType string

const (
	CompensationCommission CompensationType = "commission"
	CompensationHourly     CompensationType = "hourly"
	CompensationSalary     CompensationType = "salary"
	CompensationHybrid     CompensationType = "hybrid" // salary + commission
)

// AmountType flat amount or fraction of gross
type AmountType string

const (
	AmountFlat       AmountType = "flat"
	AmountPercentage AmountType = "percentage"
)

// PayRun payroll batch for a provider and period
type PayRun struct {
	ID             int64
	ProviderID     int64
	PayPeriodStart time.Time
	PayPeriodEnd   time.Time
	PeriodType     PeriodType
	Status         PayRunStatus
	CreatedBy      int64
	CreatedAt      time.Time
	ApprovedAt     *time.Time
}

// PayRunItem pay of one staff member in a pay run.
// GrossPay = Commission + Hourly + Salary + Tips
// NetPay = GrossPay - ManualDeductions - TaxDeduction - UIFContribution
type PayRunItem struct {
	ID               int64
	PayRunID         int64
	StaffID          int64
	GrossPay         decimal.Decimal
	CommissionAmount decimal.Decimal
	HourlyAmount     decimal.Decimal
	SalaryAmount     decimal.Decimal
	TipsAmount       decimal.Decimal
	ManualDeductions decimal.Decimal
	TaxDeduction     decimal.Decimal
	UIFContribution  decimal.Decimal
	NetPay           decimal.Decimal
	Notes            *string
}

// StaffCompensation configured pay scheme of a staff member
type StaffCompensation struct {
	StaffID               int64
	Type                  CompensationType
	HourlyRate            *decimal.Decimal
	MonthlySalary         *decimal.Decimal
	DefaultCommissionRate *decimal.Decimal // fraction, 0.10 = 10%
}

// CommissionRule commission rate override. Nil fields are wildcards.
type CommissionRule struct {
	ID         int64
	ProviderID int64
	StaffID    *int64
	OfferingID *int64
	CategoryID *int64
	Rate       decimal.Decimal
}

// RevenueLine net revenue collected for one booking service line
type RevenueLine struct {
	BookingServiceID int64
	StaffID          int64
	OfferingID       int64
	CategoryID       *int64
	NetAmount        decimal.Decimal
	CompletedAt      time.Time
}

// TipRecord tip attributed to a staff member
type TipRecord struct {
	StaffID    int64
	Amount     decimal.Decimal
	ReceivedAt time.Time
}

// WorkedShift hours logged by a staff member on a day
type WorkedShift struct {
	StaffID  int64
	WorkDate time.Time
	Hours    decimal.Decimal
}

// PayrollRules provider deductions applied to gross pay
type PayrollRules struct {
	ProviderID     int64
	DeductionType  AmountType
	DeductionValue decimal.Decimal
	TaxType        AmountType
	TaxValue       decimal.Decimal
	UIFRate        decimal.Decimal
	UIFMonthlyCap  *decimal.Decimal
}

// PayrollInput everything the pay-run engine reads
type PayrollInput struct {
	ProviderID      int64
	PeriodStart     time.Time
	PeriodEnd       time.Time // inclusive calendar day
	PeriodType      PeriodType
	Staff           []*Staff
	Compensation    map[int64]*StaffCompensation
	CommissionRules []*CommissionRule
	Revenue         []*RevenueLine
	Tips            []*TipRecord
	Shifts          []*WorkedShift
	Rules           *PayrollRules
}

// PayRunConfigurationWarning missing or incomplete pay configuration for a staff member
type PayRunConfigurationWarning struct {
	StaffID int64
	Reason  string
}

func (w PayRunConfigurationWarning) String() string {
	return fmt.Sprintf("staff %d: %s", w.StaffID, w.Reason)
}

// PayRunConfigurationError carries warnings the caller chose not to accept
type PayRunConfigurationError struct {
	Warnings []PayRunConfigurationWarning
}

func (e *PayRunConfigurationError) Error() string {
	return fmt.Sprintf("pay run has %d configuration warnings", len(e.Warnings))
}
