// Package payroll computes pay-run items from compensation settings and period activity.
package payroll

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	weeksPerYear  = decimal.NewFromInt(52)
	monthsPerYear = decimal.NewFromInt(12)
)

// Warning reasons
const (
	ReasonNoCompensation  = "no compensation record"
	ReasonNoHourlyRate    = "hourly rate is not set"
	ReasonNoMonthlySalary = "monthly salary is not set"
	ReasonUnknownType     = "unknown compensation type"
)

// Calculate считает строки платежной ведомости для активных сотрудников, по возрастанию ID.
//
// Компоненты округляются до 2 знаков при формировании строки, gross и net
// выводятся из уже округленных значений, поэтому
// gross = commission + hourly + salary + tips и net = gross - deductions - tax - uif
// выполняются точно.
//
// Отсутствующая настройка оплаты не дает тихий ноль: строка считается с нулем
// для недостающей части и добавляется предупреждение.
func Calculate(in domain.PayrollInput) ([]*domain.PayRunItem, []domain.PayRunConfigurationWarning) {
	staff := make([]*domain.Staff, 0, len(in.Staff))
	for _, s := range in.Staff {
		if s != nil && s.IsActive {
			staff = append(staff, s)
		}
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].ID < staff[j].ID })

	revenue := make(map[int64][]*domain.RevenueLine)
	for _, r := range in.Revenue {
		revenue[r.StaffID] = append(revenue[r.StaffID], r)
	}
	tips := make(map[int64]decimal.Decimal)
	for _, t := range in.Tips {
		tips[t.StaffID] = tips[t.StaffID].Add(t.Amount)
	}
	hours := make(map[int64]decimal.Decimal)
	for _, s := range in.Shifts {
		hours[s.StaffID] = hours[s.StaffID].Add(s.Hours)
	}

	items := make([]*domain.PayRunItem, 0, len(staff))
	warnings := make([]domain.PayRunConfigurationWarning, 0)

	for _, s := range staff {
		var reasons []string
		comp := in.Compensation[s.ID]

		var commission, hourly, salary decimal.Decimal
		if comp == nil {
			reasons = append(reasons, ReasonNoCompensation)
		} else {
			switch comp.Type {
			case domain.CompensationCommission:
				var missing []string
				commission, missing = commissionFor(s.ID, revenue[s.ID], in.CommissionRules, comp.DefaultCommissionRate)
				reasons = append(reasons, missing...)
			case domain.CompensationHourly:
				if comp.HourlyRate == nil {
					reasons = append(reasons, ReasonNoHourlyRate)
				} else {
					hourly = hours[s.ID].Mul(*comp.HourlyRate)
				}
			case domain.CompensationSalary:
				if comp.MonthlySalary == nil {
					reasons = append(reasons, ReasonNoMonthlySalary)
				} else {
					salary = salaryFor(*comp.MonthlySalary, in.PeriodType)
				}
			case domain.CompensationHybrid:
				var missing []string
				commission, missing = commissionFor(s.ID, revenue[s.ID], in.CommissionRules, comp.DefaultCommissionRate)
				reasons = append(reasons, missing...)
				if comp.MonthlySalary == nil {
					reasons = append(reasons, ReasonNoMonthlySalary)
				} else {
					salary = salaryFor(*comp.MonthlySalary, in.PeriodType)
				}
			default:
				reasons = append(reasons, fmt.Sprintf("%s %q", ReasonUnknownType, comp.Type))
			}
		}

		item := buildItem(s.ID, commission, hourly, salary, tips[s.ID], in.Rules, in.PeriodType)
		if len(reasons) > 0 {
			notes := strings.Join(reasons, "; ")
			item.Notes = &notes
			for _, r := range reasons {
				warnings = append(warnings, domain.PayRunConfigurationWarning{StaffID: s.ID, Reason: r})
			}
		}
		items = append(items, item)
	}

	return items, warnings
}

func buildItem(
	staffID int64,
	commission, hourly, salary, tips decimal.Decimal,
	rules *domain.PayrollRules,
	period domain.PeriodType,
) *domain.PayRunItem {
	item := &domain.PayRunItem{
		StaffID:          staffID,
		CommissionAmount: round2(commission),
		HourlyAmount:     round2(hourly),
		SalaryAmount:     round2(salary),
		TipsAmount:       round2(tips),
	}
	item.GrossPay = item.CommissionAmount.Add(item.HourlyAmount).Add(item.SalaryAmount).Add(item.TipsAmount)

	if rules != nil {
		item.ManualDeductions = round2(applyAmount(rules.DeductionType, rules.DeductionValue, item.GrossPay))
		item.TaxDeduction = round2(applyAmount(rules.TaxType, rules.TaxValue, item.GrossPay))
		item.UIFContribution = round2(uifFor(item.GrossPay, rules, period))
	}

	item.NetPay = item.GrossPay.Sub(item.ManualDeductions).Sub(item.TaxDeduction).Sub(item.UIFContribution)
	return item
}

// commissionFor суммирует комиссию по строкам выручки. Строки без ставки пропускаются
// с предупреждением, по одному на услугу.
func commissionFor(
	staffID int64,
	lines []*domain.RevenueLine,
	rules []*domain.CommissionRule,
	defaultRate *decimal.Decimal,
) (decimal.Decimal, []string) {
	total := decimal.Zero
	var missing []string
	reported := make(map[int64]struct{})

	for _, line := range lines {
		rate, ok := ResolveRate(staffID, line, rules, defaultRate)
		if !ok {
			if _, seen := reported[line.OfferingID]; !seen {
				reported[line.OfferingID] = struct{}{}
				missing = append(missing, fmt.Sprintf("no commission rate for offering %d", line.OfferingID))
			}
			continue
		}
		total = total.Add(line.NetAmount.Mul(rate))
	}
	return total, missing
}

// ResolveRate ищет ставку комиссии, от самой специфичной:
// 1. Сотрудник + услуга
// 2. Сотрудник + категория
// 3. Ставка сотрудника по умолчанию
// 4. Провайдер + услуга
// 5. Провайдер + категория
// 6. DefaultCommissionRate из настроек оплаты
func ResolveRate(
	staffID int64,
	line *domain.RevenueLine,
	rules []*domain.CommissionRule,
	defaultRate *decimal.Decimal,
) (decimal.Decimal, bool) {
	const levels = 5
	var found [levels]*domain.CommissionRule

	for _, r := range rules {
		var level int
		switch {
		case r.StaffID != nil && *r.StaffID != staffID:
			continue
		case r.StaffID != nil && r.OfferingID != nil:
			if *r.OfferingID != line.OfferingID {
				continue
			}
			level = 0
		case r.StaffID != nil && r.CategoryID != nil:
			if line.CategoryID == nil || *r.CategoryID != *line.CategoryID {
				continue
			}
			level = 1
		case r.StaffID != nil:
			level = 2
		case r.OfferingID != nil:
			if *r.OfferingID != line.OfferingID {
				continue
			}
			level = 3
		case r.CategoryID != nil:
			if line.CategoryID == nil || *r.CategoryID != *line.CategoryID {
				continue
			}
			level = 4
		default:
			continue
		}
		if found[level] == nil {
			found[level] = r
		}
	}

	for _, r := range found {
		if r != nil {
			return r.Rate, true
		}
	}
	if defaultRate != nil {
		return *defaultRate, true
	}
	return decimal.Zero, false
}

func salaryFor(monthly decimal.Decimal, period domain.PeriodType) decimal.Decimal {
	if period == domain.PeriodWeekly {
		return monthly.Mul(monthsPerYear).Div(weeksPerYear)
	}
	return monthly
}

func applyAmount(kind domain.AmountType, value, gross decimal.Decimal) decimal.Decimal {
	switch kind {
	case domain.AmountFlat:
		return value
	case domain.AmountPercentage:
		return gross.Mul(value)
	default:
		return decimal.Zero
	}
}

// uifFor взнос UIF: gross * rate, не больше месячного лимита (для недели лимит * 12/52)
func uifFor(gross decimal.Decimal, rules *domain.PayrollRules, period domain.PeriodType) decimal.Decimal {
	uif := gross.Mul(rules.UIFRate)
	if rules.UIFMonthlyCap == nil {
		return uif
	}
	limit := *rules.UIFMonthlyCap
	if period == domain.PeriodWeekly {
		limit = limit.Mul(monthsPerYear).Div(weeksPerYear)
	}
	return decimal.Min(uif, limit)
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
