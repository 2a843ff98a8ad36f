package create_pay_run

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	createPayRun "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_pay_run"
)

// CreatePayRunRequest HTTP request model
type CreatePayRunRequest struct {
	PayPeriodStart string `json:"payPeriodStart"` // "2026-03-01"
	PayPeriodEnd   string `json:"payPeriodEnd"`   // "2026-03-31", включительно
	PeriodType     string `json:"periodType"`     // weekly | monthly
	AllowWarnings  bool   `json:"allowWarnings,omitempty"`
}

// WarningResponse предупреждение о неполной настройке оплаты
type WarningResponse struct {
	StaffID int64  `json:"staffId"`
	Reason  string `json:"reason"`
}

// PayRunItemResponse строка ведомости
type PayRunItemResponse struct {
	StaffID          int64   `json:"staffId"`
	CommissionAmount string  `json:"commissionAmount"`
	HourlyAmount     string  `json:"hourlyAmount"`
	SalaryAmount     string  `json:"salaryAmount"`
	TipsAmount       string  `json:"tipsAmount"`
	GrossPay         string  `json:"grossPay"`
	ManualDeductions string  `json:"manualDeductions"`
	TaxDeduction     string  `json:"taxDeduction"`
	UIFContribution  string  `json:"uifContribution"`
	NetPay           string  `json:"netPay"`
	Notes            *string `json:"notes,omitempty"`
}

// PayRunResponse HTTP response model
type PayRunResponse struct {
	PayRunID  int64                `json:"payRunId"`
	ItemCount int                  `json:"itemCount"`
	Items     []PayRunItemResponse `json:"items"`
	Warnings  []WarningResponse    `json:"warnings,omitempty"`
}

// WarningsErrorResponse тело ответа 422
type WarningsErrorResponse struct {
	Error    string            `json:"error"`
	Code     string            `json:"code"`
	Warnings []WarningResponse `json:"warnings"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreatePayRunRequest) ToUseCaseRequest(userID, providerID int64) (*createPayRun.Request, error) {
	start, err := time.Parse(domain.DateFormat, r.PayPeriodStart)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(domain.DateFormat, r.PayPeriodEnd)
	if err != nil {
		return nil, err
	}
	return &createPayRun.Request{
		UserID:         userID,
		ProviderID:     providerID,
		PayPeriodStart: start,
		PayPeriodEnd:   end,
		PeriodType:     domain.PeriodType(r.PeriodType),
		AllowWarnings:  r.AllowWarnings,
	}, nil
}

// FromWarnings конвертирует предупреждения в HTTP модель
func FromWarnings(warnings []domain.PayRunConfigurationWarning) []WarningResponse {
	resp := make([]WarningResponse, 0, len(warnings))
	for _, w := range warnings {
		resp = append(resp, WarningResponse{StaffID: w.StaffID, Reason: w.Reason})
	}
	return resp
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createPayRun.Response) *PayRunResponse {
	items := make([]PayRunItemResponse, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, PayRunItemResponse{
			StaffID:          it.StaffID,
			CommissionAmount: it.CommissionAmount.StringFixed(2),
			HourlyAmount:     it.HourlyAmount.StringFixed(2),
			SalaryAmount:     it.SalaryAmount.StringFixed(2),
			TipsAmount:       it.TipsAmount.StringFixed(2),
			GrossPay:         it.GrossPay.StringFixed(2),
			ManualDeductions: it.ManualDeductions.StringFixed(2),
			TaxDeduction:     it.TaxDeduction.StringFixed(2),
			UIFContribution:  it.UIFContribution.StringFixed(2),
			NetPay:           it.NetPay.StringFixed(2),
			Notes:            it.Notes,
		})
	}
	result := &PayRunResponse{
		PayRunID:  resp.PayRunID,
		ItemCount: resp.ItemCount,
		Items:     items,
	}
	if len(resp.Warnings) > 0 {
		result.Warnings = FromWarnings(resp.Warnings)
	}
	return result
}
