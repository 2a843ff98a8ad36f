package paymentgateway

import "github.com/shopspring/decimal"

// CheckoutRequest параметры инициализации платежа за бронирование
type CheckoutRequest struct {
	Reference string // номер бронирования
	Email     string
	Amount    decimal.Decimal
	Currency  string
	BookingID int64
}

type initializeRequest struct {
	Reference string            `json:"reference"`
	Email     string            `json:"email,omitempty"`
	Amount    int64             `json:"amount"` // в минимальных единицах валюты
	Currency  string            `json:"currency"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}
