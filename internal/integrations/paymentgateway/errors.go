package paymentgateway

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentgateway client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от платежного шлюза
	ErrInvalidResponse = errors.New("paymentgateway client: invalid response")

	// ErrRejected возвращается, когда шлюз отклонил инициализацию платежа
	ErrRejected = errors.New("paymentgateway client: checkout rejected")
)
