package payroll

import "errors"

var (
	// ErrPayRunNotFound возвращается, когда платежная ведомость не найдена
	ErrPayRunNotFound = errors.New("payroll.repository: pay run not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("payroll.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("payroll.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("payroll.repository: failed to scan row")
)
