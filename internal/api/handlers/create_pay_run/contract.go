package create_pay_run

import (
	"context"

	createPayRun "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_pay_run"
)

type CreatePayRunUseCase interface {
	Execute(ctx context.Context, req *createPayRun.Request) (*createPayRun.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
