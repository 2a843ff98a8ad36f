package consume_hold

import (
	"context"

	consumeHold "github.com/m04kA/SMC-SalonBookingService/internal/usecase/consume_hold"
)

type ConsumeHoldUseCase interface {
	Execute(ctx context.Context, req *consumeHold.Request) (*consumeHold.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
