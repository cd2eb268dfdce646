package propose_time

import (
	"context"

	proposeTime "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/propose_time"
)

type ProposeTimeUseCase interface {
	Execute(ctx context.Context, req *proposeTime.Request) (*proposeTime.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
