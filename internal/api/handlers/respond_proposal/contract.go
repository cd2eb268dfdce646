package respond_proposal

import (
	"context"

	respondProposal "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/respond_proposal"
)

type RespondProposalUseCase interface {
	Execute(ctx context.Context, req *respondProposal.Request) (*respondProposal.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
