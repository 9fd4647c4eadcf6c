package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/wire"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classify maps a service error to a status code, a reason and a message
// that is safe to send to the client.
func classify(err error) (codes.Code, string, string) {
	switch {
	case errors.Is(err, common.ErrAlreadyExists):
		return codes.AlreadyExists, wire.ReasonAlreadyExists, common.ErrAlreadyExists.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return codes.Unauthenticated, wire.ReasonInvalidCredentials, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrUnauthorized):
		return codes.Unauthenticated, wire.ReasonUnauthorized, common.ErrUnauthorized.Error()
	case errors.Is(err, common.ErrNotFound):
		return codes.NotFound, wire.ReasonNotFound, common.ErrNotFound.Error()
	case errors.Is(err, common.ErrDuplicateName):
		return codes.AlreadyExists, wire.ReasonDuplicateName, common.ErrDuplicateName.Error()
	case errors.Is(err, common.ErrDecrypt):
		return codes.DataLoss, wire.ReasonDecryptError, common.ErrDecrypt.Error()
	case errors.Is(err, common.ErrInvalidArgument):
		return codes.InvalidArgument, wire.ReasonInvalidArgument, err.Error()
	case errors.Is(err, common.ErrStorage):
		return codes.Unavailable, wire.ReasonStorageError, common.ErrStorage.Error()
	case errors.Is(err, context.Canceled):
		return codes.Canceled, "", "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded, "", "deadline exceeded"
	default:
		return codes.Internal, wire.ReasonInternal, "internal error"
	}
}

// toStatus converts err into a gRPC status error with an ErrorInfo detail.
// Storage and unexpected failures are logged with their cause; the client
// only sees the generic message.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	code, reason, msg := classify(err)

	if code == codes.Unavailable || code == codes.Internal {
		s.logger.Error(ctx, "request failed", "reason", reason, "error", err)
	}

	st := status.New(code, msg)
	if reason == "" {
		return st.Err()
	}
	withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: common.ErrorDomain})
	if derr != nil {
		return st.Err()
	}
	return withInfo.Err()
}
