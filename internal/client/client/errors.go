package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/wire"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrUnavailable = errors.New("server unavailable")

var reasonErrors = map[string]error{
	wire.ReasonAlreadyExists:      common.ErrAlreadyExists,
	wire.ReasonInvalidCredentials: common.ErrInvalidCredentials,
	wire.ReasonUnauthorized:       common.ErrUnauthorized,
	wire.ReasonNotFound:           common.ErrNotFound,
	wire.ReasonDuplicateName:      common.ErrDuplicateName,
	wire.ReasonDecryptError:       common.ErrDecrypt,
	wire.ReasonStorageError:       common.ErrStorage,
	wire.ReasonInvalidArgument:    common.ErrInvalidArgument,
}

func reasonOf(st *status.Status) string {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.Domain == common.ErrorDomain {
			return info.Reason
		}
	}
	return ""
}

// mapError turns a gRPC status error into a common sentinel. The server
// message is kept for InvalidArgument since it names the offending field.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	if sentinel, ok := reasonErrors[reasonOf(st)]; ok {
		if errors.Is(sentinel, common.ErrInvalidArgument) && st.Message() != sentinel.Error() {
			return fmt.Errorf("%w: %s", sentinel, st.Message())
		}
		return sentinel
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
