package client

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/dmitrijs2005/rpass/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func statusWithReason(t *testing.T, code codes.Code, msg, reason string) error {
	t.Helper()
	st, err := status.New(code, msg).WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: common.ErrorDomain})
	require.NoError(t, err)
	return st.Err()
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"already exists", statusWithReason(t, codes.AlreadyExists, "x", wire.ReasonAlreadyExists), common.ErrAlreadyExists},
		{"duplicate name", statusWithReason(t, codes.AlreadyExists, "x", wire.ReasonDuplicateName), common.ErrDuplicateName},
		{"bad credentials", statusWithReason(t, codes.Unauthenticated, "x", wire.ReasonInvalidCredentials), common.ErrInvalidCredentials},
		{"unauthorized", statusWithReason(t, codes.Unauthenticated, "x", wire.ReasonUnauthorized), common.ErrUnauthorized},
		{"not found", statusWithReason(t, codes.NotFound, "x", wire.ReasonNotFound), common.ErrNotFound},
		{"decrypt", statusWithReason(t, codes.DataLoss, "x", wire.ReasonDecryptError), common.ErrDecrypt},
		{"storage", statusWithReason(t, codes.Unavailable, "x", wire.ReasonStorageError), common.ErrStorage},
		{"invalid argument", statusWithReason(t, codes.InvalidArgument, "invalid argument: invalid username", wire.ReasonInvalidArgument), common.ErrInvalidArgument},
		{"bare unauthenticated", status.Error(codes.Unauthenticated, "nope"), common.ErrUnauthorized},
		{"transport down", status.Error(codes.Unavailable, "connection refused"), ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.want)
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	assert.NoError(t, mapError(nil))

	plain := errors.New("plain")
	assert.Equal(t, plain, mapError(plain))

	err := mapError(status.Error(codes.Internal, "boom"))
	assert.Contains(t, err.Error(), "rpc error")
}

func TestMapError_KeepsValidationMessage(t *testing.T) {
	err := mapError(statusWithReason(t, codes.InvalidArgument, "invalid argument: payload exceeds 10 bytes", wire.ReasonInvalidArgument))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "payload exceeds 10 bytes")
}
