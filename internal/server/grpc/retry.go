package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/rpass/internal/common"
	"github.com/sethvargo/go-retry"
)

// withRetry runs op and runs it once more if it failed with a storage
// error. Every other error is returned as is.
func (s *GRPCServer) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(s.opts.RetryBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && errors.Is(err, common.ErrStorage) {
			s.logger.Warn(ctx, "storage error, retrying once", "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}
