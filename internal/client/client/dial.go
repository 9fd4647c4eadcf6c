package client

import (
	"fmt"

	"github.com/dmitrijs2005/rpass/internal/client/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// NewFromConfig connects to the server described by cfg, verifying it
// against cfg.TLSCAFile when one is set.
func NewFromConfig(cfg *config.Config) (*GRPCClient, error) {
	var opts []grpc.DialOption
	if cfg.TLSCAFile != "" {
		creds, err := credentials.NewClientTLSFromFile(cfg.TLSCAFile, "")
		if err != nil {
			return nil, fmt.Errorf("load CA bundle: %w", err)
		}
		opts = append(opts, grpc.WithTransportCredentials(creds))
	}
	return NewRPassClient(cfg.ServerEndpointAddr, opts...)
}
