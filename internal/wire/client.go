package wire

import (
	"context"

	"google.golang.org/grpc"
)

// VaultClient is a typed stub for rpass.v1.Vault. Every call is sent with
// the CBOR content-subtype.
type VaultClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultClient(cc grpc.ClientConnInterface) *VaultClient {
	return &VaultClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *VaultClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterRequest, RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *VaultClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginRequest, LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *VaultClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutRequest, LogoutResponse](ctx, c.cc, MethodLogout, in, opts)
}

func (c *VaultClient) ClearData(ctx context.Context, in *ClearDataRequest, opts ...grpc.CallOption) (*ClearDataResponse, error) {
	return invoke[ClearDataRequest, ClearDataResponse](ctx, c.cc, MethodClearData, in, opts)
}

func (c *VaultClient) NewRecord(ctx context.Context, in *NewRecordRequest, opts ...grpc.CallOption) (*NewRecordResponse, error) {
	return invoke[NewRecordRequest, NewRecordResponse](ctx, c.cc, MethodNewRecord, in, opts)
}

func (c *VaultClient) ReadRecord(ctx context.Context, in *ReadRecordRequest, opts ...grpc.CallOption) (*ReadRecordResponse, error) {
	return invoke[ReadRecordRequest, ReadRecordResponse](ctx, c.cc, MethodReadRecord, in, opts)
}

func (c *VaultClient) UpdateRecord(ctx context.Context, in *UpdateRecordRequest, opts ...grpc.CallOption) (*UpdateRecordResponse, error) {
	return invoke[UpdateRecordRequest, UpdateRecordResponse](ctx, c.cc, MethodUpdateRecord, in, opts)
}

func (c *VaultClient) DeleteRecord(ctx context.Context, in *DeleteRecordRequest, opts ...grpc.CallOption) (*DeleteRecordResponse, error) {
	return invoke[DeleteRecordRequest, DeleteRecordResponse](ctx, c.cc, MethodDeleteRecord, in, opts)
}

func (c *VaultClient) ListRecords(ctx context.Context, in *ListRecordsRequest, opts ...grpc.CallOption) (*ListRecordsResponse, error) {
	return invoke[ListRecordsRequest, ListRecordsResponse](ctx, c.cc, MethodListRecords, in, opts)
}

func (c *VaultClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, MethodPing, in, opts)
}
