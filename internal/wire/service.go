package wire

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "rpass.v1.Vault"

// Method names.
const (
	MethodRegister     = "Register"
	MethodLogin        = "Login"
	MethodLogout       = "Logout"
	MethodClearData    = "ClearData"
	MethodNewRecord    = "NewRecord"
	MethodReadRecord   = "ReadRecord"
	MethodUpdateRecord = "UpdateRecord"
	MethodDeleteRecord = "DeleteRecord"
	MethodListRecords  = "ListRecords"
	MethodPing         = "Ping"
)

// FullMethod returns the gRPC path of method, e.g. "/rpass.v1.Vault/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// VaultServer is implemented by the server-side handlers.
type VaultServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	ClearData(context.Context, *ClearDataRequest) (*ClearDataResponse, error)
	NewRecord(context.Context, *NewRecordRequest) (*NewRecordResponse, error)
	ReadRecord(context.Context, *ReadRecordRequest) (*ReadRecordResponse, error)
	UpdateRecord(context.Context, *UpdateRecordRequest) (*UpdateRecordResponse, error)
	DeleteRecord(context.Context, *DeleteRecordRequest) (*DeleteRecordResponse, error)
	ListRecords(context.Context, *ListRecordsRequest) (*ListRecordsResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

func unary[Req, Resp any](method string, call func(VaultServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VaultServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VaultServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes rpass.v1.Vault for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, VaultServer.Register),
		unary(MethodLogin, VaultServer.Login),
		unary(MethodLogout, VaultServer.Logout),
		unary(MethodClearData, VaultServer.ClearData),
		unary(MethodNewRecord, VaultServer.NewRecord),
		unary(MethodReadRecord, VaultServer.ReadRecord),
		unary(MethodUpdateRecord, VaultServer.UpdateRecord),
		unary(MethodDeleteRecord, VaultServer.DeleteRecord),
		unary(MethodListRecords, VaultServer.ListRecords),
		unary(MethodPing, VaultServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpass/v1/vault",
}

// RegisterVaultServer registers srv on s.
func RegisterVaultServer(s grpc.ServiceRegistrar, srv VaultServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Error reasons carried in errdetails.ErrorInfo.Reason, domain "rpass".
const (
	ReasonAlreadyExists      = "ALREADY_EXISTS"
	ReasonInvalidCredentials = "INVALID_CREDENTIALS"
	ReasonUnauthorized       = "UNAUTHORIZED"
	ReasonNotFound           = "NOT_FOUND"
	ReasonDuplicateName      = "DUPLICATE_NAME"
	ReasonDecryptError       = "DECRYPT_ERROR"
	ReasonStorageError       = "STORAGE_ERROR"
	ReasonInvalidArgument    = "INVALID_ARGUMENT"
	ReasonInternal           = "INTERNAL"
)
