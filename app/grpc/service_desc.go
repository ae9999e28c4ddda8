package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "bandidos.auth.v1.PasswordResetService"

	RequestResetMethod  = "/" + ServiceName + "/RequestReset"
	ResetPasswordMethod = "/" + ServiceName + "/ResetPassword"
)

// PasswordResetServiceServer exchanges google.protobuf.Struct messages so
// that no generated code is needed on either side.
type PasswordResetServiceServer interface {
	RequestReset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ResetPassword(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var PasswordResetServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PasswordResetServiceServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "RequestReset", Handler: requestResetHandler},
		{MethodName: "ResetPassword", Handler: resetPasswordHandler},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "bandidos/auth/v1/password_reset.proto",
}

func RegisterPasswordResetServiceServer(s gogrpc.ServiceRegistrar, srv PasswordResetServiceServer) {
	s.RegisterService(&PasswordResetServiceDesc, srv)
}

func requestResetHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PasswordResetServiceServer).RequestReset(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: RequestResetMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PasswordResetServiceServer).RequestReset(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func resetPasswordHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PasswordResetServiceServer).ResetPassword(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: ResetPasswordMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PasswordResetServiceServer).ResetPassword(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// PasswordResetServiceClient is the calling side of PasswordResetServiceDesc.
type PasswordResetServiceClient struct {
	cc gogrpc.ClientConnInterface
}

func NewPasswordResetServiceClient(cc gogrpc.ClientConnInterface) *PasswordResetServiceClient {
	return &PasswordResetServiceClient{cc: cc}
}

func (c *PasswordResetServiceClient) RequestReset(ctx context.Context, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RequestResetMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PasswordResetServiceClient) ResetPassword(ctx context.Context, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ResetPasswordMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
