package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/azafe/Bandidos-backend/app/service"
	"github.com/azafe/Bandidos-backend/app/types"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type passwordResetService interface {
	RequestReset(ctx context.Context, email string, client service.ClientInfo) error
	ResetPassword(ctx context.Context, token, newPassword string, client service.ClientInfo) error
}

type PasswordResetServer struct {
	resetService passwordResetService
}

func NewPasswordResetServer(resetService passwordResetService) *PasswordResetServer {
	return &PasswordResetServer{resetService: resetService}
}

// NewServer builds a gRPC server with the password reset service registered.
// An empty apiKey leaves the service open.
func NewServer(srv PasswordResetServiceServer, apiKey string) *gogrpc.Server {
	var opts []gogrpc.ServerOption
	if apiKey != "" {
		opts = append(opts, gogrpc.ChainUnaryInterceptor(APIKeyUnaryInterceptor(apiKey)))
	}
	s := gogrpc.NewServer(opts...)
	RegisterPasswordResetServiceServer(s, srv)
	return s
}

func (s *PasswordResetServer) RequestReset(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := types.NewForgotPasswordRequestFromStruct(in)
	if err := req.Validate(); err != nil {
		logrus.WithError(err).Debug("Forgot password validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.resetService.RequestReset(ctx, req.GetEmail(), clientInfo(ctx)); err != nil {
		logrus.WithError(err).Error("Password reset request failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	return okResponse(), nil
}

func (s *PasswordResetServer) ResetPassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := types.NewResetPasswordRequestFromStruct(in)
	if err := req.Validate(); err != nil {
		logrus.WithError(err).Debug("Reset password validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	err := s.resetService.ResetPassword(ctx, req.GetToken(), req.GetNewPassword(), clientInfo(ctx))
	if err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			logrus.Warn("Reset password failed: weak password (grpc)")
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			logrus.Warn("Reset password failed: invalid or expired token (grpc)")
			return nil, status.Error(codes.InvalidArgument, "invalid or expired token")
		}
		logrus.WithError(err).Error("Reset password failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	logrus.Info("Password reset completed (grpc)")
	return okResponse(), nil
}

func okResponse() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"ok": structpb.NewBoolValue(true),
	}}
}

func clientInfo(ctx context.Context) service.ClientInfo {
	var info service.ClientInfo
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		info.IP = p.Addr.String()
		if host, _, err := net.SplitHostPort(info.IP); err == nil {
			info.IP = host
		}
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("user-agent"); len(values) > 0 {
			info.UserAgent = values[0]
		}
	}
	return info
}
