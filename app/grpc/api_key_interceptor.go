package grpc

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// APIKeyUnaryInterceptor admits calls whose x-api-key metadata matches
// expectedKey. Keys are compared as digests so the check does not leak
// length or prefix timing.
func APIKeyUnaryInterceptor(expectedKey string) gogrpc.UnaryServerInterceptor {
	expected := sha256.Sum256([]byte(expectedKey))

	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		apiKey := incomingAPIKeyFromMetadata(ctx)
		if apiKey == "" {
			logrus.WithField("method", info.FullMethod).Debug("Missing x-api-key metadata")
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}

		got := sha256.Sum256([]byte(apiKey))
		if subtle.ConstantTimeCompare(got[:], expected[:]) != 1 {
			logrus.WithField("method", info.FullMethod).Debug("Invalid x-api-key metadata")
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		return handler(ctx, req)
	}
}

func incomingAPIKeyFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("x-api-key")
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
