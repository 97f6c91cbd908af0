package reservations_service_api

import (
	"context"
	"strconv"
	"strings"

	"github.com/Domenick1991/railbooking/internal/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	AuthorizationKey = "authorization"
	CustomerIDKey    = "x-customer-id"
)

// TokenParser is satisfied by *auth.Manager.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

type customerCtxKey struct{}

var publicMethods = map[string]bool{
	"/" + ServiceName + "/Authenticate": true,
	"/" + ServiceName + "/FindTrains":   true,
}

// AuthInterceptor resolves the calling customer from the "authorization"
// metadata. With requireToken unset an "x-customer-id" entry is accepted as well.
func AuthInterceptor(tokens TokenParser, requireToken bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		id, err := callerID(ctx, tokens, requireToken)
		if err != nil {
			return nil, err
		}
		return handler(context.WithValue(ctx, customerCtxKey{}, id), req)
	}
}

func callerID(ctx context.Context, tokens TokenParser, requireToken bool) (int64, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if vals := md.Get(AuthorizationKey); len(vals) > 0 && strings.HasPrefix(vals[0], "Bearer ") {
		claims, err := tokens.Parse(strings.TrimPrefix(vals[0], "Bearer "))
		if err != nil {
			return 0, status.Error(codes.Unauthenticated, "invalid token")
		}
		id, err := claims.CustomerID()
		if err != nil {
			return 0, status.Error(codes.Unauthenticated, "invalid token")
		}
		return id, nil
	}
	if !requireToken {
		if vals := md.Get(CustomerIDKey); len(vals) > 0 {
			if id, err := strconv.ParseInt(vals[0], 10, 64); err == nil && id > 0 {
				return id, nil
			}
		}
	}
	return 0, status.Error(codes.Unauthenticated, "missing bearer token")
}

// customerFrom reports the customer placed on ctx by AuthInterceptor.
func customerFrom(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(customerCtxKey{}).(int64)
	if !ok || id <= 0 {
		return 0, status.Error(codes.Unauthenticated, "no caller identity")
	}
	return id, nil
}
