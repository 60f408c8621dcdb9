package grpc

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/server/auth"
	"github.com/dmitrijs2005/courseimage/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// accessTokenInterceptor authenticates every method whose registry entry
// requires login. Methods missing from the registry require it too.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if fn, ok := s.registry.ByMethod(info.FullMethod); ok && !fn.LoginRequired {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	ctx = context.WithValue(ctx, userIDKey, userID)

	return handler(ctx, req)
}

func callerFromContext(ctx context.Context) (services.Caller, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	if !ok || id <= 0 {
		return services.Caller{}, false
	}
	return services.Caller{UserID: id}, true
}
