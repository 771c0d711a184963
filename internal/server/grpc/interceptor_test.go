package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/rpc"
	"github.com/dmitrijs2005/mymind/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))
}

func TestInterceptor_PublicMethodsSkipToken(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeItems{}, &fakeProfiles{})

	for method := range rpc.PublicMethods {
		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		}
		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: method}, h)
		require.NoError(t, err, method)
		assert.True(t, called, method)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeItems{}, &fakeProfiles{})
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodFetchAll)}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler must not run without a token")
		return nil, nil
	}
	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	requireCode(t, err, codes.Unauthenticated)
	assert.Equal(t, "missing token", status.Convert(err).Message())
}

func TestInterceptor_ExpiredToken(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeItems{}, &fakeProfiles{})
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodFetchAll)}

	token, err := auth.GenerateToken("u1", []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	_, err = s.accessTokenInterceptor(withToken(token), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, nil
	})
	requireCode(t, err, codes.Unauthenticated)
	assert.Equal(t, common.ErrTokenExpired.Error(), status.Convert(err).Message())
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeItems{}, &fakeProfiles{})
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodFetchAll)}

	token, err := auth.GenerateToken("u1", []byte("other-secret"), time.Minute)
	require.NoError(t, err)

	_, err = s.accessTokenInterceptor(withToken(token), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, nil
	})
	requireCode(t, err, codes.Unauthenticated)
	assert.Equal(t, common.ErrInvalidToken.Error(), status.Convert(err).Message())
}

func TestInterceptor_ValidTokenSetsUser(t *testing.T) {
	s := newTestServer(&fakeUsers{}, &fakeItems{}, &fakeProfiles{})
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodFetchAll)}

	token, err := auth.GenerateToken("u1", []byte(testSecret), time.Minute)
	require.NoError(t, err)

	var got string
	_, err = s.accessTokenInterceptor(withToken(token), nil, info, func(ctx context.Context, req any) (any, error) {
		got, _ = ctx.Value(UserIDKey).(string)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", got)
}
