// Package grpc exposes the backend services over the Curator gRPC service.
package grpc

import (
	"context"
	"encoding/json"
	"net"

	"github.com/dmitrijs2005/mymind/internal/logging"
	"github.com/dmitrijs2005/mymind/internal/rpc"
	"github.com/dmitrijs2005/mymind/internal/server/models"
	"github.com/dmitrijs2005/mymind/internal/server/services"
	"google.golang.org/grpc"
)

type userService interface {
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, userName string) ([]byte, error)
	Login(ctx context.Context, userName string, verifierCandidate []byte) (*services.TokenPair, error)
}

type itemService interface {
	FetchAll(ctx context.Context, userID string) ([]models.Item, error)
	Insert(ctx context.Context, userID string, item models.Item) (string, error)
	Update(ctx context.Context, userID, id string, fields map[string]json.RawMessage) error
	Delete(ctx context.Context, userID, id string) error
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
}

type profileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, appLock, biometric *bool) (*models.Profile, error)
}

type GRPCServer struct {
	address      string
	users        userService
	items        itemService
	profiles     profileService
	logger       logging.Logger
	jwtSecret    []byte
	interceptors []grpc.UnaryServerInterceptor
}

// NewGRPCServer builds the server. extra interceptors run before the
// access token check, in the given order.
func NewGRPCServer(address string, l logging.Logger, us userService, is itemService, ps profileService,
	secretKey string, extra ...grpc.UnaryServerInterceptor) *GRPCServer {
	return &GRPCServer{
		address:      address,
		logger:       l.With("module", "grpc_server"),
		users:        us,
		items:        is,
		profiles:     ps,
		jwtSecret:    []byte(secretKey),
		interceptors: extra,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	chain := append([]grpc.UnaryServerInterceptor{}, s.interceptors...)
	chain = append(chain, s.accessTokenInterceptor)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	rpc.RegisterCuratorServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run over an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
