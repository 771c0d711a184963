package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const saltTimeout = 12 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.CuratorClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string

	// serializes refreshes so concurrent expiries rotate the token once
	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// refresh rotates the token pair unless another call already did it since
// stale was sent. It returns the access token to retry with.
func (s *GRPCClient) refresh(ctx context.Context, stale string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens()
	if access != stale {
		return access, nil
	}
	if refresh == "" {
		return "", status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}

	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return "", err
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.AccessToken, nil
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if rpc.PublicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	access, rerr := s.refresh(ctx, access)
	if rerr != nil {
		return rerr
	}
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func NewCuratorClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(rpc.CallOption()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewCuratorClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) error {
	_, err := s.client.Register(ctx, &rpc.RegisterRequest{Username: username, Salt: salt, Verifier: verifier})
	return s.mapError(err)
}

func (s *GRPCClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, saltTimeout)
	defer cancel()

	resp, err := s.client.GetSalt(ctx, &rpc.GetSaltRequest{Username: username})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, username string, verifier []byte) (string, error) {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: username, VerifierCandidate: verifier})
	if err != nil {
		return "", s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.UserID, nil
}

// Logout forgets the session tokens.
func (s *GRPCClient) Logout() {
	s.setTokens("", "")
}

func (s *GRPCClient) FetchAll(ctx context.Context, owner string) ([]models.Item, error) {
	resp, err := s.client.FetchAll(ctx, &rpc.FetchAllRequest{Owner: owner})
	if err != nil {
		return nil, s.mapError(err)
	}
	items := make([]models.Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, fromWire(it))
	}
	return items, nil
}

func (s *GRPCClient) Insert(ctx context.Context, item models.Item) (string, error) {
	resp, err := s.client.Insert(ctx, &rpc.InsertRequest{Item: toWire(item)})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.ID, nil
}

func (s *GRPCClient) Update(ctx context.Context, owner, id string, patch models.Patch) error {
	fields, err := patch.Fields()
	if err != nil {
		return err
	}
	_, err = s.client.Update(ctx, &rpc.UpdateRequest{Owner: owner, ID: id, Fields: fields})
	return s.mapError(err)
}

func (s *GRPCClient) Delete(ctx context.Context, owner, id string) error {
	_, err := s.client.Delete(ctx, &rpc.DeleteRequest{Owner: owner, ID: id})
	return s.mapError(err)
}

func (s *GRPCClient) DeleteMany(ctx context.Context, owner string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.client.DeleteMany(ctx, &rpc.DeleteManyRequest{Owner: owner, IDs: ids})
	return s.mapError(err)
}

func (s *GRPCClient) GetProfile(ctx context.Context, owner string) (models.Settings, error) {
	resp, err := s.client.GetProfile(ctx, &rpc.GetProfileRequest{Owner: owner})
	if err != nil {
		return models.Settings{}, s.mapError(err)
	}
	return settingsFromWire(resp.Settings), nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, owner string, patch models.SettingsPatch) (models.Settings, error) {
	resp, err := s.client.UpdateProfile(ctx, &rpc.UpdateProfileRequest{
		Owner:               owner,
		AppLockEnabled:      patch.AppLockEnabled,
		BiometricRegistered: patch.BiometricRegistered,
	})
	if err != nil {
		return models.Settings{}, s.mapError(err)
	}
	return settingsFromWire(resp.Settings), nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrUnavailable
		}
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return common.ErrorForbidden
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
