package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/rpc"
	"github.com/dmitrijs2005/mymind/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request", "username", req.Username)

	user, err := s.users.Register(ctx, req.Username, req.Salt, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username, "user_id", user.ID)
	return &rpc.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *rpc.GetSaltRequest) (*rpc.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	tokens, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.LoginResponse{
		UserID:       tokens.UserID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) FetchAll(ctx context.Context, req *rpc.FetchAllRequest) (*rpc.FetchAllResponse, error) {
	userID, err := callerID(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	items, err := s.items.FetchAll(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := make([]rpc.Item, 0, len(items))
	for _, it := range items {
		out = append(out, toWire(it))
	}
	return &rpc.FetchAllResponse{Items: out}, nil
}

func (s *GRPCServer) Insert(ctx context.Context, req *rpc.InsertRequest) (*rpc.InsertResponse, error) {
	userID, err := callerID(ctx, req.Item.Owner)
	if err != nil {
		return nil, err
	}
	id, err := s.items.Insert(ctx, userID, fromWire(req.Item))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.InsertResponse{ID: id}, nil
}

func (s *GRPCServer) Update(ctx context.Context, req *rpc.UpdateRequest) (*rpc.Empty, error) {
	userID, err := callerID(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, userID, req.ID, req.Fields); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *rpc.DeleteRequest) (*rpc.Empty, error) {
	userID, err := callerID(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	if err := s.items.Delete(ctx, userID, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) DeleteMany(ctx context.Context, req *rpc.DeleteManyRequest) (*rpc.DeleteManyResponse, error) {
	userID, err := callerID(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	n, err := s.items.DeleteMany(ctx, userID, req.IDs)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.DeleteManyResponse{Deleted: n}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *rpc.GetProfileRequest) (*rpc.ProfileResponse, error) {
	userID, err := callerID(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return profileResponse(p), nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *rpc.UpdateProfileRequest) (*rpc.ProfileResponse, error) {
	userID, err := callerID(ctx, req.Owner)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.Update(ctx, userID, req.AppLockEnabled, req.BiometricRegistered)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return profileResponse(p), nil
}

// toStatus maps service errors to gRPC codes. Anything unexpected is
// logged and reported as Internal without details.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, common.ErrorAlreadyExists.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, common.ErrorForbidden.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

func toWire(i models.Item) rpc.Item {
	return rpc.Item{
		ID:         i.ID,
		Owner:      i.UserID,
		URL:        i.URL,
		Title:      i.Title,
		Thumbnail:  i.Thumbnail,
		Platform:   i.Platform,
		Category:   i.Category,
		Tags:       i.Tags,
		CreatedAt:  i.CreatedAt,
		DeletedAt:  i.DeletedAt,
		ReviewedAt: i.ReviewedAt,
	}
}

func fromWire(i rpc.Item) models.Item {
	return models.Item{
		ID:         i.ID,
		UserID:     i.Owner,
		URL:        i.URL,
		Title:      i.Title,
		Thumbnail:  i.Thumbnail,
		Platform:   i.Platform,
		Category:   i.Category,
		Tags:       i.Tags,
		CreatedAt:  i.CreatedAt,
		DeletedAt:  i.DeletedAt,
		ReviewedAt: i.ReviewedAt,
	}
}

func profileResponse(p *models.Profile) *rpc.ProfileResponse {
	return &rpc.ProfileResponse{Settings: rpc.Settings{
		AppLockEnabled:      p.AppLockEnabled,
		BiometricRegistered: p.BiometricRegistered,
	}}
}
