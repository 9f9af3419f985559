// internal/services/auth_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/repuestos-py/marketplace/internal/config"
	"github.com/repuestos-py/marketplace/internal/models"
	"github.com/repuestos-py/marketplace/internal/store"
	"github.com/repuestos-py/marketplace/internal/utils"
)

// AuthService bridges the identity provider and the marketplace user
// records. Credentials never pass through here; callers arrive with a
// verified bearer token.
type AuthService struct {
	store *store.Store
	cfg   *config.Config
}

type SyncUserRequest struct {
	DisplayName string `json:"display_name" validate:"max=255"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // in seconds
}

func NewAuthService(st *store.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		store: st,
		cfg:   cfg,
	}
}

// SyncUser creates or refreshes the caller's user record. The stored role
// is never taken from the request.
func (s *AuthService) SyncUser(ctx context.Context, identity *utils.Identity, req *SyncUserRequest) (*models.User, error) {
	if identity == nil || identity.UID == "" {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	ctx, cancel := withTimeout(ctx, s.cfg.StoreTimeout())
	defer cancel()

	user := &models.User{
		ID:          identity.UID,
		Email:       identity.Email,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        models.RoleUser,
	}
	if err := s.store.Users.Upsert(ctx, user); err != nil {
		return nil, classify("sync user", err)
	}
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, uid string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.StoreTimeout())
	defer cancel()

	user, err := s.store.Users.Get(ctx, uid)
	if err != nil {
		return nil, classify("load user", err)
	}
	return user, nil
}

// IssueToken mints a token for a stored user, carrying its current role.
// Used by the token command for development and operations.
func (s *AuthService) IssueToken(ctx context.Context, uid string) (*TokenResponse, error) {
	user, err := s.GetUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateJWT(utils.Identity{
		UID:   user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	}, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int((time.Duration(s.cfg.JWT.AccessTokenTTL) * time.Hour).Seconds()),
	}, nil
}
