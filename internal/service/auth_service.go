package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gotsutoki/car-management-website/internal/config"
	"github.com/Gotsutoki/car-management-website/internal/dto"
	"github.com/Gotsutoki/car-management-website/internal/model"
	"github.com/Gotsutoki/car-management-website/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const bcryptCost = 12

// denylistPrefix namespaces revoked token ids in redis. Entries expire with
// the token itself, so the set never needs manual cleanup.
const denylistPrefix = "auth:denylist:"

// DenylistKey is the redis key holding the revocation marker for a token id.
// The auth middleware checks it on every request.
func DenylistKey(jti string) string { return denylistPrefix + jti }

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest, grantedBy string) (*dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

type authService struct {
	repo repository.UserRepository
	rdb  *redis.Client
	cfg  *config.Config
}

func NewAuthService(repo repository.UserRepository, rdb *redis.Client, cfg *config.Config) AuthService {
	return &authService{repo: repo, rdb: rdb, cfg: cfg}
}

// Claims carried in both access and refresh tokens. Type distinguishes them
// so a refresh token can never be used to authorize a request.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"type"` // "access" | "refresh"
	jwt.RegisteredClaims
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, grantedBy string) (*dto.UserResponse, error) {
	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	role := req.Role
	if role == "" {
		role = "customer"
	}
	// Only an admin can mint privileged accounts. Self-registration always
	// lands on customer.
	if role != "customer" && grantedBy != "admin" {
		role = "customer"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return userToResponse(u), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(u)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != "refresh" {
		return nil, ErrInvalidToken
	}
	if revoked, err := s.isRevoked(ctx, claims.ID); err != nil {
		return nil, err
	} else if revoked {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil || !u.Active {
		return nil, ErrInvalidToken
	}

	// Rotate: the presented refresh token is revoked once consumed.
	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.issueTokens(u)
}

// Logout revokes the presented access token for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.parseToken(accessToken)
	if err != nil {
		return ErrInvalidToken
	}
	return s.revoke(ctx, claims)
}

func (s *authService) issueTokens(u *model.User) (*dto.LoginResponse, error) {
	accessTTL := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	refreshTTL := time.Duration(s.cfg.JWTRefreshHours) * time.Hour

	access, err := s.signToken(u, "access", accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(u, "refresh", refreshTTL)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(accessTTL.Seconds()),
		User:         *userToResponse(u),
	}, nil
}

func (s *authService) signToken(u *model.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   u.ID.String(),
		Username: u.Username,
		Role:     u.Role,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) parseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// revoke denylists the token id until its natural expiry.
func (s *authService) revoke(ctx context.Context, claims *Claims) error {
	if s.rdb == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, denylistPrefix+claims.ID, "1", ttl).Err()
}

func (s *authService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, denylistPrefix+jti).Result()
	return n > 0, err
}

func userToResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Role:     u.Role,
		Active:   u.Active,
	}
}
