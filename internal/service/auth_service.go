package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rahmadjon0038/avto-test-backend/internal/config"
	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("token is invalid or expired")
)

// Claims is the JWT payload for both access and refresh tokens.
type Claims struct {
	UserID int        `json:"uid"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserStore is the user persistence surface the auth flows need.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// AuthService handles registration, login and the refresh token rotation.
//
// Refresh tokens are single-use: the active token's jti is pinned in Redis
// under the user's key, so issuing a new pair invalidates every previously
// issued refresh token.
type AuthService struct {
	users UserStore
	redis *redis.Client
	cfg   *config.Config
	log   zerolog.Logger
	now   func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		redis: rdb,
		cfg:   cfg,
		log:   log.With().Str("component", "auth_service").Logger(),
		now:   time.Now,
	}
}

// AuthResult bundles the authenticated user with a fresh token pair.
type AuthResult struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// Register creates a new user account and signs them in.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int("user_id", user.ID).Msg("user registered")

	return s.issueTokens(ctx, user)
}

// Login authenticates by phone and password.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	s.log.Info().Int("user_id", user.ID).Msg("user logged in")

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a new pair, rotating the
// pinned jti so the old token cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	stored, err := s.redis.Get(ctx, config.CacheKey.RefreshTokenKey(claims.UserID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load refresh state: %w", err)
	}
	if stored != claims.ID {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout drops the pinned refresh jti, invalidating the outstanding
// refresh token.
func (s *AuthService) Logout(ctx context.Context, userID int) error {
	if err := s.redis.Del(ctx, config.CacheKey.RefreshTokenKey(userID)).Err(); err != nil {
		return fmt.Errorf("drop refresh state: %w", err)
	}
	return nil
}

// Me loads the current user's profile.
func (s *AuthService) Me(ctx context.Context, userID int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (s *AuthService) ParseAccessToken(token string) (*Claims, error) {
	claims, err := s.parseToken(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*AuthResult, error) {
	now := s.now()

	access, err := s.signToken(user, now, s.cfg.AccessTokenExpiry, s.cfg.JWTSecret, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	jti := uuid.NewString()
	refresh, err := s.signToken(user, now, s.cfg.RefreshExpiry, s.cfg.JWTRefreshSecret, jti)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	err = s.redis.Set(ctx, config.CacheKey.RefreshTokenKey(user.ID), jti, s.cfg.RefreshExpiry).Err()
	if err != nil {
		return nil, fmt.Errorf("pin refresh state: %w", err)
	}

	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) signToken(user *model.User, now time.Time, ttl time.Duration, secret, jti string) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *AuthService) parseToken(token, secret string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
