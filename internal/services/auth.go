package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/apierr"
	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/repos"
	"github.com/inocenciorjr/medbrave-backend/internal/requestdata"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

// TokenPair is what login/refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*types.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db              *gorm.DB
	log             *logger.Logger
	userRepo        repos.UserRepo
	tokenRepo       repos.UserTokenRepo
	jwtSecretKey    string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, tokenRepo repos.UserTokenRepo, jwtSecretKey string, accessTokenTTL, refreshTokenTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:              db,
		log:             serviceLog,
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		jwtSecretKey:    jwtSecretKey,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (as *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, apierr.Validation("email and password are required")
	}

	existing, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, nil, apierr.Store("failed to look up user", err)
	}
	if existing != nil {
		return nil, nil, apierr.Validation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apierr.Store("failed to hash password", err)
	}

	user, err := as.userRepo.Create(ctx, nil, &types.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	})
	if err != nil {
		return nil, nil, apierr.Store("failed to create user", err)
	}

	tokens, err := as.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, nil, apierr.Store("failed to look up user", err)
	}
	if user == nil {
		return nil, nil, apierr.Authentication("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apierr.Authentication("invalid credentials")
	}

	tokens, err := as.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	row, err := as.tokenRepo.GetByToken(ctx, nil, refreshToken)
	if err != nil {
		return nil, apierr.Store("failed to look up refresh token", err)
	}
	if row == nil || row.Revoked || time.Now().After(row.ExpiresAt) {
		return nil, apierr.Authentication("invalid or expired refresh token")
	}

	user, err := as.userRepo.GetByID(ctx, nil, row.UserID)
	if err != nil {
		return nil, apierr.Store("failed to look up user", err)
	}
	if user == nil {
		return nil, apierr.Authentication("user no longer exists")
	}

	// Rotate: the presented token is spent either way.
	if err := as.tokenRepo.Revoke(ctx, nil, refreshToken); err != nil {
		return nil, apierr.Store("failed to revoke refresh token", err)
	}
	return as.issueTokens(ctx, user)
}

func (as *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := as.tokenRepo.Revoke(ctx, nil, refreshToken); err != nil {
		return apierr.Store("failed to revoke refresh token", err)
	}
	return nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierr.Authentication("unexpected signing method")
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.Authentication("invalid token")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, apierr.Authentication("invalid token subject")
	}
	email, _ := claims["email"].(string)

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		UserID: userID,
		Email:  email,
	}), nil
}

func (as *authService) issueTokens(ctx context.Context, user *types.User) (*TokenPair, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(as.accessTokenTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return nil, apierr.Store("failed to sign access token", err)
	}

	refresh := uuid.NewString()
	if _, err := as.tokenRepo.Create(ctx, nil, &types.UserToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(as.refreshTokenTTL),
	}); err != nil {
		return nil, apierr.Store("failed to persist refresh token", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
