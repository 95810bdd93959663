package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/jwt"
	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// TokenManager issues and parses access tokens.
type TokenManager interface {
	Generate(ctx context.Context, userID int64) (string, error)
	GetClaims(ctx context.Context, token string) (*jwt.Claims, error)
}

// AuthService handles login and resolves bearer tokens to users.
type AuthService struct {
	reader UserReader
	hasher PasswordHasher
	tokens TokenManager
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, hasher PasswordHasher, tokens TokenManager) *AuthService {
	return &AuthService{
		reader: reader,
		hasher: hasher,
		tokens: tokens,
	}
}

// Authenticate returns the user whose email matches case-insensitively and whose
// password verifies. Both failures yield the same errs.ErrInvalidCredentials.
func (svc *AuthService) Authenticate(ctx context.Context, email, plain string) (*models.User, error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			logger.Log.Warnw("login for unknown email", "email", email)
			return nil, errs.ErrInvalidCredentials
		}
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}

	if !svc.hasher.Verify(plain, user.PasswordHash) {
		logger.Log.Warnw("invalid credentials", "user_id", user.ID)
		return nil, errs.ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates a user and returns a signed access token.
func (svc *AuthService) Login(ctx context.Context, email, plain string) (string, error) {
	user, err := svc.Authenticate(ctx, email, plain)
	if err != nil {
		return "", err
	}

	token, err := svc.tokens.Generate(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}

// CurrentUser resolves token to its user. An invalid, expired or foreign token
// and a token for a user that no longer exists all yield errs.ErrInvalidToken.
func (svc *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	claims, err := svc.tokens.GetClaims(ctx, token)
	if err != nil {
		logger.Log.Warnw("invalid token", "err", err)
		return nil, errs.ErrInvalidToken
	}

	user, err := svc.reader.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			logger.Log.Warnw("token for unknown user", "user_id", claims.UserID)
			return nil, errs.ErrInvalidToken
		}
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}

	return user, nil
}
