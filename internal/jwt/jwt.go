package jwt

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingHeader  = errors.New("authorization header missing")
	ErrInvalidHeader  = errors.New("invalid authorization header format")
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidSubject = errors.New("invalid subject in token")
)

// Claims are the claims carried by an access token. The subject holds the user id.
type Claims struct {
	UserID int64 `json:"-"`
	jwt.RegisteredClaims
}

// JWT provides methods to generate and validate JWT tokens.
// The secret is fixed at construction; a JWT is safe for concurrent use.
type JWT struct {
	secretKey []byte
	exp       time.Duration
	now       func() time.Time
}

// Opt configures a JWT.
type Opt func(*JWT)

// WithSecretKey sets the HMAC signing secret.
func WithSecretKey(secret string) Opt {
	return func(j *JWT) {
		j.secretKey = []byte(secret)
	}
}

// WithExpiration sets the default token lifetime.
func WithExpiration(exp time.Duration) Opt {
	return func(j *JWT) {
		j.exp = exp
	}
}

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Opt {
	return func(j *JWT) {
		j.now = now
	}
}

// New creates a new JWT instance. Tokens live 30 minutes unless WithExpiration is given.
func New(opts ...Opt) *JWT {
	j := &JWT{
		exp: 30 * time.Minute,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Generate creates a token for userID with the default lifetime.
func (j *JWT) Generate(ctx context.Context, userID int64) (string, error) {
	return j.GenerateWithTTL(ctx, userID, j.exp)
}

// GenerateWithTTL creates a token for userID that expires ttl from now.
// A ttl of zero or less yields a token that is already expired.
func (j *JWT) GenerateWithTTL(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	now := j.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// GetClaims parses and verifies tokenString and returns its claims.
// Signature, algorithm, expiry and subject are all checked.
func (j *JWT) GetClaims(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return j.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidSubject
	}
	claims.UserID = userID

	return claims, nil
}

// GetTokenFromRequest extracts the token string from the Authorization header
func (j *JWT) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingHeader
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", ErrInvalidHeader
	}

	return parts[1], nil
}
