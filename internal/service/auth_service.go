package service

import (
	"context"
	"fmt"
	"time"

	"github.com/taxbot-india/engine-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

// AuthService exchanges the pre-shared API key for short-lived HS256 bearer
// tokens. When no API key hash is configured the API runs open and this
// service is never wired into the router.
type AuthService struct {
	apiKeyHash []byte
	jwtSecret  []byte
	accessTTL  time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(apiKeyHash, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		apiKeyHash: []byte(apiKeyHash),
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		logger:     logger,
	}
}

// JWTClaims represents the claims carried in access tokens.
type JWTClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// IssueToken verifies the API key against the configured bcrypt hash and
// signs an access token.
func (s *AuthService) IssueToken(ctx context.Context, req *domain.TokenRequest) (*domain.TokenResponse, error) {
	_, span := authTracer.Start(ctx, "AuthService.IssueToken")
	defer span.End()

	if err := bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(req.APIKey)); err != nil {
		s.logger.Warn("token request with invalid API key")
		return nil, &domain.ErrUnauthorized{Message: "invalid API key"}
	}

	now := time.Now()
	claims := JWTClaims{
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "engine-client",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "taxbot-engine",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}

// ValidateAccessToken parses and verifies a bearer token. Used by middleware.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}
	return claims, nil
}
