package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"indumart/internal/caching"
	"indumart/internal/models"
)

// AuthService issues and verifies admin session tokens. Access tokens are
// HS256 JWTs; refresh tokens are opaque, stored hashed in redis and rotated
// on every refresh.
type AuthService interface {
	GenerateTokens(ctx context.Context, adminID uuid.UUID) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

type authService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

// TokenClaims represents JWT claims for an admin session
type TokenClaims struct {
	AdminID string `json:"admin_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService creates a new authentication service
func NewAuthService(cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func (s *authService) GenerateTokens(ctx context.Context, adminID uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()
	claims := TokenClaims{
		AdminID: adminID.String(),
		Role:    "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "indumart-auth",
			Subject:   adminID.String(),
			Audience:  jwt.ClaimStrings{"indumart-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.issueRefreshToken(ctx, adminID)
	if err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
	}, nil
}

func (s *authService) issueRefreshToken(ctx context.Context, adminID uuid.UUID) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	key := refreshTokenKey(token)
	ttl := time.Duration(s.refreshTTL) * time.Second
	if err := s.cacheSvc.SetString(ctx, key, adminID.String(), ttl); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return token, nil
}

func (s *authService) ValidateToken(_ context.Context, tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair. The
// presented token is revoked first so each refresh token works exactly once.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	key := refreshTokenKey(refreshToken)
	adminIDStr, err := s.cacheSvc.GetString(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	if adminIDStr == "" {
		return nil, fmt.Errorf("refresh token is invalid or expired")
	}
	adminID, err := uuid.Parse(adminIDStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token record")
	}

	if err := s.cacheSvc.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	return s.GenerateTokens(ctx, adminID)
}

func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return s.cacheSvc.Delete(ctx, refreshTokenKey(refreshToken))
}

func refreshTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "indumart:refresh:" + hex.EncodeToString(sum[:])
}
