package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/medsupply-backend/internal/platform/ctxutil"
	"github.com/yungbote/medsupply-backend/internal/platform/errs"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"

	DefaultAccessTTL = 12 * time.Hour
)

type JWTClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthService verifies bearer tokens minted by the identity provider that
// fronts the hospital network. Tokens are HS256 with the user id as subject.
type AuthService interface {
	IssueToken(userID uuid.UUID, role string, ttl time.Duration) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	now          func() time.Time
}

func NewAuthService(baseLog *logger.Logger, jwtSecretKey string) AuthService {
	return &authService{
		log:          baseLog.With("service", "AuthService"),
		jwtSecretKey: jwtSecretKey,
		now:          time.Now,
	}
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleStaff
	}
}

func (as *authService) IssueToken(userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("missing user id: %w", errs.ErrInvalidArgument)
	}
	if as.jwtSecretKey == "" {
		return "", fmt.Errorf("jwt secret not configured: %w", errs.ErrInvalidArgument)
	}
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	now := as.now()
	claims := JWTClaims{
		Role: normalizeRole(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token: %w", errs.ErrUnauthorized)
	}
	if as.jwtSecretKey == "" {
		return ctx, fmt.Errorf("token verification not configured: %w", errs.ErrUnauthorized)
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w: %w", errs.ErrUnauthorized, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", errs.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", errs.ErrUnauthorized)
	}
	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID: userID,
		Role:   normalizeRole(claims.Role),
	})
	return ctx, nil
}
