package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/platform/ctxutil"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

// AuthService verifies bearer tokens issued by the identity provider (or by
// MintToken for operators and tests) and attaches the caller to the context.
type AuthService interface {
	MintToken(userID uuid.UUID) (string, error)
	ParseToken(tokenString string) (uuid.UUID, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	issuer       string
	accessTTL    time.Duration
}

func NewAuthService(baseLog *logger.Logger, jwtSecretKey, issuer string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		log:          baseLog.With("service", "AuthService"),
		jwtSecretKey: jwtSecretKey,
		issuer:       strings.TrimSpace(issuer),
		accessTTL:    accessTTL,
	}
}

func (as *authService) MintToken(userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("missing user id")
	}
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    as.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) ParseToken(tokenString string) (uuid.UUID, error) {
	if strings.TrimSpace(tokenString) == "" {
		return uuid.Nil, fmt.Errorf("missing token")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if as.issuer != "" {
		opts = append(opts, jwt.WithIssuer(as.issuer))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, opts...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return uuid.Nil, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	userID, err := as.ParseToken(tokenString)
	if err != nil {
		return ctx, err
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
