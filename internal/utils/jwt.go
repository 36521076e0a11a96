package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"medica-server/internal/config"
	"medica-server/internal/models"
)

// Claims represents the JWT claims.
type Claims struct {
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role"`
	Superuser bool        `json:"superuser,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is an access token and the refresh token that can renew it.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// GenerateTokens signs both access and refresh tokens for a user.
func GenerateTokens(user *models.User, cfg *config.Config) (TokenPair, error) {
	now := time.Now()
	access, err := sign(user, now.Add(time.Duration(cfg.JWTExpirationMinutes)*time.Minute), cfg.JWTSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshExp := now.Add(time.Duration(cfg.JWTRefreshExpirationHours) * time.Hour)
	refresh, err := sign(user, refreshExp, cfg.JWTRefreshSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: refreshExp}, nil
}

func sign(user *models.User, expiresAt time.Time, secret string) (string, error) {
	claims := &Claims{
		UserID:    user.ID,
		Role:      user.Role,
		Superuser: user.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique ID keeps two tokens issued in the same second distinct.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateToken validates a JWT token.
func ValidateToken(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user")
	}
	return claims, nil
}

// SocialAssertionAudience is the audience the identity bridge must put in
// every assertion it signs for this server.
const SocialAssertionAudience = "medica-social-link"

// maxAssertionLifetime bounds how far in the future an assertion may expire,
// which keeps a leaked assertion from being replayed for long.
const maxAssertionLifetime = 10 * time.Minute

// ErrSocialLoginDisabled is returned when no shared secret is configured.
var ErrSocialLoginDisabled = errors.New("social login is not configured")

// SocialClaims is the identity an external provider vouched for, as relayed
// by the identity bridge after it finished the provider's login flow.
type SocialClaims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	jwt.RegisteredClaims
}

// ValidateSocialAssertion checks an HS256 assertion signed with secret and
// returns the identity it carries. The subject and email are mandatory and the
// assertion must be short-lived.
func ValidateSocialAssertion(assertion, secret string) (*SocialClaims, error) {
	if secret == "" {
		return nil, ErrSocialLoginDisabled
	}
	claims := &SocialClaims{}
	_, err := jwt.ParseWithClaims(assertion, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(SocialAssertionAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse social assertion: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("social assertion has no subject or email")
	}
	if time.Until(claims.ExpiresAt.Time) > maxAssertionLifetime {
		return nil, errors.New("social assertion lives too long")
	}
	return claims, nil
}
