package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"medica-server/internal/config"
	"medica-server/internal/models"
	"medica-server/internal/service"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not authenticated", service.ErrNotAuthenticated, http.StatusUnauthorized},
		{"permission denied", service.ErrPermissionDenied, http.StatusForbidden},
		{"not found", fmt.Errorf("loading: %w", service.ErrNotFound), http.StatusNotFound},
		{"slot taken", service.ErrSlotTaken, http.StatusConflict},
		{"validation", &service.ValidationError{Fields: []string{"rating: out of range"}}, http.StatusBadRequest},
		{"invalid transition", service.ErrInvalidTransition, http.StatusBadRequest},
		{"unexpected", errors.New("db exploded"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			RespondError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body ResponseData
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.NotContains(t, body.Error, "db exploded")
		})
	}
}

func TestRespondErrorLogsUnexpected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)
	RespondError(c, zap.New(core), errors.New("disk full"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "request failed", logs.All()[0].Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)
	RespondError(c, zap.New(core), service.ErrSlotTaken)
	assert.Equal(t, 1, logs.Len())
}

func TestTokens(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:                 "a",
		JWTRefreshSecret:          "r",
		JWTExpirationMinutes:      5,
		JWTRefreshExpirationHours: 2,
	}
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, Role: models.RoleDoctor, IsSuperuser: true}

	first, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	second, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	claims, err := ValidateToken(first.AccessToken, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleDoctor, claims.Role)
	assert.True(t, claims.Superuser)

	_, err = ValidateToken(first.AccessToken, cfg.JWTRefreshSecret)
	assert.Error(t, err)
	_, err = ValidateToken(first.RefreshToken, cfg.JWTRefreshSecret)
	assert.NoError(t, err)
}

func signAssertion(t *testing.T, method jwt.SigningMethod, key any, claims SocialClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestValidateSocialAssertion(t *testing.T) {
	const secret = "bridge-secret"
	valid := func() SocialClaims {
		return SocialClaims{
			Email:     "ana@example.com",
			GivenName: "Ana",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "google|123",
				Audience:  jwt.ClaimStrings{SocialAssertionAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Minute)),
			},
		}
	}

	claims, err := ValidateSocialAssertion(signAssertion(t, jwt.SigningMethodHS256, []byte(secret), valid()), secret)
	require.NoError(t, err)
	assert.Equal(t, "google|123", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)

	_, err = ValidateSocialAssertion(signAssertion(t, jwt.SigningMethodHS256, []byte(secret), valid()), "")
	assert.ErrorIs(t, err, ErrSocialLoginDisabled)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"wrong secret", signAssertion(t, jwt.SigningMethodHS256, []byte("guess"), valid())},
		{"unsigned", signAssertion(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid())},
		{"other audience", func() string {
			c := valid()
			c.Audience = jwt.ClaimStrings{"someone-else"}
			return signAssertion(t, jwt.SigningMethodHS256, []byte(secret), c)
		}()},
		{"no expiry", func() string {
			c := valid()
			c.ExpiresAt = nil
			return signAssertion(t, jwt.SigningMethodHS256, []byte(secret), c)
		}()},
		{"expired", func() string {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return signAssertion(t, jwt.SigningMethodHS256, []byte(secret), c)
		}()},
		{"long lived", func() string {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(24 * time.Hour))
			return signAssertion(t, jwt.SigningMethodHS256, []byte(secret), c)
		}()},
		{"no email", func() string {
			c := valid()
			c.Email = ""
			return signAssertion(t, jwt.SigningMethodHS256, []byte(secret), c)
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSocialAssertion(tt.token, secret)
			assert.Error(t, err)
		})
	}
}

type bookingBody struct {
	Date string `json:"appointmentDate" binding:"required"`
	Time string `json:"appointmentTime" validate:"required,len=5"`
}

func TestBindAndValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(body string) (*httptest.ResponseRecorder, bool) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var b bookingBody
		return w, BindAndValidate(c, &b)
	}

	_, ok := run(`{"appointmentDate":"2024-01-10","appointmentTime":"14:00"}`)
	assert.True(t, ok)

	w, ok := run(`{"appointmentTime":"14:00"}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "date: required")

	w, ok = run(`{"appointmentDate":"2024-01-10","appointmentTime":"2pm"}`)
	assert.False(t, ok)
	assert.Contains(t, w.Body.String(), "appointmentTime: len=5")

	w, ok = run(`{not json`)
	assert.False(t, ok)
	assert.Contains(t, w.Body.String(), "Invalid request payload")
}
