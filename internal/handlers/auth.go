package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medica-server/internal/config"
	"medica-server/internal/middleware"
	"medica-server/internal/models"
	"medica-server/internal/service"
	"medica-server/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Accounts *service.AccountService
	Cfg      *config.Config
	Log      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *service.AccountService, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Cfg: cfg, Log: log}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone" binding:"max=20"`
	Role      string `json:"role" binding:"required,oneof=client doctor"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      models.Role(req.Role),
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Created(c, "User registered successfully", user.Sanitize())
}

// LoginRequest accepts a username or an email address in Login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	Dashboard    string               `json:"dashboard"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Accounts.Authenticate(c.Request.Context(), req.Login, req.Password)
	if errors.Is(err, service.ErrNotAuthenticated) {
		utils.Unauthorized(c, "Invalid username, email or password")
		return
	}
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	h.issueSession(c, user, "Login successful")
}

// issueSession signs a token pair, stores the refresh token and answers with both.
func (h *AuthHandler) issueSession(c *gin.Context, user *models.User, message string) {
	tokens, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	if err := h.Accounts.StoreRefreshToken(c.Request.Context(), user.ID, tokens.RefreshToken, tokens.RefreshExpiresAt); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	h.setRefreshCookie(c, tokens.RefreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)

	dashboard, _ := dashboardFor(user.Role)
	utils.Success(c, message, LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Dashboard:    dashboard,
		User:         user.Sanitize(),
	})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, value, maxAge, "/", "", h.Cfg.Environment != "development", true)
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken rotates a refresh token: the presented one is revoked and a new pair is issued.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		token = req.RefreshToken
	}

	claims, err := utils.ValidateToken(token, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}
	user, err := h.Accounts.ConsumeRefreshToken(c.Request.Context(), claims.UserID, token)
	if errors.Is(err, service.ErrNotAuthenticated) {
		utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		return
	}
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	h.issueSession(c, user, "Access token refreshed successfully")
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the refresh token and clears its cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(refreshCookie)
	}
	if req.RefreshToken == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	if err := h.Accounts.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	h.setRefreshCookie(c, "", -1)
	utils.Success(c, "Logout successful. Refresh token has been invalidated.", nil)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.Accounts.GetUser(c.Request.Context(), middleware.Principal(c).UserID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest carries the editable profile fields. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	FirstName      *string `json:"firstName" binding:"omitempty,max=100"`
	LastName       *string `json:"lastName" binding:"omitempty,max=100"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=20"`
	Address        *string `json:"address"`
	City           *string `json:"city" binding:"omitempty,max=100"`
	ProfilePicture *string `json:"profilePicture" binding:"omitempty,url"`
	DateOfBirth    *string `json:"dateOfBirth"`
}

// UpdateProfile handles updating the currently authenticated user's profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.Principal(c).UserID, service.ProfileInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		ProfilePicture: req.ProfilePicture,
		DateOfBirth:    req.DateOfBirth,
	})
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Success(c, "Profile updated successfully", user.Sanitize())
}

// SocialLoginRequest carries the identity bridge's signed assertion together
// with the role the user picked before leaving for the provider.
type SocialLoginRequest struct {
	Assertion string `json:"assertion"`
	Role      string `json:"role" binding:"omitempty,oneof=client doctor"`
}

// SocialLogin links or creates the account behind an external identity and opens a session.
// The identity is only trusted when the assertion verifies against SOCIAL_LINK_SECRET.
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req SocialLoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	claims, err := utils.ValidateSocialAssertion(req.Assertion, h.Cfg.SocialLinkSecret)
	if err != nil {
		h.Log.Warn("social assertion rejected", zap.String("client_ip", c.ClientIP()), zap.Error(err))
		utils.Unauthorized(c, "Invalid social login assertion")
		return
	}

	user, err := h.Accounts.LinkSocialAccount(c.Request.Context(), service.SocialIdentity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
	}, models.Role(req.Role))
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	h.issueSession(c, user, "Login successful")
}

// UpgradeToDoctor turns the calling client into a doctor with a placeholder profile.
// The caller's access token still carries the old role until it is refreshed.
func (h *AuthHandler) UpgradeToDoctor(c *gin.Context) {
	doctor, created, err := h.Accounts.UpgradeToDoctor(c.Request.Context(), middleware.Principal(c).UserID)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	if created {
		utils.Created(c, "Doctor profile created. Complete it with your license number.", newDoctorView(doctor))
		return
	}
	utils.Success(c, "Doctor profile already exists", newDoctorView(doctor))
}
