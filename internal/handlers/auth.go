package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/samia-tarot/panel/internal/auth"
	"github.com/samia-tarot/panel/internal/middleware"
	"github.com/samia-tarot/panel/internal/models"
	"github.com/samia-tarot/panel/internal/permissions"
	"github.com/samia-tarot/panel/internal/services"
	apperrors "github.com/samia-tarot/panel/pkg/errors"
	"github.com/samia-tarot/panel/pkg/response"
)

// AuthHandler serves local credential login and the current-user endpoint.
type AuthHandler struct {
	users   *services.UserService
	jwt     *iauth.JWTService
	checker *permissions.Checker
}

func NewAuthHandler(users *services.UserService, jwt *iauth.JWTService, checker *permissions.Checker) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, checker: checker}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *userProfile `json:"user"`
}

type userProfile struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	IsRoot      bool     `json:"is_root"`
	Permissions []string `json:"permissions"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	user, err := h.users.Authenticate(ctx, req.Username, req.Password, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "issue access token"))
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "verify issued token"))
		return
	}

	profile, err := h.buildProfile(c, user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.Time,
		User:      profile,
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.buildProfile(c, user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

func (h *AuthHandler) buildProfile(c *gin.Context, user *models.User) (*userProfile, error) {
	profile := &userProfile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsRoot:   user.IsRoot,
	}

	if h.checker != nil {
		perms, err := h.checker.GetUserPermissions(requestContext(c), user.ID)
		if err != nil {
			return nil, apperrors.Wrap(err, "load user permissions")
		}
		profile.Permissions = perms
	}
	if profile.Permissions == nil {
		profile.Permissions = []string{}
	}

	return profile, nil
}
