package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/middleware"
	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/response"
	"github.com/Rahmadjon0038/avto-test-backend/internal/service"
)

// AuthHandler exposes registration, login and token management.
type AuthHandler struct {
	auth *service.AuthService
	log  zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrPhoneTaken) {
			response.Fail(c, http.StatusConflict, response.ErrPhoneTaken)
			return
		}
		failInternal(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		failInternal(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			response.Fail(c, http.StatusUnauthorized, response.ErrRefreshInvalid)
			return
		}
		failInternal(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.auth.Logout(c.Request.Context(), claims.UserID); err != nil {
		failInternal(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	user, err := h.auth.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrUserNotFound)
			return
		}
		failInternal(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
