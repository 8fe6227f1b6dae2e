package handlers

import (
	"errors"
	"net/http"
	"time"

	"folio/internal/constants"
	"folio/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Password string `json:"password"`
	Pin      string `json:"pin"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, expires, err := h.auth.LoginWithPassword(c.Request.Context(), req.Password)
	h.finishLogin(c, sessionID, expires, err)
}

func (h *AuthHandler) LoginPin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Pin) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pin must be 4 digits"})
		return
	}

	sessionID, expires, err := h.auth.LoginWithPin(c.Request.Context(), req.Pin)
	h.finishLogin(c, sessionID, expires, err)
}

func (h *AuthHandler) finishLogin(c *gin.Context, sessionID string, expires time.Time, err error) {
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	maxAge := int(time.Until(expires).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(constants.CookieSessionID, sessionID, maxAge, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(constants.CookieSessionID)
	if err == nil && sessionID != "" {
		if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
			fail(c, err)
			return
		}
	}
	c.SetCookie(constants.CookieSessionID, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.auth.UpdatePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type updatePinRequest struct {
	Pin string `json:"pin" binding:"required,len=4"`
}

func (h *AuthHandler) UpdatePin(c *gin.Context) {
	var req updatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pin must be 4 digits"})
		return
	}
	if err := h.auth.UpdatePin(c.Request.Context(), req.Pin); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type updateRecoveryEmailsRequest struct {
	Emails []string `json:"emails" binding:"required"`
}

func (h *AuthHandler) UpdateRecoveryEmails(c *gin.Context) {
	var req updateRecoveryEmailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.UpdateRecoveryEmails(c.Request.Context(), req.Emails); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
