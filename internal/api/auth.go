package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanksrelay/relay/internal/auth"
)

// AuthHandler exposes authentication endpoints
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type registerInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"max=64"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	session, err := h.auth.RegisterWithEmail(c.Request.Context(), in.Email, in.Password, in.DisplayName)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	session, err := h.auth.LoginWithEmail(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Anonymous handles POST /api/auth/anonymous
func (h *AuthHandler) Anonymous(c *gin.Context) {
	session, err := h.auth.SignInAnonymously(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}
