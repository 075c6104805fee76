package handler

import (
	"context"
	"net/http"
	"time"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/middleware"
	"eventhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  service.AuthService
	cookieName   string
	secureCookie bool
}

func NewAuthHandler(authService service.AuthService, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName, secureCookie: secureCookie}
}

// RegisterRoutes mounts /auth. throttle guards the credential endpoints.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth, throttle gin.HandlerFunc) {
	rg.POST("/register", throttle, h.Register)
	rg.POST("/login", throttle, h.Login)
	rg.POST("/logout", requireAuth, h.Logout)
	rg.GET("/me", requireAuth, h.Me)
}

func (h *AuthHandler) setCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", h.secureCookie, true)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, token, err := h.authService.Register(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, token, int(h.authService.TokenTTL().Seconds()))
	c.JSON(http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User:    dto.NewUserSummary(user),
		Token:   token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, token, err := h.authService.Login(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, token, int(h.authService.TokenTTL().Seconds()))
	c.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    dto.NewUserSummary(user),
		Token:   token,
	})
}

// Logout revokes the current token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.Logout(ctx, middleware.CurrentClaims(c)); err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, "", -1)
	respond(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	respond(c, http.StatusOK, "", gin.H{"user": dto.NewUserSummary(user)})
}
