package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	portssvc "github.com/momotrack/momo_tracker_app/internal/core/ports/services"
	"github.com/momotrack/momo_tracker_app/internal/middleware"
	"github.com/momotrack/momo_tracker_app/internal/platform/config"
)

const oauthStateCookieName = "oauth_state"

// GoogleOAuthHandler drives the Google sign-in flow against the external
// identity provider.
type GoogleOAuthHandler struct {
	auth        *AuthHandler
	googleOAuth portssvc.GoogleOAuthSvcFacade
	cfg         *config.Config
}

// NewGoogleOAuthHandler creates a new GoogleOAuthHandler.
func NewGoogleOAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		auth:        NewAuthHandler(cfg, services),
		googleOAuth: services.GoogleOAuth,
		cfg:         cfg,
	}
}

// registerGoogleOAuthRoutes registers the Google OAuth routes. Routes are
// still registered when the provider is unconfigured; the handlers then
// answer 404 so the frontend can feature-detect.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewGoogleOAuthHandler(cfg, services)
	googleRoutes := rg.Group("/google")
	{
		googleRoutes.GET("/login", h.Login)
		googleRoutes.GET("/callback", h.Callback)
	}
}

// Login godoc
// @Summary Start Google sign-in
// @Description Redirects the browser to the Google consent page.
// @Tags oauth
// @Success 307 "Redirect to Google"
// @Failure 404 {object} ErrorResponse "Google sign-in not configured"
// @Router /auth/google/login [get]
func (h *GoogleOAuthHandler) Login(c *gin.Context) {
	if !h.googleOAuth.IsEnabled() {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Google sign-in is not configured"})
		return
	}

	state := uuid.NewString()
	c.SetCookie(oauthStateCookieName, state, 300, "/api/v1/auth/google", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuth.GetLoginURL(state))
}

// Callback godoc
// @Summary Complete Google sign-in
// @Description Validates the OAuth state, exchanges the code and opens a session.
// @Tags oauth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "Opaque state from /google/login"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Google sign-in not configured"
// @Router /auth/google/callback [get]
func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	if !h.googleOAuth.IsEnabled() {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Google sign-in is not configured"})
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	expectedState, err := c.Cookie(oauthStateCookieName)
	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		logger.Warn("OAuth state mismatch")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid OAuth state"})
		return
	}
	c.SetCookie(oauthStateCookieName, "", -1, "/api/v1/auth/google", "", h.cfg.IsProduction, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Authorization code is required"})
		return
	}

	user, err := h.googleOAuth.HandleCallback(c.Request.Context(), code)
	if err != nil {
		logger.Error("Google sign-in failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Google sign-in failed"})
		return
	}

	resp, err := h.auth.issueSession(c, user)
	if err != nil {
		logger.Error("Failed to open session after Google sign-in", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to open session"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
