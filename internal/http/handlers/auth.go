package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/google"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

// localFlowTimeout bounds how long POST /api/authenticate waits for the
// user to finish the browser consent flow.
const localFlowTimeout = 2 * time.Minute

type AuthHandler struct {
	log  *logger.Logger
	auth google.Auth
}

func NewAuthHandler(baseLog *logger.Logger, auth google.Auth) *AuthHandler {
	return &AuthHandler{
		log:  baseLog.With("handler", "AuthHandler"),
		auth: auth,
	}
}

// Authenticate runs the local OAuth flow, blocking until the callback
// arrives or the timeout expires.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	if h.auth.IsAuthenticated(c.Request.Context()) {
		response.RespondOK(c, gin.H{"authenticated": true, "message": "Already authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), localFlowTimeout)
	defer cancel()

	if err := h.auth.RunLocalFlow(ctx); err != nil {
		h.log.Error("Local auth flow failed", "error", err)
		response.RespondError(c, http.StatusBadGateway, "AUTH_FLOW_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"authenticated": true, "message": "Authentication successful"})
}

// AuthURL returns the consent URL for clients that drive the redirect
// themselves.
func (h *AuthHandler) AuthURL(c *gin.Context) {
	url, err := h.auth.AuthURL("state-token")
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "AUTH_URL_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"auth_url": url})
}

// Start redirects the browser straight into the consent flow.
func (h *AuthHandler) Start(c *gin.Context) {
	url, err := h.auth.AuthURL("state-token")
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "AUTH_URL_FAILED", err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Callback exchanges the authorization code delivered by Google's redirect.
func (h *AuthHandler) Callback(c *gin.Context) {
	if errMsg := c.Query("error"); errMsg != "" {
		response.RespondError(c, http.StatusBadRequest, "AUTH_DENIED", errors.New(errMsg))
		return
	}
	code := c.Query("code")
	if code == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_CODE", errors.New("missing authorization code"))
		return
	}
	if err := h.auth.Exchange(c.Request.Context(), code); err != nil {
		h.log.Error("Code exchange failed", "error", err)
		response.RespondError(c, http.StatusBadGateway, "EXCHANGE_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"authenticated": true})
}

// Logout revokes the stored token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Revoke(); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "LOGOUT_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"authenticated": false, "message": "Logged out"})
}
