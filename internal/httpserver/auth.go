package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/state/auth"
)

func authStateHandler(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).Auth.State())
}

func loginHandler(c *gin.Context) {
	var req domain.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	a := sessionFrom(c).Auth
	if err := a.Login(c.Request.Context(), req); err != nil {
		writeAuthError(c, a, err)
		return
	}
	c.JSON(http.StatusOK, a.State())
}

func registerHandler(c *gin.Context) {
	var req domain.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	a := sessionFrom(c).Auth
	if err := a.Register(c.Request.Context(), req); err != nil {
		writeAuthError(c, a, err)
		return
	}
	c.JSON(http.StatusCreated, a.State())
}

func logoutHandler(c *gin.Context) {
	a := sessionFrom(c).Auth
	a.Logout(c.Request.Context())
	c.JSON(http.StatusOK, a.State())
}

func updateUserHandler(c *gin.Context) {
	var patch domain.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, http.StatusBadRequest, "invalid body")
		return
	}
	a := sessionFrom(c).Auth
	if !a.State().IsAuthenticated {
		writeError(c, http.StatusUnauthorized, "not signed in")
		return
	}
	a.UpdateUser(patch)
	c.JSON(http.StatusOK, a.State())
}

func clearAuthErrorHandler(c *gin.Context) {
	a := sessionFrom(c).Auth
	a.ClearError()
	c.JSON(http.StatusOK, a.State())
}

func writeAuthError(c *gin.Context, a *auth.Container, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	state := a.State()
	msg := state.Error
	if msg == "" {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "state": state})
}
