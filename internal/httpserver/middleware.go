package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/state/session"
)

const (
	sessionHeader = "X-Session-ID"
	sessionCookie = "sid"
	maxSessionID  = 128
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

// sessionMiddleware resolves the visitor's session from the header, then the
// cookie, and opens a fresh one when neither is present.
func sessionMiddleware(sessions SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(sessionHeader)
		if id == "" {
			if v, err := c.Cookie(sessionCookie); err == nil {
				id = v
			}
		}
		if len(id) > maxSessionID {
			writeError(c, http.StatusBadRequest, "session id too long")
			return
		}
		if id == "" {
			id = uuid.NewString()
		}

		sess := sessions.Get(c.Request.Context(), id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		c.Header(sessionHeader, id)

		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, sess)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Session {
	sess, _ := c.Request.Context().Value(sessionCtxKey).(*session.Session)
	return sess
}
