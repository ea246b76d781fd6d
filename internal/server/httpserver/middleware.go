package httpserver

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	sessionKey      = "session"
)

func (s *HTTPServer) requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" || len(id) > 64 {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

func (s *HTTPServer) recovery(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(c.Request.Context(), "panic while serving request",
				"request_id", c.GetString(requestIDKey), "path", c.Request.URL.Path, "panic", r)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
	}()
	c.Next()
}

func (s *HTTPServer) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	s.logger.Info(c.Request.Context(), "request",
		"request_id", c.GetString(requestIDKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
	)
}

// cookieSession returns the session in the admin cookie if it is live.
func (s *HTTPServer) cookieSession(c *gin.Context) (string, bool) {
	tok, err := c.Cookie(common.SessionCookieName)
	if err != nil || tok == "" {
		return "", false
	}
	return tok, s.auth.Authenticate(c.Request.Context(), tok)
}

// bearerSession resolves an Authorization: Bearer token to its session.
func (s *HTTPServer) bearerSession(c *gin.Context) (string, bool) {
	h := c.GetHeader(common.AuthorizationHeaderName)
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return "", false
	}
	session, err := s.auth.SessionFromAPIToken(c.Request.Context(), strings.TrimPrefix(h, common.BearerPrefix))
	return session, err == nil
}

// requirePageSession sends browsers without a live session to the login page.
func (s *HTTPServer) requirePageSession(c *gin.Context) {
	session, ok := s.cookieSession(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	c.Set(sessionKey, session)
	c.Next()
}

// requireAPIAuth accepts either a bearer token or the admin cookie.
func (s *HTTPServer) requireAPIAuth(c *gin.Context) {
	session, ok := s.bearerSession(c)
	if !ok {
		session, ok = s.cookieSession(c)
	}
	if !ok {
		writeError(c, common.ErrorUnauthorized)
		c.Abort()
		return
	}
	c.Set(sessionKey, session)
	c.Next()
}

// sameOrigin refuses form posts sent from another site. Browsers attach
// Origin (or at least Referer) to cross-site POSTs; requests carrying
// neither come from non-browser clients and pass.
func (s *HTTPServer) sameOrigin(c *gin.Context) {
	src := c.GetHeader("Origin")
	if src == "" {
		src = c.GetHeader("Referer")
	}
	if src == "" {
		c.Next()
		return
	}

	u, err := url.Parse(src)
	if err != nil || u.Host == "" || !strings.EqualFold(u.Host, c.Request.Host) {
		s.logger.Warn(c.Request.Context(), "cross-origin form post refused", "path", c.Request.URL.Path, "origin", src)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "cross-origin request refused"})
		return
	}
	c.Next()
}
