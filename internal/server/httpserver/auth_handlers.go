package httpserver

import (
	"errors"
	"net/http"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (s *HTTPServer) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, token, maxAge, "/", "", s.opts.CookieSecure, true)
}

func (s *HTTPServer) handleLoginPage(c *gin.Context) {
	reason := c.Query("error")
	c.HTML(http.StatusOK, "login.html", gin.H{"Busy": reason == "busy", "Failed": reason != "" && reason != "busy"})
}

func (s *HTTPServer) handleLogin(c *gin.Context) {
	token, err := s.auth.Login(c.Request.Context(), c.PostForm("password"))
	if errors.Is(err, common.ErrTooManyLogins) {
		c.Redirect(http.StatusSeeOther, "/login?error=busy")
		return
	}
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/login?error=1")
		return
	}

	s.setSessionCookie(c, token, int(s.opts.SessionTTL.Seconds()))
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (s *HTTPServer) handleLogout(c *gin.Context) {
	if tok, err := c.Cookie(common.SessionCookieName); err == nil {
		_ = s.auth.Logout(c.Request.Context(), tok)
	}
	s.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *HTTPServer) handleAPILogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := s.auth.Login(c.Request.Context(), req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	tok, err := s.auth.IssueAPIToken(session)
	if err != nil {
		_ = s.auth.Logout(c.Request.Context(), session)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tok.Token, "expires_at": tok.ExpiresAt})
}

func (s *HTTPServer) handleAPILogout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), c.GetString(sessionKey)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
